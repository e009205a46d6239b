package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestInjectCSS - Stylesheet Placement
// ---------------------------------------------------------------------------

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"body { color: red; }", "body { color: red; }"},
		{"</style>", `<\/style>`},
		{"</STYLE><script>", `<\/STYLE><script>`},
		{"</a></b>", `<\/a><\/b>`},
	}

	for _, tt := range tests {
		if got := sanitizeCSS(tt.input); got != tt.want {
			t.Errorf("sanitizeCSS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{
			name: "empty CSS returns HTML unchanged",
			html: "<html><head></head><body>x</body></html>",
			want: "<html><head></head><body>x</body></html>",
		},
		{
			name: "before </head>",
			html: "<html><head></head><body>x</body></html>",
			css:  "p{}",
			want: "<html><head><style>p{}</style></head><body>x</body></html>",
		},
		{
			name: "mixed case head",
			html: "<HTML><HEAD></HEAD></HTML>",
			css:  "p{}",
			want: "<HTML><HEAD><style>p{}</style></HEAD></HTML>",
		},
		{
			name: "after body with attributes",
			html: `<body dir="rtl">x</body>`,
			css:  "p{}",
			want: `<body dir="rtl"><style>p{}</style>x</body>`,
		},
		{
			name: "fragment is prepended",
			html: "<p>x</p>",
			css:  "p{}",
			want: "<style>p{}</style><p>x</p>",
		},
		{
			name: "css is sanitized",
			html: "<p>x</p>",
			css:  "</style><script>",
			want: `<style><\/style><script></style><p>x</p>`,
		},
	}

	s := &CSSInjection{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := s.InjectCSS(context.Background(), tt.html, tt.css); got != tt.want {
				t.Errorf("InjectCSS = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjectCSS_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := (&CSSInjection{}).InjectCSS(ctx, "<p>x</p>", "p{}"); got != "<p>x</p>" {
		t.Errorf("cancelled InjectCSS changed content: %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestInjectTOC - Numbered Table of Contents
// ---------------------------------------------------------------------------

func TestInjectTOC(t *testing.T) {
	t.Parallel()

	body := `<h1 id="title">Title</h1>` +
		`<h2 id="intro">Intro &amp; scope</h2>` +
		`<h4 id="deep">Deep</h4>` +
		`<h2 id="model"><em>Model</em></h2>` +
		`<h3 id="sub">Sub</h3>` +
		`<h2>No anchor</h2>`

	got, err := (&TOCInjection{}).InjectTOC(context.Background(), body, &TOCData{Title: "Plan", MinDepth: 2, MaxDepth: 4})
	if err != nil {
		t.Fatalf("InjectTOC: %v", err)
	}

	for _, want := range []string{
		`<h2 class="toc-title">Plan</h2>`,
		`<a href="#intro">1. Intro &amp; scope</a>`,
		`<div class="toc-item toc-depth-2"><a href="#deep">1.1. Deep</a>`,
		`<a href="#model">2. Model</a>`,
		`<a href="#sub">2.1. Sub</a>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("TOC missing %q\ngot: %s", want, got)
		}
	}
	if strings.Contains(got, "No anchor</a>") || strings.Contains(got, `href="#title"`) {
		t.Errorf("TOC lists headings it should skip: %s", got)
	}
	if !strings.HasSuffix(got, body) {
		t.Error("TOC should be prepended to the fragment")
	}
}

func TestInjectTOC_AfterBody(t *testing.T) {
	t.Parallel()

	doc := `<html><body class="r"><h2 id="a">A</h2></body></html>`
	got, err := (&TOCInjection{}).InjectTOC(context.Background(), doc, &TOCData{MinDepth: 1, MaxDepth: 3})
	if err != nil {
		t.Fatalf("InjectTOC: %v", err)
	}
	if !strings.HasPrefix(got, `<html><body class="r"><nav class="toc">`) {
		t.Errorf("TOC not after <body>: %s", got)
	}
}

func TestInjectTOC_Unchanged(t *testing.T) {
	t.Parallel()

	body := `<p>no headings</p>`
	tests := []struct {
		name string
		data *TOCData
	}{
		{"nil data", nil},
		{"no headings in range", &TOCData{MinDepth: 2, MaxDepth: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := (&TOCInjection{}).InjectTOC(context.Background(), body, tt.data)
			if err != nil {
				t.Fatalf("InjectTOC: %v", err)
			}
			if got != body {
				t.Errorf("InjectTOC = %q, want unchanged", got)
			}
		})
	}
}

func TestInjectTOC_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&TOCInjection{}).InjectTOC(ctx, "<h2 id=\"a\">A</h2>", &TOCData{MinDepth: 1, MaxDepth: 6})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
