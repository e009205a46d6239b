package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []ConverterOption
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "hard wraps by default",
			input: "first line\nsecond line",
			want:  []string{"first line<br />"},
		},
		{
			name:    "hard wraps off",
			opts:    []ConverterOption{WithHardWraps(false)},
			input:   "first line\nsecond line",
			notWant: []string{"<br"},
		},
		{
			name:  "highlighted code",
			input: "```go\nfunc f() {}\n```",
			want:  []string{`class="chroma"`},
		},
		{
			name:    "plain code",
			opts:    []ConverterOption{WithHighlighting(false)},
			input:   "```go\nfunc f() {}\n```",
			want:    []string{`<code class="language-go">`},
			notWant: []string{"chroma"},
		},
		{
			name:  "heading ids",
			input: "## Hodgkin Huxley",
			want:  []string{`<h2 id="hodgkin-huxley">`},
		},
		{
			name:  "gfm table",
			input: "| a | b |\n|---|---|\n| 1 | 2 |",
			want:  []string{"<table>", "<td>1</td>"},
		},
		{
			name:  "footnote",
			input: "Claim[^1].\n\n[^1]: Source.",
			want:  []string{`class="footnotes"`},
		},
		{
			name:    "raw html omitted",
			input:   "<script>alert(1)</script>",
			notWant: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewGoldmarkConverter(tt.opts...).ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ToHTML() = %q, want it to contain %q", got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("ToHTML() = %q, should not contain %q", got, nw)
				}
			}
		})
	}
}

func TestGoldmarkConverter_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoldmarkConverter().ToHTML(ctx, "# Title"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestWithContext_Panic(t *testing.T) {
	t.Parallel()

	_, err := withContext(context.Background(), func() (string, error) {
		panic("renderer exploded")
	})
	if !errors.Is(err, ErrHTMLConversion) {
		t.Fatalf("withContext() error = %v, want ErrHTMLConversion", err)
	}
	if !strings.Contains(err.Error(), "renderer exploded") {
		t.Errorf("error %q should carry the panic value", err)
	}
}
