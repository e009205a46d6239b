package pipeline

import (
	"strings"
	"testing"

	"github.com/physiomath/go-physiomath/internal/mathrender"
)

// ---------------------------------------------------------------------------
// TestProtectMath - Placeholder Substitution
// ---------------------------------------------------------------------------

func TestProtectMath(t *testing.T) {
	t.Parallel()

	r := mathrender.New(fakeEngine{})
	got, pm := ProtectMath(r, "a $x$ b $$y$$ c")

	want := "a " + MathStartPlaceholder + "0" + MathEndPlaceholder +
		" b " + MathStartPlaceholder + "1" + MathEndPlaceholder + " c"
	if got != want {
		t.Errorf("ProtectMath = %q, want %q", got, want)
	}
	if len(pm.Results()) != 2 {
		t.Fatalf("Results() len = %d, want 2", len(pm.Results()))
	}
	if s := pm.Stats(); s.Inline != 1 || s.Block != 1 || s.Failed != 0 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestProtectMath_StrayPlaceholderRunes(t *testing.T) {
	t.Parallel()

	input := "odd " + MathStartPlaceholder + "0" + MathEndPlaceholder + " text"
	got, pm := ProtectMath(mathrender.New(fakeEngine{}), input)

	if strings.Contains(got, MathStartPlaceholder) || strings.Contains(got, MathEndPlaceholder) {
		t.Errorf("source placeholder runes survived: %q", got)
	}
	if restored := pm.Restore(got); restored != "odd \uFFFD0\uFFFD text" {
		t.Errorf("Restore = %q", restored)
	}
}

// ---------------------------------------------------------------------------
// TestRestore - HTML Substitution
// ---------------------------------------------------------------------------

func TestRestore(t *testing.T) {
	t.Parallel()

	ph := func(i string) string { return MathStartPlaceholder + i + MathEndPlaceholder }

	tests := []struct {
		name   string
		source string
		html   func() string
		want   string
	}{
		{
			name:   "solo block paragraph becomes div",
			source: "$$x$$",
			html:   func() string { return "<p>" + ph("0") + "</p>" },
			want:   `<div class="math-block"><m d=display>x</m></div>`,
		},
		{
			name:   "solo inline paragraph keeps p",
			source: "$x$",
			html:   func() string { return "<p>" + ph("0") + "</p>" },
			want:   `<p><span class="math-inline"><m d=inline>x</m></span></p>`,
		},
		{
			name:   "block inside text becomes span",
			source: "a $$x$$ b",
			html:   func() string { return "<p>a " + ph("0") + " b</p>" },
			want:   `<p>a <span class="math-block"><m d=display>x</m></span> b</p>`,
		},
		{
			name:   "failed inline is escaped source",
			source: `$\bad<$`,
			html:   func() string { return "<li>" + ph("0") + "</li>" },
			want:   `<li>$\bad&lt;$</li>`,
		},
		{
			name:   "failed solo block is flagged",
			source: `$$\bad$$`,
			html:   func() string { return "<p>" + ph("0") + "</p>" },
			want:   `<code class="math-error">$$\bad$$</code>`,
		},
		{
			name:   "unknown index left alone",
			source: "$x$",
			html:   func() string { return "<p>" + ph("7") + "</p>" },
			want:   "<p>" + ph("7") + "</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, pm := ProtectMath(mathrender.New(fakeEngine{}), tt.source)
			if got := pm.Restore(tt.html()); got != tt.want {
				t.Errorf("Restore = %q, want %q", got, tt.want)
			}
		})
	}
}
