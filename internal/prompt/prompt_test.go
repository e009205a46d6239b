package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/physiomath/go-physiomath/internal/locale"
)

// ---------------------------------------------------------------------------
// TestMine - Theory Mining Prompt
// ---------------------------------------------------------------------------

func TestMine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		topic       string
		lang        locale.Language
		researcher  bool
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "blank topic uses default",
			topic:       "   ",
			lang:        locale.French,
			wantContain: []string{"specializing in **Neuro-Immune Interaction**", "strictly in **FRENCH**"},
			wantAbsent:  []string{"Falsifiability"},
		},
		{
			name:        "arabic with topic",
			topic:       "  Cardiac Rhythm ",
			lang:        locale.Arabic,
			wantContain: []string{"specializing in **Cardiac Rhythm**", "strictly in **ARABIC**"},
		},
		{
			name:        "researcher mode",
			topic:       "Sleep",
			lang:        locale.French,
			researcher:  true,
			wantContain: []string{"5. **Falsifiability**"},
		},
		{
			name:  "requirements and format",
			topic: "x",
			lang:  locale.French,
			wantContain: []string{
				"1. **Name**",
				"2. **Formalism**",
				"3. **Equation**",
				"4. **Prediction**",
				`$\Psi$`,
				"$I_{cyt}$",
				"($$ ... $$ for block, $ ... $ for inline)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Mine(tt.topic, tt.lang, tt.researcher)
			if err != nil {
				t.Fatalf("Mine: %v", err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("prompt missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("prompt should not contain %q", absent)
				}
			}
		})
	}
}

func TestMine_TopicTooLong(t *testing.T) {
	t.Parallel()

	_, err := Mine(strings.Repeat("é", MaxTopicLength+1), locale.French, false)
	if !errors.Is(err, ErrTopicTooLong) {
		t.Errorf("error = %v, want ErrTopicTooLong", err)
	}
}

// ---------------------------------------------------------------------------
// TestArticle - Scientific Article Prompt
// ---------------------------------------------------------------------------

func TestArticle_EmptyTopic(t *testing.T) {
	t.Parallel()

	for _, topic := range []string{"", " \t\n"} {
		if _, err := Article(topic, locale.French, nil); !errors.Is(err, ErrEmptyTopic) {
			t.Errorf("Article(%q) error = %v, want ErrEmptyTopic", topic, err)
		}
	}
}

func TestArticle_TheoremsPerLanguage(t *testing.T) {
	t.Parallel()

	theorems := locale.Default().Theorems()

	for _, lang := range locale.Languages() {
		t.Run(lang.String(), func(t *testing.T) {
			t.Parallel()

			got, err := Article("Hypertension", lang, theorems)
			if err != nil {
				t.Fatalf("Article: %v", err)
			}
			if !strings.Contains(got, "**Topic:** Hypertension (Focus on") {
				t.Error("topic line missing")
			}
			if !strings.Contains(got, "strictly in **"+lang.Name()+"**") {
				t.Error("language requirement missing")
			}
			for _, th := range theorems {
				line := th.Title.In(lang) + ": " + th.Description.In(lang)
				if !strings.Contains(got, line+"\n") {
					t.Errorf("theorem line missing: %q", line)
				}
				other := th.Title.In(lang.Other())
				if strings.Contains(got, other) {
					t.Errorf("theorem title in the other language leaked: %q", other)
				}
			}
			if !strings.Contains(got, "connecting Thm 4, 5, 6, 8, 10 to the model") {
				t.Error("theorem references missing")
			}
		})
	}
}

func TestArticle_Structure(t *testing.T) {
	t.Parallel()

	got, err := Article("x", locale.French, nil)
	if err != nil {
		t.Fatalf("Article: %v", err)
	}

	sections := []string{
		"1. **Abstract**",
		"2. **Mathematical Formulation**",
		"3. **Theorem Analysis**",
		"4. **Digital Therapeutics**",
		"5. **Conclusion**",
	}
	last := -1
	for _, s := range sections {
		i := strings.Index(got, s)
		if i < 0 {
			t.Fatalf("section %q missing", s)
		}
		if i < last {
			t.Errorf("section %q out of order", s)
		}
		last = i
	}
	if !strings.Contains(got, `$\beta$ (Inhibition)`) {
		t.Error("PFTC variables missing")
	}
}

func TestTheoremRefs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ids  []string
		want string
	}{
		{nil, "the theorems"},
		{[]string{"thm_4"}, "Thm 4"},
		{[]string{"thm_4", "custom"}, "Thm 4, custom"},
	}

	for _, tt := range tests {
		var ths []locale.Theorem
		for _, id := range tt.ids {
			ths = append(ths, locale.Theorem{ID: id})
		}
		if got := theoremRefs(ths); got != tt.want {
			t.Errorf("theoremRefs(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}
