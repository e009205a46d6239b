package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/physiomath/go-physiomath/internal/yamlutil"
)

type sample struct {
	Lang   string   `yaml:"lang"`
	Models []string `yaml:"models"`
	Pdf    bool     `yaml:"pdf"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient and Strict Decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		strict  bool
		wantErr error
		want    sample
	}{
		{
			name: "valid",
			data: "lang: ar\nmodels: [a, b]\npdf: true",
			want: sample{Lang: "ar", Models: []string{"a", "b"}, Pdf: true},
		},
		{
			name: "unknown field ignored when lenient",
			data: "lang: fr\nextra: 1",
			want: sample{Lang: "fr"},
		},
		{
			name:    "unknown field rejected when strict",
			data:    "lang: fr\nextra: 1",
			strict:  true,
			wantErr: yamlutil.ErrSyntax,
		},
		{
			name:    "empty data",
			data:    "",
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "syntax error",
			data:    "models: [unclosed",
			wantErr: yamlutil.ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got sample
			var err error
			if tt.strict {
				err = yamlutil.UnmarshalStrict([]byte(tt.data), &got)
			} else {
				err = yamlutil.Unmarshal([]byte(tt.data), &got)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Lang != tt.want.Lang || got.Pdf != tt.want.Pdf || strings.Join(got.Models, ",") != strings.Join(tt.want.Models, ",") {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshal_NilDestination(t *testing.T) {
	t.Parallel()

	if err := yamlutil.Unmarshal([]byte("lang: fr"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("error = %v, want ErrNilDestination", err)
	}
}

func TestUnmarshalSource_NamesSource(t *testing.T) {
	t.Parallel()

	var s sample
	err := yamlutil.UnmarshalSource("strings.yaml", []byte("lang: fr\nbogus: x\n"), &s)
	if !errors.Is(err, yamlutil.ErrSyntax) {
		t.Fatalf("error = %v, want ErrSyntax", err)
	}
	if !strings.Contains(err.Error(), "strings.yaml") {
		t.Errorf("error %q does not name its source", err)
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error %q lacks yamlutil prefix", err)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(sample{Lang: "ar", Pdf: true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back sample
	if err := yamlutil.UnmarshalStrict(data, &back); err != nil {
		t.Fatalf("UnmarshalStrict: %v", err)
	}
	if back.Lang != "ar" || !back.Pdf {
		t.Errorf("decoded %+v", back)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - MaxInputSize
// ---------------------------------------------------------------------------

// Modifies the package-level MaxInputSize, so it does not run in parallel.
func TestInputSizeLimit(t *testing.T) {
	original := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = original })
	yamlutil.MaxInputSize = 50

	var s sample
	err := yamlutil.UnmarshalStrict([]byte("lang: "+strings.Repeat("x", 60)), &s)
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("error = %v, want ErrInputTooLarge", err)
	}
	if !strings.Contains(err.Error(), "max 50") {
		t.Errorf("error %q should mention the limit", err)
	}
}
