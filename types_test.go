package physiomath

import (
	"errors"
	"testing"
)

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    *PageSettings
		wantErr error
	}{
		{name: "nil uses defaults", page: nil},
		{name: "defaults", page: DefaultPageSettings()},
		{name: "case insensitive", page: &PageSettings{Size: "LEGAL", Orientation: "Landscape", Margin: 1}},
		{name: "unknown size", page: &PageSettings{Size: "a3", Orientation: OrientationPortrait, Margin: 1}, wantErr: ErrInvalidPageSize},
		{name: "unknown orientation", page: &PageSettings{Size: PageSizeA4, Orientation: "diagonal", Margin: 1}, wantErr: ErrInvalidOrientation},
		{name: "margin too small", page: &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: 0.1}, wantErr: ErrInvalidMargin},
		{name: "margin too large", page: &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: 3.5}, wantErr: ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.page.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTOC_Validate(t *testing.T) {
	t.Parallel()

	var nilTOC *TOC
	valid := []*TOC{nilTOC, {}, {MaxDepth: 1}, {MaxDepth: 6}}
	for _, toc := range valid {
		if err := toc.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v", toc, err)
		}
	}
	for _, depth := range []int{-1, 7} {
		if err := (&TOC{MaxDepth: depth}).Validate(); !errors.Is(err, ErrInvalidTOCDepth) {
			t.Errorf("MaxDepth %d: error = %v, want ErrInvalidTOCDepth", depth, err)
		}
	}
}

func TestMode_TitleKey(t *testing.T) {
	t.Parallel()

	want := map[Mode]string{
		ModeMine:    "theoreticalReport",
		ModeArticle: "scientificArticle",
		ModeRender:  "clinicalReport",
	}
	for m, key := range want {
		if got := m.titleKey(); got != key {
			t.Errorf("%s.titleKey() = %q, want %q", m, got, key)
		}
	}
}
