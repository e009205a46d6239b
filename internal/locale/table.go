// Package locale holds the bilingual (French/Arabic) string table, the
// theorem table used by article prompts, and language negotiation.
package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/physiomath/go-physiomath/internal/yamlutil"
)

//go:embed strings.yaml
var stringsYAML []byte

//go:embed theorems.yaml
var theoremsYAML []byte

// ErrIncompleteTable indicates a key missing from one language, or a
// malformed theorem entry.
var ErrIncompleteTable = errors.New("incomplete string table")

// Localized is a text in every supported language.
type Localized struct {
	FR string `yaml:"fr"`
	AR string `yaml:"ar"`
}

// In returns the text for lang, French for anything else.
func (l Localized) In(lang Language) string {
	if lang == Arabic {
		return l.AR
	}
	return l.FR
}

// Theorem is a formal statement that generated articles must discuss.
type Theorem struct {
	ID          string    `yaml:"id"`
	Title       Localized `yaml:"title"`
	Description Localized `yaml:"description"`
	FormalCheck string    `yaml:"formal_check"`
}

// Table maps (language, key) to text. It is read-only after Load.
type Table struct {
	texts    map[Language]map[string]string
	keys     []string
	theorems []Theorem
}

// Load parses and validates a string table and a theorem table.
func Load(stringsData, theoremsData []byte) (*Table, error) {
	var raw map[string]map[string]string
	if err := yamlutil.UnmarshalSource("strings.yaml", stringsData, &raw); err != nil {
		return nil, err
	}
	var theorems []Theorem
	if err := yamlutil.UnmarshalSource("theorems.yaml", theoremsData, &theorems); err != nil {
		return nil, err
	}

	t := &Table{texts: make(map[Language]map[string]string), theorems: theorems}
	for code, texts := range raw {
		lang := Language(code)
		if !lang.Valid() {
			return nil, fmt.Errorf("%w: unknown language %q", ErrIncompleteTable, code)
		}
		t.texts[lang] = texts
	}

	keys := map[string]bool{}
	for _, texts := range t.texts {
		for k := range texts {
			keys[k] = true
		}
	}
	for _, lang := range Languages() {
		texts, ok := t.texts[lang]
		if !ok {
			return nil, fmt.Errorf("%w: language %q missing", ErrIncompleteTable, lang)
		}
		for k := range keys {
			if _, ok := texts[k]; !ok {
				return nil, fmt.Errorf("%w: key %q missing for %q", ErrIncompleteTable, k, lang)
			}
		}
	}
	for k := range keys {
		t.keys = append(t.keys, k)
	}
	slices.Sort(t.keys)

	seen := map[string]bool{}
	for i, th := range theorems {
		if th.ID == "" || seen[th.ID] {
			return nil, fmt.Errorf("%w: theorem %d has an empty or duplicate id", ErrIncompleteTable, i)
		}
		seen[th.ID] = true
		if th.Title.FR == "" || th.Title.AR == "" || th.Description.FR == "" || th.Description.AR == "" {
			return nil, fmt.Errorf("%w: theorem %q lacks a translation", ErrIncompleteTable, th.ID)
		}
	}
	return t, nil
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Load(stringsYAML, theoremsYAML)
})

// Default returns the embedded table. The embedded files are covered by
// tests, so a load failure is a build defect and panics.
func Default() *Table {
	t, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("locale: embedded tables: %v", err))
	}
	return t
}

// Text returns the text for key in lang, falling back to French, then to
// the key itself.
func (t *Table) Text(lang Language, key string) string {
	if s, ok := t.texts[lang][key]; ok {
		return s
	}
	if s, ok := t.texts[DefaultLanguage][key]; ok {
		return s
	}
	return key
}

// Texts returns every key of lang, for templates.
func (t *Table) Texts(lang Language) map[string]string {
	out := make(map[string]string, len(t.keys))
	for _, k := range t.keys {
		out[k] = t.Text(lang, k)
	}
	return out
}

// Keys returns the sorted keys.
func (t *Table) Keys() []string {
	return slices.Clone(t.keys)
}

// Theorems returns the theorem table in file order.
func (t *Table) Theorems() []Theorem {
	return slices.Clone(t.theorems)
}
