package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidLanguage is returned by ParseLanguage for unsupported codes.
var ErrInvalidLanguage = errors.New("unsupported language")

// Language is a supported output and interface language.
type Language string

// Supported languages. French is the default.
const (
	French Language = "fr"
	Arabic Language = "ar"
)

// DefaultLanguage is used when none is requested or negotiation fails.
const DefaultLanguage = French

// Languages lists the supported languages, default first.
func Languages() []Language {
	return []Language{French, Arabic}
}

var supportedTags = []language.Tag{language.French, language.Arabic}

var matcher = language.NewMatcher(supportedTags)

// ParseLanguage accepts "fr", "ar" or any BCP 47 tag whose base language
// is one of them, e.g. "ar-DZ".
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
	}
	base, _ := tag.Base()
	for _, l := range Languages() {
		if base.String() == string(l) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: fr, ar)", ErrInvalidLanguage, s)
}

// Match negotiates a language from an Accept-Language header value.
func Match(acceptLanguage string) Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return Languages()[idx]
}

// Valid reports whether l is supported.
func (l Language) Valid() bool {
	return l == French || l == Arabic
}

// Dir returns the text direction, "rtl" for Arabic and "ltr" otherwise.
func (l Language) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Name returns the upper-case English name used in prompts.
func (l Language) Name() string {
	if l == Arabic {
		return "ARABIC"
	}
	return "FRENCH"
}

// Other returns the language the interface toggle switches to.
func (l Language) Other() Language {
	if l == Arabic {
		return French
	}
	return Arabic
}

func (l Language) String() string { return string(l) }
