// Package dateutil formats report dates in the report language.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/physiomath/go-physiomath/internal/locale"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is specified without a format.
const DefaultDateFormat = "YYYY-MM-DD"

// dateTokens lists the supported tokens.
// Ordered by length descending for greedy matching.
var dateTokens = []string{"YYYY", "MMMM", "MMM", "YY", "MM", "DD", "HH", "mm", "M", "D"}

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "D MMMM YYYY",
	"stamp":    "YYYYMMDD-HHmm",
}

var monthNames = map[locale.Language][12]string{
	locale.French: {"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	locale.Arabic: {"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
		"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر"},
}

var shortMonthNames = map[locale.Language][12]string{
	locale.French: {"janv.", "févr.", "mars", "avr.", "mai", "juin",
		"juil.", "août", "sept.", "oct.", "nov.", "déc."},
	locale.Arabic: monthNames[locale.Arabic],
}

// part is either a token or a literal run.
type part struct {
	token   string
	literal string
}

// parse splits a user format into tokens and literals.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm
// Brackets escape literal text: [Date] preserves "Date" literally.
func parse(format string) ([]part, error) {
	if format == "" {
		return nil, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return nil, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var parts []part
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, part{literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return nil, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			lit.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := ""
		for _, tok := range dateTokens {
			if strings.HasPrefix(format[i:], tok) {
				matched = tok
				break
			}
		}
		if matched == "" {
			lit.WriteByte(format[i])
			i++
			continue
		}
		flush()
		parts = append(parts, part{token: matched})
		i += len(matched)
	}
	flush()
	return parts, nil
}

// ParseDateFormat validates a user format and converts it to a Go time
// layout. Month names in the layout are English; use Format for localized
// output.
func ParseDateFormat(format string) (string, error) {
	parts, err := parse(format)
	if err != nil {
		return "", err
	}
	layouts := map[string]string{
		"YYYY": "2006", "YY": "06", "MMMM": "January", "MMM": "Jan",
		"MM": "01", "M": "1", "DD": "02", "D": "2", "HH": "15", "mm": "04",
	}
	var b strings.Builder
	for _, p := range parts {
		if p.token != "" {
			b.WriteString(layouts[p.token])
		} else {
			b.WriteString(p.literal)
		}
	}
	return b.String(), nil
}

// Format renders t with a user format or preset name. Month names follow
// lang; unknown languages fall back to French.
func Format(format string, t time.Time, lang locale.Language) (string, error) {
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	parts, err := parse(format)
	if err != nil {
		return "", err
	}
	if !lang.Valid() {
		lang = locale.DefaultLanguage
	}

	var b strings.Builder
	for _, p := range parts {
		if p.token == "" {
			b.WriteString(p.literal)
			continue
		}
		b.WriteString(render(p.token, t, lang))
	}
	return b.String(), nil
}

func render(token string, t time.Time, lang locale.Language) string {
	switch token {
	case "YYYY":
		return fmt.Sprintf("%04d", t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MMMM":
		return monthNames[lang][t.Month()-1]
	case "MMM":
		return shortMonthNames[lang][t.Month()-1]
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return strconv.Itoa(t.Day())
	case "HH":
		return fmt.Sprintf("%02d", t.Hour())
	case "mm":
		return fmt.Sprintf("%02d", t.Minute())
	}
	return token
}

// ResolveDate handles "auto" and "auto:FORMAT" syntax for footer dates.
//   - "auto" → t in YYYY-MM-DD format
//   - "auto:FORMAT" → t in a custom format (e.g., "auto:DD/MM/YYYY")
//   - "auto:preset" → t using a named preset (iso, european, us, long, stamp)
//   - any other value → returned unchanged
func ResolveDate(value string, t time.Time, lang locale.Language) (string, error) {
	lower := strings.ToLower(value)

	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}
	if lower == "auto" {
		return Format(DefaultDateFormat, t, lang)
	}
	if !strings.HasPrefix(lower, "auto:") {
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	// Keep original case for tokens
	formatPart := value[len("auto:"):]
	if formatPart == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}
	return Format(formatPart, t, lang)
}
