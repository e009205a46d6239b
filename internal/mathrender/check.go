package mathrender

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTeX is wrapped by every *ParseError.
var ErrMalformedTeX = errors.New("malformed TeX")

// ParseError locates a structural problem in a formula.
type ParseError struct {
	Pos int // byte offset in the formula
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at position %d: %s", ErrMalformedTeX, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrMalformedTeX }

// CheckTeX performs the structural checks a converter without its own error
// reporting needs: balanced groups, matched environments, paired
// \left/\right and no dangling backslash. An empty formula is valid.
func CheckTeX(tex string) error {
	type open struct {
		pos int
		env string // empty for a brace group
	}
	var stack []open
	leftRight := 0

	for i := 0; i < len(tex); i++ {
		switch tex[i] {
		case '{':
			stack = append(stack, open{pos: i})
		case '}':
			if len(stack) == 0 || stack[len(stack)-1].env != "" {
				return &ParseError{Pos: i, Msg: "unexpected '}'"}
			}
			stack = stack[:len(stack)-1]
		case '\\':
			if i+1 >= len(tex) {
				return &ParseError{Pos: i, Msg: "dangling backslash"}
			}
			name, end := commandName(tex, i+1)
			switch name {
			case "begin", "end":
				env, envEnd, ok := braceArgument(tex, end)
				if !ok {
					return &ParseError{Pos: i, Msg: fmt.Sprintf(`\%s without environment name`, name)}
				}
				if name == "begin" {
					stack = append(stack, open{pos: i, env: env})
				} else {
					if len(stack) == 0 || stack[len(stack)-1].env != env {
						return &ParseError{Pos: i, Msg: fmt.Sprintf(`\end{%s} does not match`, env)}
					}
					stack = stack[:len(stack)-1]
				}
				end = envEnd
			case "left":
				leftRight++
			case "right":
				leftRight--
				if leftRight < 0 {
					return &ParseError{Pos: i, Msg: `\right without \left`}
				}
			}
			i = end - 1
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.env != "" {
			return &ParseError{Pos: top.pos, Msg: fmt.Sprintf(`unclosed \begin{%s}`, top.env)}
		}
		return &ParseError{Pos: top.pos, Msg: "unclosed '{'"}
	}
	if leftRight > 0 {
		return &ParseError{Pos: len(tex), Msg: `\left without \right`}
	}
	return nil
}

// commandName reads the control sequence starting at from (just after the
// backslash). Letters form a word command; any other byte is a one-character
// command such as \{ or \\. It returns the name and the index after it.
func commandName(tex string, from int) (string, int) {
	end := from
	for end < len(tex) && isLetter(tex[end]) {
		end++
	}
	if end == from {
		return tex[from : from+1], from + 1
	}
	return tex[from:end], end
}

// braceArgument reads "{name}" after optional spaces.
func braceArgument(tex string, from int) (string, int, bool) {
	for from < len(tex) && tex[from] == ' ' {
		from++
	}
	if from >= len(tex) || tex[from] != '{' {
		return "", from, false
	}
	closing := strings.IndexByte(tex[from:], '}')
	if closing < 0 {
		return "", from, false
	}
	name := strings.TrimSpace(tex[from+1 : from+closing])
	if name == "" {
		return "", from, false
	}
	return name, from + closing + 1, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
