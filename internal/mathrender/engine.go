package mathrender

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"git.sr.ht/~mekyt/latex2mathml"
	katex "github.com/FurqanSoftware/goldmark-katex"
)

// Engine names accepted by NewEngine.
const (
	EngineKaTeX  = "katex"
	EngineMathML = "mathml"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineKaTeX

// mathMLNamespace is the xmlns written on every <math> element.
const mathMLNamespace = "http://www.w3.org/1998/Math/MathML"

// ErrUnknownEngine is returned by NewEngine for unsupported names.
var ErrUnknownEngine = errors.New("unknown math engine")

// Engine converts one TeX formula into markup.
// Implementations must accept empty input and must report malformed TeX as
// an error instead of writing partial output.
type Engine interface {
	Name() string
	Render(w io.Writer, tex string, display bool) error
}

// Compile-time interface checks.
var (
	_ Engine = (*KaTeXEngine)(nil)
	_ Engine = (*MathMLEngine)(nil)
)

// EngineNames lists the supported engines in display order.
func EngineNames() []string {
	return []string{EngineKaTeX, EngineMathML}
}

// NewEngine returns the engine registered under name (case-insensitive).
// An empty name selects DefaultEngine.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineKaTeX:
		return &KaTeXEngine{}, nil
	case EngineMathML:
		return &MathMLEngine{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownEngine, name, strings.Join(EngineNames(), ", "))
	}
}

// KaTeXEngine renders KaTeX HTML through an embedded JavaScript runtime.
// Parse errors raised by KaTeX are returned as-is.
type KaTeXEngine struct{}

// Name returns "katex".
func (e *KaTeXEngine) Name() string { return EngineKaTeX }

// Render writes KaTeX HTML for tex.
func (e *KaTeXEngine) Render(w io.Writer, tex string, display bool) error {
	return katex.Render(w, []byte(tex), display)
}

// MathMLEngine renders presentation MathML. latex2mathml converts whatever
// it is given, so the source is checked with CheckTeX first to surface
// malformed input as an error.
type MathMLEngine struct{}

// Name returns "mathml".
func (e *MathMLEngine) Name() string { return EngineMathML }

// Render writes a <math> element for tex.
func (e *MathMLEngine) Render(w io.Writer, tex string, display bool) error {
	if err := CheckTeX(tex); err != nil {
		return err
	}
	mode := "inline"
	if display {
		mode = "block"
	}
	_, err := io.WriteString(w, latex2mathml.Convert(tex, mathMLNamespace, mode, 0))
	return err
}
