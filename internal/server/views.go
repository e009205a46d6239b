package server

import (
	"html/template"
	"net/http"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/logfields"
)

// Defaults shown in an empty control panel.
const (
	defaultArticleTopic = "Hypertension"
	defaultResearcher   = true
)

// indexView feeds index.html.
type indexView struct {
	Lang         string
	Dir          string
	OtherLang    string
	T            map[string]string
	CSS          template.CSS
	Error        string
	Researcher   bool
	Models       []physiomath.Model
	Model        string
	Topic        string
	ArticleTopic string
}

// resultView feeds result.html.
type resultView struct {
	Lang           string
	Dir            string
	T              map[string]string
	CSS            template.CSS
	Stylesheets    []string
	Title          string
	Body           template.HTML
	PDF            bool
	ReportID       string
	Model          string
	FailedFormulas int
}

func (s *Server) newIndexView(lang locale.Language) *indexView {
	return &indexView{
		Lang:         lang.String(),
		Dir:          lang.Dir(),
		OtherLang:    lang.Other().String(),
		T:            s.strings.Texts(lang),
		CSS:          template.CSS(s.appCSS), // #nosec G203 -- loaded asset
		Researcher:   defaultResearcher,
		Models:       s.gen.Models(),
		Model:        s.gen.DefaultModel(),
		ArticleTopic: defaultArticleTopic,
	}
}

func (s *Server) newResultView(rep *physiomath.Report) *resultView {
	return &resultView{
		Lang:           rep.Language.String(),
		Dir:            rep.Language.Dir(),
		T:              s.strings.Texts(rep.Language),
		CSS:            template.CSS(s.appCSS + "\n" + s.gen.CSS()), // #nosec G203 -- loaded assets
		Stylesheets:    s.gen.Stylesheets(),
		Title:          rep.Title,
		Body:           template.HTML(rep.Body), // #nosec G203 -- pipeline output, not request input
		PDF:            s.pdf != nil,
		ReportID:       rep.ID.String(),
		Model:          rep.Model,
		FailedFormulas: rep.Math.Failed,
	}
}

// render executes tmpl into w with status.
func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("rendering page", logfields.Stage(tmpl.Name()), logfields.Error(err))
	}
}
