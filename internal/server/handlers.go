package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/logfields"
)

// language picks ?lang= (or the lang form field), then Accept-Language.
func (s *Server) language(r *http.Request) locale.Language {
	if v := r.FormValue("lang"); v != "" {
		if lang, err := locale.ParseLanguage(v); err == nil {
			return lang
		}
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		return locale.Match(h)
	}
	return s.lang
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sessionID(w, r)
	s.render(w, http.StatusOK, s.index, s.newIndexView(s.language(r)))
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	s.handleGenerate(w, r, physiomath.ModeMine)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	s.handleGenerate(w, r, physiomath.ModeArticle)
}

// handleGenerate runs one generation in the caller's session and shows the
// report, or the control panel with the localized error.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, mode physiomath.Mode) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lang := s.language(r)
	sess, id := s.session(w, r)

	req := physiomath.Request{
		Topic:      r.PostForm.Get("topic"),
		Language:   lang,
		Model:      r.PostForm.Get("model"),
		Researcher: r.PostForm.Get("researcher") == "on",
	}

	var (
		rep *physiomath.Report
		err error
	)
	if mode == physiomath.ModeMine {
		rep, err = sess.MineTheories(r.Context(), req)
	} else {
		rep, err = sess.GenerateArticle(r.Context(), req)
	}
	if err != nil {
		s.logger.Info("generation rejected",
			logfields.Session(id.String()),
			logfields.Mode(string(mode)),
			logfields.ErrorKind(physiomath.ErrorKindOf(err).String()),
			logfields.Error(err))

		view := s.newIndexView(lang)
		view.Error = errorMessage(lang, err)
		view.Researcher = req.Researcher
		if req.Model != "" {
			view.Model = req.Model
		}
		if mode == physiomath.ModeMine {
			view.Topic = req.Topic
		} else {
			view.ArticleTopic = req.Topic
		}
		s.render(w, statusFor(err), s.index, view)
		return
	}

	s.reports.put(rep)
	s.render(w, http.StatusOK, s.result, s.newResultView(rep))
}

// renderRequest is the body of POST /api/render.
type renderRequest struct {
	Content  string `json:"content"`
	Language string `json:"lang,omitempty"`
	Title    string `json:"title,omitempty"`
	Plain    bool   `json:"plain,omitempty"` // skip Markdown
}

type segmentJSON struct {
	Kind   string `json:"kind"`
	Body   string `json:"body"`
	Offset int    `json:"offset"`
}

type mathJSON struct {
	Inline int `json:"inline"`
	Block  int `json:"block"`
	Failed int `json:"failed"`
}

type renderResponse struct {
	ID       string        `json:"id"`
	HTML     string        `json:"html"`
	Segments []segmentJSON `json:"segments"`
	Math     mathJSON      `json:"math"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// handleRender renders posted Markdown without calling the model.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var in renderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeJSON(w, status, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	lang := s.language(r)
	if in.Language != "" {
		parsed, err := locale.ParseLanguage(in.Language)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		lang = parsed
	}

	rep, err := s.gen.Render(r.Context(), physiomath.RenderInput{
		Markdown: in.Content,
		Title:    in.Title,
		Language: lang,
		Plain:    in.Plain,
	})
	if err != nil {
		s.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	s.reports.put(rep)

	segments := s.gen.Segments(in.Content)
	out := renderResponse{
		ID:       rep.ID.String(),
		HTML:     rep.Body,
		Segments: make([]segmentJSON, 0, len(segments)),
		Math:     mathJSON{Inline: rep.Math.Inline, Block: rep.Math.Block, Failed: rep.Math.Failed},
	}
	for _, seg := range segments {
		out.Segments = append(out.Segments, segmentJSON{Kind: seg.Kind.String(), Body: seg.Body, Offset: seg.Offset})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Report download formats by file extension.
var reportFormats = map[string]string{
	".html": "text/html; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".pdf":  "application/pdf",
}

// handleReport serves a stored report as {id}.pdf, {id}.html, or {id}.md.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	dot := strings.LastIndexByte(file, '.')
	if dot < 0 {
		http.NotFound(w, r)
		return
	}
	ext := file[dot:]
	contentType, ok := reportFormats[ext]
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, err := uuid.Parse(file[:dot])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sr, ok := s.reports.get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var body []byte
	switch ext {
	case ".html":
		body = []byte(sr.report.HTML)
	case ".md":
		body = []byte(sr.report.Markdown)
	case ".pdf":
		if s.pdf == nil {
			http.NotFound(w, r)
			return
		}
		body, err = sr.pdfBytes(r.Context(), s.pdf)
		if err != nil {
			s.logger.Error("pdf export failed", logfields.ReportID(id.String()), logfields.Error(err))
			http.Error(w, "PDF export failed", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="physiomath-`+id.String()+`.pdf"`)
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes into a buffer first so a failed encode sends no partial body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("encoding JSON response", logfields.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("writing JSON response", logfields.Error(err))
	}
}

// statusFor maps a generation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, physiomath.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, physiomath.ErrEmptyTopic),
		errors.Is(err, physiomath.ErrTopicTooLong),
		errors.Is(err, physiomath.ErrUnknownModel),
		errors.Is(err, physiomath.ErrInvalidLanguage),
		errors.Is(err, physiomath.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch physiomath.ErrorKindOf(err) {
	case physiomath.MissingCredential:
		return http.StatusServiceUnavailable
	case physiomath.ConnectionFailure, physiomath.GenerationFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage localizes err, keeping the detail of input errors the
// string table has no message for.
func errorMessage(lang locale.Language, err error) string {
	if errors.Is(err, physiomath.ErrTopicTooLong) || errors.Is(err, physiomath.ErrUnknownModel) {
		return err.Error()
	}
	return physiomath.Localize(lang, err)
}
