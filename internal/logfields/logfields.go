// Package logfields holds the canonical slog attribute keys so that every
// package logs the same concept under the same name.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names.
const (
	KeyReportID    = "report_id"
	KeyMode        = "mode"
	KeyLanguage    = "language"
	KeyModel       = "model"
	KeyEngine      = "engine"
	KeyFormulaKind = "formula_kind"
	KeyOffset      = "offset"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyErrorKind   = "error_kind"
	KeyPath        = "path"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeySession     = "session"
	KeyBytes       = "bytes"
	KeyError       = "error"
)

func ReportID(id string) slog.Attr     { return slog.String(KeyReportID, id) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Language(l string) slog.Attr      { return slog.String(KeyLanguage, l) }
func Model(m string) slog.Attr         { return slog.String(KeyModel, m) }
func Engine(e string) slog.Attr        { return slog.String(KeyEngine, e) }
func FormulaKind(k string) slog.Attr   { return slog.String(KeyFormulaKind, k) }
func Offset(o int) slog.Attr           { return slog.Int(KeyOffset, o) }
func Stage(s string) slog.Attr         { return slog.String(KeyStage, s) }
func ErrorKind(k string) slog.Attr     { return slog.String(KeyErrorKind, k) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Session(id string) slog.Attr      { return slog.String(KeySession, id) }
func Bytes(n int) slog.Attr            { return slog.Int(KeyBytes, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

// Error returns the error attribute; a nil error logs as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
