package metrics

import (
	"time"

	"github.com/physiomath/go-physiomath/internal/completion"
	"github.com/physiomath/go-physiomath/internal/mathrender"
	"github.com/physiomath/go-physiomath/internal/mathseg"
)

// Recorder defines the observability hooks. It satisfies the observer
// interfaces of the math renderer and the completion client.
type Recorder interface {
	mathrender.Observer
	completion.Observer
	ObserveReport(mode, language, outcome string, d time.Duration)
	ObserveHTTP(route string, status int, d time.Duration)
	IncBusyRejection()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are off).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFormula(mathseg.Kind, bool)                   {}
func (NoopRecorder) ObserveCompletion(string, string, time.Duration)     {}
func (NoopRecorder) ObserveReport(string, string, string, time.Duration) {}
func (NoopRecorder) ObserveHTTP(string, int, time.Duration)              {}
func (NoopRecorder) IncBusyRejection()                                   {}

// Compile-time interface checks.
var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
