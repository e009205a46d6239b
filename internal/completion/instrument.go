package completion

import (
	"context"
	"log/slog"
	"time"

	"github.com/physiomath/go-physiomath/internal/logfields"
)

// Observer records completion outcomes, e.g. as metrics.
type Observer interface {
	ObserveCompletion(model, outcome string, elapsed time.Duration)
}

type instrumented struct {
	next     Completer
	observer Observer
	logger   *slog.Logger
}

// Instrument wraps c so each call is reported to obs and logged.
// A nil obs or logger is skipped.
func Instrument(c Completer, obs Observer, logger *slog.Logger) Completer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &instrumented{next: c, observer: obs, logger: logger}
}

func (i *instrumented) Complete(ctx context.Context, model, prompt string) (string, error) {
	start := time.Now()
	text, err := i.next.Complete(ctx, model, prompt)
	elapsed := time.Since(start)
	outcome := Outcome(err)

	if i.observer != nil {
		i.observer.ObserveCompletion(model, outcome, elapsed)
	}

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	i.logger.LogAttrs(ctx, level, "completion",
		logfields.Model(model),
		logfields.ErrorKind(outcome),
		logfields.Duration(elapsed),
		logfields.Bytes(len(text)))

	return text, err
}
