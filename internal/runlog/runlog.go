// Package runlog provides structured run logging for Constructor,
// ThresholdAccepting, and CellularEA progress (SPEC_FULL.md §1, §2 C9).
// Built on go.uber.org/zap: neither the teacher nor any of the other
// complete example repos in the pack carries a logging dependency of its
// own, so this is grounded on the broader pack's own recurring choice —
// go.uber.org/zap is the most common structured-logging library among the
// other_examples/manifests repos (ahead of sirupsen/logrus and
// rs/zerolog) — rather than on any single example file.
package runlog

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// New returns a development-mode *zap.SugaredLogger suitable for CLI output:
// human-readable, leveled, with caller info.
func New() *zap.SugaredLogger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Nop returns a logger that discards everything, the default every
// component falls back to when no logger has been attached.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// WithContext attaches a logger to ctx for ThresholdAccepting and CellularEA,
// which already thread context.Context for cancellation, to pick up.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx by WithContext, or Nop if
// none was attached.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return Nop()
}
