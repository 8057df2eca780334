package logger

import (
	"log/slog"

	"portfolio_aggregator/internal/app/port"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// slogAdapter implements port.Logger on top of an slog.Logger.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps l. A nil l falls back to the package-level logger set up by Init.
func NewSlogAdapter(l *slog.Logger) port.Logger {
	if l == nil {
		ensureInitialized()
		l = globalLogger
	}
	return &slogAdapter{l: l}
}

// NewZapAdapter exposes a zap logger through port.Logger.
func NewZapAdapter(z *zap.Logger) port.Logger {
	return &slogAdapter{l: slog.New(zapslog.NewHandler(z.Core()))}
}

// Nop returns a logger that discards everything.
func Nop() port.Logger {
	return NewZapAdapter(zap.NewNop())
}

// With returns a logger carrying the given attributes on every record.
func With(l port.Logger, args ...any) port.Logger {
	if a, ok := l.(*slogAdapter); ok {
		return &slogAdapter{l: a.l.With(args...)}
	}
	return l
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.l.Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.l.Error(msg, args...)
}
