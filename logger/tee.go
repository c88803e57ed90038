package logger

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler fans every record out to several handlers.
type teeHandler struct {
	handlers []slog.Handler
}

// Tee returns a handler that passes each record to every handler enabled for
// its level. Nil handlers are skipped.
func Tee(handlers ...slog.Handler) slog.Handler { //nolint:ireturn
	live := make([]slog.Handler, 0, len(handlers))

	for _, h := range handlers {
		if h != nil {
			live = append(live, h)
		}
	}

	return &teeHandler{handlers: live}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range t.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}

		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &teeHandler{handlers: handlers}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &teeHandler{handlers: handlers}
}
