package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amp-labs/tickfsm/statemachine"
)

// AnnotateError wraps an error with slog key-value pairs. When the returned
// error is logged through a logger set up by ConfigureLogging, the pairs are
// added to the record next to the error.
//
// Returns nil if err is nil.
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	r := slog.NewRecord(time.Now(), slog.LevelDebug, "", 0)
	r.Add(args...)

	var errAttrs []slog.Attr

	r.Attrs(func(attr slog.Attr) bool {
		errAttrs = append(errAttrs, attr)

		return true
	})

	return &slogError{
		err:   err,
		attrs: errAttrs,
	}
}

// AnnotateBuildError annotates err with the location of the first
// statemachine.BuildError it wraps: transition index, condition, selector and
// state, whichever are known.
func AnnotateBuildError(err error) error {
	var buildErr *statemachine.BuildError
	if !errors.As(err, &buildErr) {
		return err
	}

	var args []any

	if buildErr.TransitionIndex != statemachine.NoTransition {
		args = append(args, "transition_index", buildErr.TransitionIndex)
	}

	if buildErr.Condition != "" {
		args = append(args, "condition", buildErr.Condition)
	}

	if buildErr.Selector != "" {
		args = append(args, "selector", buildErr.Selector)
	}

	if buildErr.State != "" {
		args = append(args, "state", buildErr.State)
	}

	return AnnotateError(err, args...)
}

// slogError wraps an error with structured logging attributes.
type slogError struct {
	err   error
	attrs []slog.Attr
}

func (s *slogError) Error() string {
	return s.err.Error()
}

func (s *slogError) Unwrap() error {
	return s.err
}

var _ error = (*slogError)(nil)

// slogErrorLogger is a slog.Handler decorator that moves the attributes of
// annotated errors into the record.
type slogErrorLogger struct {
	inner slog.Handler
}

var _ slog.Handler = (*slogErrorLogger)(nil)

func (s *slogErrorLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return s.inner.Enabled(ctx, level)
}

func (s *slogErrorLogger) Handle(ctx context.Context, record slog.Record) error {
	var (
		baseAttrs []slog.Attr
		errAttrs  []slog.Attr
	)

	record.Attrs(func(attr slog.Attr) bool {
		var se *slogError

		if err, ok := attr.Value.Any().(error); ok && errors.As(err, &se) {
			baseAttrs = append(baseAttrs, slog.Any(attr.Key, se.err))
			errAttrs = append(errAttrs, se.attrs...)

			return true
		}

		baseAttrs = append(baseAttrs, attr)

		return true
	})

	if len(errAttrs) == 0 {
		return s.inner.Handle(ctx, record)
	}

	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	r.AddAttrs(baseAttrs...)
	r.AddAttrs(errAttrs...)

	return s.inner.Handle(ctx, r)
}

func (s *slogErrorLogger) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &slogErrorLogger{inner: s.inner.WithAttrs(attrs)}
}

func (s *slogErrorLogger) WithGroup(name string) slog.Handler {
	return &slogErrorLogger{inner: s.inner.WithGroup(name)}
}
