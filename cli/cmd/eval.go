package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/token"
)

// ErrNotReady is returned when a template does not fully resolve.
var ErrNotReady = NewError("template not ready")

// Eval evaluates a template against the loaded state and content pack.
type Eval struct {
	Template string `arg:"" help:"Template to evaluate." name:"template"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	sess, err := Open(ctx, settingsFrom(ctx), logger)
	if err != nil {
		return err
	}

	if sess.Pack != nil {
		if _, err := sess.Pack.Update(ctx, sess.Registry); err != nil {
			return err
		}
	}

	s, err := token.Parse(e.Template, sess.Registry,
		token.WithLogger(logger),
		token.WithCache(lang.DefaultCache()))
	if err != nil {
		return err
	}

	s.UpdateContext(sess.Registry)

	v, ok := s.Value()
	if !ok || !s.IsReady() {
		return ErrNotReady.With(
			slog.String("template", e.Template),
			slog.Any("invalid", s.InvalidTokens()))
	}

	if _, err := fmt.Fprintln(outputFrom(ctx), v); err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}
