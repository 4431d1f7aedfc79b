package cmd

import (
	"context"

	"github.com/ardnew/ctoken/cli/cmd/repl"
	"github.com/ardnew/ctoken/log"
)

// Repl starts an interactive session for evaluating templates against the
// loaded state and content pack.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()
	settings := settingsFrom(ctx)

	sess, err := Open(ctx, settings, logger)
	if err != nil {
		return err
	}

	cfg := repl.Config{
		Registry:  sess.Registry,
		Reload:    sess.Reload,
		StatePath: settings.State,
		Logger:    logger,
	}

	if sess.Pack != nil {
		cfg.Tick = sess.Tick
	}

	if ktx := kongContextFrom(ctx); ktx != nil {
		cfg.CacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, cfg)
}
