package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/pack"
	"github.com/ardnew/ctoken/registry"
)

// Settings select what a [Session] loads.
type Settings struct {
	Pack        string
	State       string
	Builtins    bool
	Concurrency int
}

// Session is a registry together with the state file and content pack it
// was loaded from.
type Session struct {
	Registry *registry.Registry
	Pack     *pack.Pack

	settings Settings
	logger   log.Logger
}

// Open builds a registry from s. The state is applied before the pack is
// loaded so the pack's templates classify against it.
func Open(ctx context.Context, s Settings, logger log.Logger) (*Session, error) {
	sess := &Session{
		Registry: registry.New(registry.WithLogger(logger)),
		settings: s,
		logger:   logger,
	}

	if s.Builtins {
		if err := sess.Registry.RegisterBuiltins(); err != nil {
			return nil, ErrOpenSession.Wrap(err)
		}
	}

	if err := sess.Reload(ctx); err != nil {
		return nil, err
	}

	if s.Pack != "" {
		p, err := pack.LoadFile(ctx, s.Pack, sess.Registry,
			pack.WithLogger(logger),
			pack.WithConcurrency(s.Concurrency))
		if err != nil {
			return nil, ErrOpenSession.Wrap(err)
		}

		for _, w := range p.Warnings() {
			logger.WarnContext(ctx, "unresolved token",
				slog.String("owner", w.Owner),
				slog.String("token", w.Token),
				slog.Any("suggestions", w.Suggestions))
		}

		sess.Pack = p
	}

	logger.DebugContext(ctx, "session open",
		slog.String("pack", s.Pack),
		slog.String("state", s.State),
		slog.Int("tokens", len(sess.Registry.Names())))

	return sess, nil
}

// Reload re-reads the state file, if any, into the registry.
func (s *Session) Reload(ctx context.Context) error {
	if s.settings.State == "" {
		return nil
	}

	st, err := registry.LoadStateFile(ctx, s.settings.State)
	if err != nil {
		return ErrOpenSession.Wrap(err)
	}

	if err := s.Registry.ApplyState(st); err != nil {
		return ErrOpenSession.Wrap(err)
	}

	return nil
}

// Tick reloads the state and runs one pack update.
func (s *Session) Tick(ctx context.Context) (pack.Result, error) {
	if s.Pack == nil {
		return pack.Result{}, ErrNoPack
	}

	if err := s.Reload(ctx); err != nil {
		return pack.Result{}, err
	}

	return s.Pack.Update(ctx, s.Registry)
}
