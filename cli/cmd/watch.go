package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tevino/abool/v2"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/pack"
)

// Watch runs the content pack on an interval, reloading the state file
// before every tick, and prints the changes of each tick.
type Watch struct {
	Interval time.Duration `default:"1s"   help:"Time between ticks."                                short:"n"`
	Count    int           `default:"0"    help:"Stop after this many ticks (0 runs until interrupted)." short:"c"`
	Output   string        `default:"text" enum:"text,json,yaml"                                    help:"Output format." short:"o"`
}

// tickView is the serialized form of one tick.
type tickView struct {
	Tick    int64       `json:"tick"              yaml:"tick"`
	Tokens  []string    `json:"tokens,omitempty"  yaml:"tokens,omitempty"`
	Changed []patchView `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// Run executes the watch command.
func (wc *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	sess, err := Open(ctx, settingsFrom(ctx), logger)
	if err != nil {
		return err
	}

	if sess.Pack == nil {
		return ErrNoPack
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return ErrSchedule.Wrap(err)
	}

	t := &ticker{
		sess:    sess,
		out:     outputFrom(ctx),
		format:  wc.Output,
		limit:   int64(wc.Count),
		done:    make(chan struct{}),
		running: abool.New(),
		logger:  logger,
	}

	_, err = s.NewJob(
		gocron.DurationJob(wc.Interval),
		gocron.NewTask(func() { t.run(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return ErrSchedule.Wrap(err)
	}

	logger.DebugContext(ctx, "watch start",
		slog.Duration("interval", wc.Interval),
		slog.Int("count", wc.Count))

	s.Start()

	select {
	case <-ctx.Done():
	case <-t.done:
	}

	if err := s.Shutdown(); err != nil {
		return ErrSchedule.Wrap(err)
	}

	return nil
}

// ticker runs one tick per scheduled call. A call that arrives while the
// previous tick is still running is skipped.
type ticker struct {
	sess    *Session
	out     io.Writer
	format  string
	limit   int64
	count   atomic.Int64
	done    chan struct{}
	once    sync.Once
	running *abool.AtomicBool
	logger  log.Logger
}

func (t *ticker) run(ctx context.Context) {
	if !t.running.SetToIf(false, true) {
		t.logger.DebugContext(ctx, "tick skipped")

		return
	}

	defer t.running.UnSet()

	if ctx.Err() != nil {
		return
	}

	n := t.count.Add(1)

	res, err := t.sess.Tick(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "tick failed",
			slog.Int64("tick", n), slog.Any("error", err))
	} else if err := t.print(ctx, n, res); err != nil {
		t.logger.WarnContext(ctx, "tick output failed",
			slog.Int64("tick", n), slog.Any("error", err))
	}

	if t.limit > 0 && n >= t.limit {
		t.once.Do(func() { close(t.done) })
	}
}

func (t *ticker) print(ctx context.Context, n int64, res pack.Result) error {
	if len(res.Changed) == 0 && len(res.Tokens) == 0 {
		return nil
	}

	view := tickView{Tick: n, Tokens: res.Tokens, Changed: viewPatches(res.Changed)}

	return encode(ctx, t.out, t.format, view, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "# tick %d\n", n); err != nil {
			return err
		}

		return writePatchesText(w, res.Changed)
	})
}
