package pack

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/ctoken/token"
)

// Result describes what changed during one tick.
type Result struct {
	// Tokens are the dynamic tokens with a rule that changed, in
	// declaration order.
	Tokens []string
	// Changed are the patches that changed, in declaration order.
	Changed []*Patch
}

// Update runs one tick against reg. The dynamic token rules are updated in
// declaration order, since later rules may depend on earlier ones. The
// patches are then updated concurrently and Update returns once every patch
// has finished.
//
// The tick is aborted only if ctx is done before it begins.
func (p *Pack) Update(ctx context.Context, reg token.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, ErrTick.Wrap(err).With(slog.String("pack", p.name))
	}

	var res Result

	for _, r := range p.rules {
		if !r.value.UpdateContext(reg) {
			continue
		}

		name := r.value.Name().Name()
		if !slices.ContainsFunc(res.Tokens, func(s string) bool {
			return strings.EqualFold(s, name)
		}) {
			res.Tokens = append(res.Tokens, name)
		}
	}

	changed := make([]bool, len(p.patches))

	var g errgroup.Group

	g.SetLimit(p.concurrency)

	for i, patch := range p.patches {
		g.Go(func() error {
			changed[i] = patch.UpdateContext(reg)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, ErrTick.Wrap(err).With(slog.String("pack", p.name))
	}

	for i, patch := range p.patches {
		if changed[i] {
			res.Changed = append(res.Changed, patch)
		}
	}

	p.logger.TraceContext(ctx, "tick",
		slog.String("pack", p.name),
		slog.Int("tokens_changed", len(res.Tokens)),
		slog.Int("patches_changed", len(res.Changed)))

	return res, nil
}

// Applied returns the patches that currently apply, in declaration order.
func (p *Pack) Applied() []*Patch {
	var out []*Patch

	for _, patch := range p.patches {
		if patch.IsApplied() {
			out = append(out, patch)
		}
	}

	return out
}
