package token

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
)

// Condition is a [Contextual] predicate over the context.
type Condition interface {
	Contextual
	// IsMatch reports whether the condition held in the last evaluation.
	// It is false whenever the condition is not ready.
	IsMatch() bool
}

// TokenCondition matches when any value of a token is in an allowed set.
//
// The key is a placeholder written without braces ("Hearts:Abigail"). The
// allowed values are a template whose value is split on commas
// ("5, 6" or "{{Spouse}}, Abigail"). Values compare case-insensitively.
type TokenCondition struct {
	key     *String
	ref     *lang.TokenRef
	allowed *String
	mutable bool
	logger  log.Logger

	mu    sync.RWMutex
	state conditionState
}

type conditionState struct {
	evaluated bool
	ready     bool
	match     bool
	values    []string
}

// NewTokenCondition parses a condition from its key and allowed values.
func NewTokenCondition(
	key, values string,
	ctx Context,
	opts ...Option,
) (*TokenCondition, error) {
	ctx = orEmpty(ctx)
	cfg := makeConfig(opts...)

	keyOpts := append(slices.Clone(opts),
		WithLexOptions(lang.WithImpliedBraces(true)))

	k, err := Parse(key, ctx, keyOpts...)
	if err != nil {
		return nil, ErrInvalidCondition.Wrap(err).
			With(slog.String("key", key))
	}

	ref, ok := singleRef(k)
	if !ok {
		return nil, ErrInvalidCondition.
			With(slog.String("key", key), slog.String("issue", "empty key"))
	}

	allowed, err := Parse(values, ctx, opts...)
	if err != nil {
		return nil, ErrInvalidCondition.Wrap(err).
			With(slog.String("key", key), slog.String("values", values))
	}

	c := &TokenCondition{
		key:     k,
		ref:     ref,
		allowed: allowed,
		mutable: k.IsMutable() || allowed.IsMutable(),
		logger:  cfg.logger,
	}

	if !c.mutable {
		c.state = c.evaluate(ctx)
	}

	return c, nil
}

func singleRef(s *String) (*lang.TokenRef, bool) {
	if !s.IsSingleTokenOnly() {
		return nil, false
	}

	ref, ok := s.nodes[0].(*lang.TokenRef)

	return ref, ok
}

// Key returns the condition key template.
func (c *TokenCondition) Key() *String { return c.key }

// Allowed returns the allowed values template.
func (c *TokenCondition) Allowed() *String { return c.allowed }

// IsMutable reports whether the key or the allowed values are mutable.
func (c *TokenCondition) IsMutable() bool { return c.mutable }

// IsReady reports whether both the key and the allowed values resolved in
// the last evaluation.
func (c *TokenCondition) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.ready
}

// IsMatch reports whether the condition held in the last evaluation.
func (c *TokenCondition) IsMatch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.ready && c.state.match
}

// CurrentValues returns the key's values seen in the last evaluation.
func (c *TokenCondition) CurrentValues() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.state.values)
}

// UpdateContext re-evaluates a mutable condition and reports whether its
// readiness, match or observed values changed.
func (c *TokenCondition) UpdateContext(ctx Context) bool {
	if !c.mutable {
		return false
	}

	ctx = orEmpty(ctx)

	// both templates refresh, the key even if the values changed
	keyChanged := c.key.UpdateContext(ctx)
	allowedChanged := c.allowed.UpdateContext(ctx)

	next := c.evaluate(ctx)

	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()

	changed := keyChanged || allowedChanged ||
		!prev.evaluated ||
		prev.ready != next.ready ||
		prev.match != next.match ||
		!slices.Equal(prev.values, next.values)

	c.logger.Trace("condition update",
		slog.String("key", c.key.Raw()),
		slog.Bool("ready", next.ready),
		slog.Bool("match", next.match),
		slog.Bool("changed", changed))

	return changed
}

func (c *TokenCondition) evaluate(ctx Context) conditionState {
	state := conditionState{evaluated: true}

	name, provider := resolveRef(ctx, c.ref)
	if provider == nil {
		return state
	}

	var sb strings.Builder
	if !substitute(ctx, c.allowed.nodes, &sb) {
		return state
	}

	state.ready = true
	state.values = provider.Values(name)

	allowed := splitValues(sb.String())
	for _, v := range state.values {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(v))]; ok {
			state.match = true

			break
		}
	}

	return state
}

// splitValues splits a comma-separated list into a case-folded set.
func splitValues(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for v := range strings.SplitSeq(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			set[strings.ToLower(v)] = struct{}{}
		}
	}

	return set
}
