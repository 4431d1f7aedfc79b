package token

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
)

// String is a template evaluated against a [Context].
//
// Classification (resolved and invalid tokens, mutability, single-token
// form) is fixed at construction. The value has three states: unevaluated,
// evaluated but not ready, and evaluated and ready. An immutable String is
// evaluated at most once, during construction; a mutable String is evaluated
// only by [String.UpdateContext].
//
// A String is safe for concurrent readers. Each update publishes its value
// and readiness together.
type String struct {
	raw         string
	nodes       []lang.Node
	resolved    NameSet
	invalid     []string
	mutable     bool
	singleToken bool
	logger      log.Logger

	mu    sync.RWMutex
	state evaluation
}

type evaluation struct {
	value     string
	evaluated bool
	ready     bool
}

// Parse lexes raw and constructs a String from the result.
func Parse(raw string, ctx Context, opts ...Option) (*String, error) {
	cfg := makeConfig(opts...)

	lexOpts := append([]lang.Option{lang.WithLogger(cfg.logger)}, cfg.lexOpts...)

	var (
		nodes []lang.Node
		err   error
	)

	if cfg.cache != nil {
		nodes, err = cfg.cache.Lex(context.Background(), raw, lexOpts...)
	} else {
		nodes, err = lang.Lex(raw, lexOpts...)
	}

	if err != nil {
		return nil, ErrLex.Wrap(err).With(slog.String("template", raw))
	}

	return newString(nodes, ctx, cfg), nil
}

// NewString constructs a String from already-lexed nodes.
func NewString(nodes []lang.Node, ctx Context, opts ...Option) *String {
	return newString(nodes, ctx, makeConfig(opts...))
}

func newString(nodes []lang.Node, ctx Context, cfg config) *String {
	ctx = orEmpty(ctx)

	s := &String{
		raw:    lang.Source(nodes),
		nodes:  nodes,
		logger: cfg.logger,
	}

	if strings.TrimSpace(s.raw) == "" {
		s.state = evaluation{value: s.raw, evaluated: true, ready: true}

		return s
	}

	for ref := range lang.Refs(nodes) {
		name := refName(ref)

		provider := ctx.Resolve(name, false)
		if provider == nil {
			s.invalid = append(s.invalid, ref.Source)

			continue
		}

		s.resolved.Add(name)

		if provider.IsMutable() {
			s.mutable = true
		}
	}

	if len(nodes) == 1 {
		_, s.singleToken = nodes[0].(*lang.TokenRef)
	}

	if !s.mutable && len(s.invalid) == 0 {
		s.state = s.evaluate(ctx)
	}

	s.logger.Trace("token string",
		slog.String("raw", s.raw),
		slog.Int("resolved", s.resolved.Len()),
		slog.Int("invalid", len(s.invalid)),
		slog.Bool("mutable", s.mutable),
		slog.Bool("ready", s.state.ready))

	return s
}

// refName returns the name of ref with its input taken verbatim.
func refName(ref *lang.TokenRef) Name {
	name := NewName(ref.Name)
	if ref.HasInput {
		name = name.WithInput(ref.InputSource())
	}

	return name
}

// UpdateContext re-evaluates a mutable String against ctx and reports whether
// its value changed. A previously unevaluated value always counts as
// changed. Immutable strings are never re-evaluated.
func (s *String) UpdateContext(ctx Context) bool {
	if !s.mutable {
		return false
	}

	next := s.evaluate(orEmpty(ctx))

	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	changed := !prev.evaluated || prev.value != next.value

	s.logger.Trace("token string update",
		slog.String("raw", s.raw),
		slog.String("value", next.value),
		slog.Bool("ready", next.ready),
		slog.Bool("changed", changed))

	return changed
}

func (s *String) evaluate(ctx Context) evaluation {
	var sb strings.Builder

	ready := substitute(ctx, s.nodes, &sb)

	return evaluation{value: sb.String(), evaluated: true, ready: ready}
}

// substitute writes the value of nodes to sb and reports whether every
// placeholder resolved.
func substitute(ctx Context, nodes []lang.Node, sb *strings.Builder) bool {
	ready := true

	for _, n := range nodes {
		switch n := n.(type) {
		case *lang.Literal:
			sb.WriteString(n.Text)

		case *lang.TokenRef:
			name, provider := resolveRef(ctx, n)
			if provider == nil {
				sb.WriteString(n.Source)

				ready = false

				continue
			}

			if values := provider.Values(name); len(values) > 0 {
				sb.WriteString(values[0])
			}
		}
	}

	return ready
}

// resolveRef evaluates the input of ref and resolves the resulting name in
// enforcing mode. The provider is nil if the token or any token nested in its
// input cannot currently produce a value.
func resolveRef(ctx Context, ref *lang.TokenRef) (Name, Provider) {
	name := NewName(ref.Name)

	if ref.HasInput {
		var sb strings.Builder
		if !substitute(ctx, ref.Input, &sb) {
			return name.WithInput(sb.String()), nil
		}

		name = name.WithInput(sb.String())
	}

	return name, ctx.Resolve(name, true)
}

// Raw returns the template source.
func (s *String) Raw() string { return s.raw }

// Nodes returns the lexed template.
func (s *String) Nodes() []lang.Node { return append([]lang.Node(nil), s.nodes...) }

// Value returns the last evaluated value. The second result is false if the
// String has not been evaluated.
func (s *String) Value() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.value, s.state.evaluated
}

// IsReady reports whether the last evaluation resolved every placeholder.
// It is false before the first evaluation.
func (s *String) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.ready
}

// IsMutable reports whether any referenced token was mutable at
// construction.
func (s *String) IsMutable() bool { return s.mutable }

// IsSingleTokenOnly reports whether the template is exactly one placeholder
// with no surrounding text.
func (s *String) IsSingleTokenOnly() bool { return s.singleToken }

// HasAnyTokens reports whether the template references any token.
func (s *String) HasAnyTokens() bool {
	return s.resolved.Len() > 0 || len(s.invalid) > 0
}

// ResolvedTokens returns the distinct names that resolved at construction.
func (s *String) ResolvedTokens() []Name { return s.resolved.Slice() }

// InvalidTokens returns the source text of every placeholder that did not
// resolve at construction.
func (s *String) InvalidTokens() []string {
	return append([]string(nil), s.invalid...)
}

// ReferencedNames iterates every token name referenced in the template, in
// pre-order, including names nested in input arguments and names that did
// not resolve. Duplicates are kept.
func (s *String) ReferencedNames() iter.Seq[Name] {
	return func(yield func(Name) bool) {
		for ref := range lang.Refs(s.nodes) {
			if !yield(refName(ref)) {
				return
			}
		}
	}
}

// String returns the last evaluated value, or the template source if the
// String has not been evaluated.
func (s *String) String() string {
	if v, ok := s.Value(); ok {
		return v
	}

	return s.raw
}
