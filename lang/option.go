package lang

import "github.com/ardnew/ctoken/log"

// DefaultMaxDepth is the default maximum nesting depth of token references.
//
//nolint:gochecknoglobals
var DefaultMaxDepth = 100

// Option configures the lexer.
type Option func(*config)

type config struct {
	impliedBraces bool
	maxDepth      int
	logger        log.Logger
}

// optionsKey holds the subset of configuration that affects lexer output.
type optionsKey struct {
	ImpliedBraces bool
	MaxDepth      int
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

func (c config) key() optionsKey {
	return optionsKey{ImpliedBraces: c.impliedBraces, MaxDepth: c.maxDepth}
}

// WithImpliedBraces treats the entire input as the inside of a single
// placeholder, as if it were wrapped in "{{" and "}}".
func WithImpliedBraces(implied bool) Option {
	return func(c *config) { c.impliedBraces = implied }
}

// WithMaxDepth sets the maximum nesting depth of token references.
// Values less than 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}
