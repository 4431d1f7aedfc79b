package token

import (
	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
)

// Option configures construction of strings and conditions.
type Option func(*config)

type config struct {
	logger  log.Logger
	lexOpts []lang.Option
	cache   *lang.Cache
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithLexOptions appends options passed to the lexer.
func WithLexOptions(opts ...lang.Option) Option {
	return func(c *config) { c.lexOpts = append(c.lexOpts, opts...) }
}

// WithCache lexes through cache instead of lexing every template anew.
func WithCache(cache *lang.Cache) Option {
	return func(c *config) { c.cache = cache }
}
