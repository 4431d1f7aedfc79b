package pack

import (
	"runtime"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/token"
)

// Option configures a Pack.
type Option func(*config)

type config struct {
	logger      log.Logger
	concurrency int
	cache       *lang.Cache
}

func makeConfig(opts ...Option) config {
	c := config{
		concurrency: runtime.GOMAXPROCS(0),
		cache:       lang.DefaultCache(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

func (c config) tokenOptions() []token.Option {
	return []token.Option{
		token.WithLogger(c.logger),
		token.WithCache(c.cache),
	}
}

// WithLogger sets the logger used for load and tick output.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithConcurrency bounds the number of changes evaluated at once during a
// tick. Values less than 1 select GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}

		c.concurrency = n
	}
}

// WithCache sets the lexer cache shared by the pack's templates. A nil cache
// disables caching.
func WithCache(cache *lang.Cache) Option {
	return func(c *config) { c.cache = cache }
}
