package registry

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/token"
)

// Registry is a [token.Context] holding providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]token.Provider // case-folded name -> provider
	names     []string                  // registration order, as declared
	logger    log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New returns an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{providers: make(map[string]token.Provider)}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// ValidName reports whether name can be registered: it must be non-empty
// and free of whitespace, separators and braces.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ":|{} \t\r\n,")
}

// Register adds a provider under name.
func (r *Registry) Register(name string, p token.Provider) error {
	if !ValidName(name) || p == nil {
		return ErrInvalidName.With(slog.String("name", name))
	}

	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[key]; ok {
		return ErrDuplicate.With(slog.String("name", name))
	}

	r.providers[key] = p
	r.names = append(r.names, name)

	r.logger.Trace("register token",
		slog.String("name", name),
		slog.Bool("mutable", p.IsMutable()))

	return nil
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (token.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]

	return p, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.names...)
}

// Resolve implements [token.Context]. In enforcing mode, providers that
// implement [token.Readiness] and are not ready resolve to nil.
func (r *Registry) Resolve(name token.Name, enforce bool) token.Provider {
	p, ok := r.Lookup(name.Name())
	if !ok {
		return nil
	}

	if enforce {
		if rd, ok := p.(token.Readiness); ok && !rd.IsReady() {
			return nil
		}
	}

	return p
}

// Values returns the values of the named token, or nil if it does not
// currently resolve.
func (r *Registry) Values(name token.Name) []string {
	if p := r.Resolve(name, true); p != nil {
		return p.Values(name)
	}

	return nil
}

// Suggest returns up to n registered names that fuzzily match name, best
// first.
func (r *Registry) Suggest(name string, n int) []string {
	if n <= 0 {
		return nil
	}

	matches := fuzzy.Find(name, r.Names())

	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches {
		if len(out) == n {
			break
		}

		out = append(out, m.Str)
	}

	return out
}
