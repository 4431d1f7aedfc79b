package token

// Provider supplies the values of a token.
type Provider interface {
	// IsMutable reports whether the values may change between context ticks.
	IsMutable() bool
	// Values returns the ordered values for name, which carries any input
	// argument. The result may be empty.
	Values(name Name) []string
}

// Readiness is implemented by providers that can be temporarily unable to
// produce a value. Contexts consult it when resolving in enforcing mode.
type Readiness interface {
	IsReady() bool
}

// Context resolves token names to providers.
//
// With enforce unset, Resolve is a structural probe: it returns the provider
// of any token that exists. With enforce set, it returns nil for a token that
// exists but cannot currently produce a value.
//
// A Context is treated as a read-only snapshot for the duration of a tick.
type Context interface {
	Resolve(name Name, enforce bool) Provider
}

// ContextFunc adapts a function to the [Context] interface.
type ContextFunc func(name Name, enforce bool) Provider

// Resolve calls f.
func (f ContextFunc) Resolve(name Name, enforce bool) Provider {
	return f(name, enforce)
}

// emptyContext resolves nothing.
type emptyContext struct{}

func (emptyContext) Resolve(Name, bool) Provider { return nil }

func orEmpty(ctx Context) Context {
	if ctx == nil {
		return emptyContext{}
	}

	return ctx
}
