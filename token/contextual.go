package token

// Contextual is implemented by values that are re-evaluated as the context
// changes.
type Contextual interface {
	// IsMutable reports whether the value may change between ticks.
	IsMutable() bool
	// IsReady reports whether the value fully resolved in the last
	// evaluation.
	IsReady() bool
	// UpdateContext re-evaluates against ctx and reports whether anything
	// changed.
	UpdateContext(ctx Context) bool
}

// AnyMutable reports whether any item is mutable. It is false for no items.
func AnyMutable[T Contextual](items []T) bool {
	for _, item := range items {
		if item.IsMutable() {
			return true
		}
	}

	return false
}

// AllReady reports whether every item is ready. It is true for no items.
func AllReady[T Contextual](items []T) bool {
	for _, item := range items {
		if !item.IsReady() {
			return false
		}
	}

	return true
}

// UpdateAll updates every item against ctx, in order, and reports whether
// any of them changed. Every item is updated even after a change is seen.
func UpdateAll[T Contextual](ctx Context, items []T) bool {
	changed := false

	for _, item := range items {
		if item.UpdateContext(ctx) {
			changed = true
		}
	}

	return changed
}
