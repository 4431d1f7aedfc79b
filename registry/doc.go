// Package registry implements a [token.Context] backed by named providers.
//
// Names are matched case-insensitively. Providers are either immutable
// ([Static]), mutated between ticks by the host ([Var]), computed on demand
// ([Func]), or derived from conditional rules ([Dynamic]). A set of builtin
// tokens describing the host system can be registered with
// [Registry.RegisterBuiltins].
//
// A Registry may be read concurrently. Mutating providers while a tick is
// being evaluated breaks the snapshot guarantee that templates rely on; hosts
// apply changes, typically through [Registry.ApplyState], between ticks.
package registry
