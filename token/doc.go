// Package token evaluates token templates against a mutable context.
//
// A [String] holds a lexed template and classifies every placeholder it
// references once, at construction, as resolved or invalid. Templates whose
// providers are all immutable are evaluated exactly once; mutable templates
// start unevaluated and are recomputed by [String.UpdateContext] on every
// context tick.
//
// A [DynamicValue] assigns candidate values to a derived token while all of
// its [Condition] values match. [String], [DynamicValue] and [TokenCondition]
// share the [Contextual] shape so aggregates can fold over them with
// [AnyMutable], [AllReady] and [UpdateAll].
//
// # Interpolation
//
// A placeholder is replaced by the first value its provider yields, or by
// nothing when the provider yields no values. Providers order their values
// deliberately, so the first value is the canonical one. A placeholder whose
// provider cannot currently produce a value is left in the output verbatim
// and the evaluation is marked not ready.
//
// Input arguments are evaluated before the placeholder that owns them: in
// "{{Hearts:{{Spouse}}}}" the value of Spouse, trimmed, becomes the input of
// Hearts. If any nested placeholder fails, its owner fails too.
package token
