// Package lang lexes token templates into a tree of literal text and token
// references.
//
// # Syntax
//
// A template is free text containing placeholders delimited by double braces:
//
//	Season is {{Season}}
//	{{Hearts:Abigail}}
//	{{Hearts:{{Spouse}}}}
//	{{Random |key=value}}
//
// The name of a placeholder is the trimmed text up to the first ':' or '|'
// or the closing braces. Everything after the name is its input argument: a
// ':' separator is dropped, a '|' separator is kept as the first character
// of the input. The input is itself a template and may contain placeholders
// nested to any depth up to the configured maximum.
//
// An opening "{{" with no matching "}}" is literal text. There is no escape
// syntax, no loops and no branches; conditions are expressed outside the
// template.
//
// # Implied braces
//
// With [WithImpliedBraces], the whole input is read as the inside of a single
// placeholder. This is how condition keys such as "Hearts:Abigail" are lexed.
//
// # Source fidelity
//
// Every node keeps the exact source text it was lexed from, so [Source]
// applied to the result of [Lex] always reproduces the input.
package lang
