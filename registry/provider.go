package registry

import (
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/ctoken/token"
)

// Static is an immutable provider.
type Static struct {
	values []string
	inputs map[string][]string
}

// NewStatic returns a provider of values for uses without input.
func NewStatic(values ...string) *Static {
	return &Static{values: slices.Clone(values)}
}

// WithInput adds values returned when the token is used with input. It is
// meant for construction, before the provider is registered.
func (s *Static) WithInput(input string, values ...string) *Static {
	if s.inputs == nil {
		s.inputs = make(map[string][]string)
	}

	s.inputs[inputKey(input)] = slices.Clone(values)

	return s
}

func (*Static) IsMutable() bool { return false }

func (s *Static) Values(name token.Name) []string {
	if input, ok := name.Input(); ok {
		return slices.Clone(s.inputs[inputKey(input)])
	}

	return slices.Clone(s.values)
}

// Var is a mutable provider whose values are set by the host between ticks.
type Var struct {
	mu     sync.RWMutex
	values []string
	inputs map[string][]string
	ready  bool
}

// NewVar returns a ready provider with the given values.
func NewVar(values ...string) *Var {
	return &Var{values: slices.Clone(values), ready: true}
}

// Set replaces the values for uses without input.
func (v *Var) Set(values ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.values = slices.Clone(values)
}

// SetInput replaces the values for uses with input. Setting no values
// removes the input.
func (v *Var) SetInput(input string, values ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(values) == 0 {
		delete(v.inputs, inputKey(input))

		return
	}

	if v.inputs == nil {
		v.inputs = make(map[string][]string)
	}

	v.inputs[inputKey(input)] = slices.Clone(values)
}

// ClearInputs removes the values of every input.
func (v *Var) ClearInputs() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.inputs = nil
}

// SetReady sets whether the token can currently produce a value.
func (v *Var) SetReady(ready bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.ready = ready
}

func (*Var) IsMutable() bool { return true }

func (v *Var) IsReady() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.ready
}

func (v *Var) Values(name token.Name) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if input, ok := name.Input(); ok {
		return slices.Clone(v.inputs[inputKey(input)])
	}

	return slices.Clone(v.values)
}

// Func computes values on demand.
type Func struct {
	fn      func(token.Name) []string
	mutable bool
}

// NewFunc returns a provider computing values with fn. A mutable Func is
// re-evaluated on every tick.
func NewFunc(mutable bool, fn func(token.Name) []string) *Func {
	return &Func{fn: fn, mutable: mutable}
}

func (f *Func) IsMutable() bool { return f.mutable }

func (f *Func) Values(name token.Name) []string {
	if f.fn == nil {
		return nil
	}

	return f.fn(name)
}

// Dynamic derives its values from conditional rules. The values are the
// candidates of the last matching rule.
type Dynamic struct {
	mu    sync.RWMutex
	rules []*token.DynamicValue
}

// NewDynamic returns a provider with the given rules.
func NewDynamic(rules ...*token.DynamicValue) *Dynamic {
	return &Dynamic{rules: slices.Clone(rules)}
}

// Add appends a rule. Later rules take precedence.
func (d *Dynamic) Add(rule *token.DynamicValue) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rules = append(d.rules, rule)
}

// Rules returns the rules in declaration order.
func (d *Dynamic) Rules() []*token.DynamicValue {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.rules)
}

// IsMutable reports whether any rule is mutable.
func (d *Dynamic) IsMutable() bool {
	return token.AnyMutable(d.Rules())
}

// IsReady reports whether any rule matches.
func (d *Dynamic) IsReady() bool {
	return d.match() != nil
}

func (d *Dynamic) Values(token.Name) []string {
	if rule := d.match(); rule != nil {
		return rule.Values()
	}

	return nil
}

// UpdateContext updates every rule and reports whether any changed.
func (d *Dynamic) UpdateContext(ctx token.Context) bool {
	return token.UpdateAll(ctx, d.Rules())
}

func (d *Dynamic) match() *token.DynamicValue {
	rules := d.Rules()

	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].IsMatch() {
			return rules[i]
		}
	}

	return nil
}

func inputKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
