package pack

import (
	"sync"

	"github.com/ardnew/ctoken/token"
)

// Field is a named template of a [Patch].
type Field struct {
	Key   string
	Value *token.String
}

// Patch is a conditional change. It applies while every condition matches
// and every field template is ready.
type Patch struct {
	logName    string
	fields     []Field
	conditions []token.Condition

	mu        sync.RWMutex
	evaluated bool
	applied   bool
}

// NewPatch returns a patch with the given fields and conditions.
func NewPatch(logName string, fields []Field, conds ...token.Condition) *Patch {
	p := &Patch{
		logName:    logName,
		fields:     append([]Field(nil), fields...),
		conditions: append([]token.Condition(nil), conds...),
	}

	p.applied = p.compute()

	return p
}

// LogName returns the name used to identify the patch in output.
func (p *Patch) LogName() string { return p.logName }

// Fields returns the field templates ordered by key.
func (p *Patch) Fields() []Field { return append([]Field(nil), p.fields...) }

// Field returns the template of the field named key.
func (p *Patch) Field(key string) (*token.String, bool) {
	for _, f := range p.fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

// Conditions returns the conditions in key order.
func (p *Patch) Conditions() []token.Condition {
	return append([]token.Condition(nil), p.conditions...)
}

// Values returns the current value of every field.
func (p *Patch) Values() map[string]string {
	out := make(map[string]string, len(p.fields))
	for _, f := range p.fields {
		out[f.Key] = f.Value.String()
	}

	return out
}

// IsMutable reports whether any condition or field is mutable.
func (p *Patch) IsMutable() bool {
	return token.AnyMutable(p.conditions) || token.AnyMutable(p.templates())
}

// IsReady reports whether every condition and field is ready.
func (p *Patch) IsReady() bool {
	return token.AllReady(p.conditions) && token.AllReady(p.templates())
}

// IsApplied reports whether the patch applied in the last evaluation.
func (p *Patch) IsApplied() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.applied
}

// UpdateContext updates the conditions, then the fields, and reports whether
// any of them or the applied state changed. The first update always reports
// a change.
func (p *Patch) UpdateContext(ctx token.Context) bool {
	conds := token.UpdateAll(ctx, p.conditions)
	fields := token.UpdateAll(ctx, p.templates())
	applied := p.compute()

	p.mu.Lock()
	defer p.mu.Unlock()

	changed := conds || fields || !p.evaluated || applied != p.applied

	p.evaluated = true
	p.applied = applied

	return changed
}

func (p *Patch) compute() bool {
	for _, c := range p.conditions {
		if !c.IsMatch() {
			return false
		}
	}

	return token.AllReady(p.templates())
}

func (p *Patch) templates() []*token.String {
	out := make([]*token.String, len(p.fields))
	for i, f := range p.fields {
		out[i] = f.Value
	}

	return out
}
