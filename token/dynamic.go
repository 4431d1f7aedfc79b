package token

import "strings"

// DynamicValue assigns candidate values to a derived token while every one of
// its conditions matches. Its identity is fixed at construction; only the
// conditions change state.
type DynamicValue struct {
	name       Name
	values     []string
	conditions []Condition
}

// NewDynamicValue returns a rule assigning candidates to name. Candidates are
// trimmed, empty candidates are dropped, and duplicates (ignoring case) keep
// their first occurrence.
func NewDynamicValue(
	name Name,
	candidates []string,
	conds ...Condition,
) *DynamicValue {
	seen := make(map[string]struct{}, len(candidates))
	values := make([]string, 0, len(candidates))

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}

		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		values = append(values, c)
	}

	return &DynamicValue{
		name:       name,
		values:     values,
		conditions: append([]Condition(nil), conds...),
	}
}

// Name returns the derived token name.
func (d *DynamicValue) Name() Name { return d.name }

// Values returns the candidate values.
func (d *DynamicValue) Values() []string { return append([]string(nil), d.values...) }

// Conditions returns the conditions in declaration order.
func (d *DynamicValue) Conditions() []Condition {
	return append([]Condition(nil), d.conditions...)
}

// IsMutable reports whether any condition is mutable.
func (d *DynamicValue) IsMutable() bool { return AnyMutable(d.conditions) }

// IsReady reports whether every condition is ready.
func (d *DynamicValue) IsReady() bool { return AllReady(d.conditions) }

// IsMatch reports whether the rule applies: every condition is ready and
// matches.
func (d *DynamicValue) IsMatch() bool {
	for _, c := range d.conditions {
		if !c.IsReady() || !c.IsMatch() {
			return false
		}
	}

	return true
}

// UpdateContext updates every condition and reports whether any changed.
func (d *DynamicValue) UpdateContext(ctx Context) bool {
	return UpdateAll(ctx, d.conditions)
}
