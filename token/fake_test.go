package token

import (
	"strings"
	"sync/atomic"
)

// fakeProvider is a token provider with values keyed by case-folded input;
// the empty key holds the values for no input.
type fakeProvider struct {
	mutable bool
	ready   bool
	values  map[string][]string
	calls   atomic.Int64
}

func (p *fakeProvider) IsMutable() bool { return p.mutable }
func (p *fakeProvider) IsReady() bool   { return p.ready }

func (p *fakeProvider) Values(name Name) []string {
	p.calls.Add(1)

	input, _ := name.Input()

	return p.values[strings.ToLower(input)]
}

// fakeContext maps case-folded token names to providers.
type fakeContext map[string]*fakeProvider

func (c fakeContext) Resolve(name Name, enforce bool) Provider {
	p, ok := c[strings.ToLower(name.Name())]
	if !ok {
		return nil
	}

	if enforce && !p.ready {
		return nil
	}

	return p
}

func static(values ...string) *fakeProvider {
	return &fakeProvider{ready: true, values: map[string][]string{"": values}}
}

func mutable(values ...string) *fakeProvider {
	return &fakeProvider{
		mutable: true,
		ready:   true,
		values:  map[string][]string{"": values},
	}
}

// fakeCondition is a Condition with directly controlled state.
type fakeCondition struct {
	mutable bool
	ready   bool
	match   bool
	changed bool
	updates int
}

func (c *fakeCondition) IsMutable() bool { return c.mutable }
func (c *fakeCondition) IsReady() bool   { return c.ready }
func (c *fakeCondition) IsMatch() bool   { return c.ready && c.match }

func (c *fakeCondition) UpdateContext(Context) bool {
	c.updates++

	return c.changed
}
