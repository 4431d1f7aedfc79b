package pack

import (
	"testing"

	"github.com/ardnew/ctoken/registry"
	"github.com/ardnew/ctoken/token"
)

type fakeCondition struct {
	mutable, ready, match bool
	changed               bool
	updates               int
}

func (c *fakeCondition) IsMutable() bool { return c.mutable }
func (c *fakeCondition) IsReady() bool   { return c.ready }
func (c *fakeCondition) IsMatch() bool   { return c.ready && c.match }

func (c *fakeCondition) UpdateContext(token.Context) bool {
	c.updates++

	return c.changed
}

func TestPatch(t *testing.T) {
	reg := registry.New()
	season := registry.NewVar("Spring")
	_ = reg.Register("Season", season)

	text, err := token.Parse("It is {{Season}}", reg)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	cond := &fakeCondition{ready: true, match: true}
	p := NewPatch("sign", []Field{{Key: "text", Value: text}}, cond)

	if !p.IsMutable() {
		t.Error("expected mutable")
	}

	if p.IsApplied() {
		t.Error("expected not applied before the first update")
	}

	if !p.UpdateContext(reg) {
		t.Error("expected change on first update")
	}

	if !p.IsApplied() || !p.IsReady() {
		t.Fatal("expected applied and ready")
	}

	if got := p.Values()["text"]; got != "It is Spring" {
		t.Errorf("text = %q", got)
	}

	if p.UpdateContext(reg) {
		t.Error("expected no change")
	}

	cond.match = false

	if !p.UpdateContext(reg) {
		t.Error("expected change when the condition stops matching")
	}

	if p.IsApplied() {
		t.Error("expected not applied")
	}

	if cond.updates != 3 {
		t.Errorf("condition updated %d times", cond.updates)
	}

	if _, ok := p.Field("missing"); ok {
		t.Error("unexpected field")
	}
}

func TestPatch_Immutable(t *testing.T) {
	text, err := token.Parse("static", nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	p := NewPatch("static", []Field{{Key: "text", Value: text}})

	if p.IsMutable() {
		t.Error("expected immutable")
	}

	if !p.IsApplied() {
		t.Error("expected an unconditional ready patch to apply at construction")
	}
}

func TestPatch_UpdatesEveryCondition(t *testing.T) {
	first := &fakeCondition{mutable: true, changed: true}
	second := &fakeCondition{mutable: true}

	p := NewPatch("x", nil, first, second)
	p.UpdateContext(nil)

	if first.updates != 1 || second.updates != 1 {
		t.Errorf("updates = %d, %d", first.updates, second.updates)
	}

	if p.IsApplied() || p.IsReady() {
		t.Error("expected not ready")
	}
}
