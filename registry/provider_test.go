package registry

import (
	"slices"
	"testing"

	"github.com/ardnew/ctoken/token"
)

func TestStatic(t *testing.T) {
	s := NewStatic("a", "b").WithInput("Key", "v")

	if s.IsMutable() {
		t.Error("expected immutable")
	}

	if got := s.Values(token.NewName("x")); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Values = %q", got)
	}

	if got := s.Values(token.ParseName("x: key ")); !slices.Equal(got, []string{"v"}) {
		t.Errorf("input Values = %q", got)
	}

	if got := s.Values(token.ParseName("x:other")); got != nil {
		t.Errorf("unknown input Values = %q", got)
	}

	got := s.Values(token.NewName("x"))
	got[0] = "changed"

	if again := s.Values(token.NewName("x")); again[0] != "a" {
		t.Error("Values must return a copy")
	}
}

func TestVar(t *testing.T) {
	v := NewVar("Spring")

	if !v.IsMutable() || !v.IsReady() {
		t.Fatal("expected mutable and ready")
	}

	v.Set("Summer", "Fall")
	v.SetInput("Abigail", "5")
	v.SetReady(false)

	if got := v.Values(token.NewName("x")); !slices.Equal(got, []string{"Summer", "Fall"}) {
		t.Errorf("Values = %q", got)
	}

	if got := v.Values(token.ParseName("x:ABIGAIL")); !slices.Equal(got, []string{"5"}) {
		t.Errorf("input Values = %q", got)
	}

	if v.IsReady() {
		t.Error("expected not ready")
	}

	v.SetInput("Abigail")

	if got := v.Values(token.ParseName("x:Abigail")); got != nil {
		t.Errorf("removed input Values = %q", got)
	}

	v.SetInput("Haley", "1")
	v.ClearInputs()

	if got := v.Values(token.ParseName("x:Haley")); got != nil {
		t.Errorf("cleared input Values = %q", got)
	}
}

func TestFunc(t *testing.T) {
	f := NewFunc(true, func(name token.Name) []string {
		input, _ := name.Input()

		return []string{"got " + input}
	})

	if !f.IsMutable() {
		t.Error("expected mutable")
	}

	if got := f.Values(token.ParseName("x:y")); !slices.Equal(got, []string{"got y"}) {
		t.Errorf("Values = %q", got)
	}

	if got := NewFunc(false, nil).Values(token.NewName("x")); got != nil {
		t.Errorf("nil func Values = %q", got)
	}
}

func TestDynamic(t *testing.T) {
	r := New()

	season := NewVar("Spring")
	_ = r.Register("Season", season)

	cond := func(values string) token.Condition {
		c, err := token.NewTokenCondition("Season", values, r)
		if err != nil {
			t.Fatalf("condition error: %v", err)
		}

		return c
	}

	d := NewDynamic(
		token.NewDynamicValue(token.NewName("Greeting"), []string{"Hello"}),
		token.NewDynamicValue(token.NewName("Greeting"),
			[]string{"Good morning"}, cond("Spring")),
	)
	d.Add(token.NewDynamicValue(token.NewName("Greeting"),
		[]string{"Brr"}, cond("Winter")))

	if !d.IsMutable() {
		t.Fatal("expected mutable")
	}

	if !d.UpdateContext(r) {
		t.Error("expected change on first update")
	}

	if got := d.Values(token.NewName("Greeting")); !slices.Equal(got, []string{"Good morning"}) {
		t.Errorf("spring Values = %q", got)
	}

	season.Set("Winter")
	d.UpdateContext(r)

	if got := d.Values(token.NewName("Greeting")); !slices.Equal(got, []string{"Brr"}) {
		t.Errorf("winter Values = %q", got)
	}

	season.Set("Fall")
	d.UpdateContext(r)

	// the unconditional rule still matches
	if got := d.Values(token.NewName("Greeting")); !slices.Equal(got, []string{"Hello"}) {
		t.Errorf("fall Values = %q", got)
	}

	if len(d.Rules()) != 3 {
		t.Errorf("expected 3 rules, got %d", len(d.Rules()))
	}
}

func TestDynamic_NoMatchNotReady(t *testing.T) {
	r := New()
	_ = r.Register("Season", NewStatic("Fall"))

	c, err := token.NewTokenCondition("Season", "Spring", r)
	if err != nil {
		t.Fatalf("condition error: %v", err)
	}

	d := NewDynamic(token.NewDynamicValue(token.NewName("X"), []string{"x"}, c))
	_ = r.Register("X", d)

	if d.IsMutable() {
		t.Error("expected immutable")
	}

	if d.IsReady() {
		t.Error("expected not ready without a matching rule")
	}

	if r.Resolve(token.NewName("X"), true) != nil {
		t.Error("expected enforcing resolve to fail")
	}

	if r.Resolve(token.NewName("X"), false) == nil {
		t.Error("expected probe to succeed")
	}
}
