package token

import (
	"slices"
	"testing"
)

func TestDynamicValue_NoConditions(t *testing.T) {
	d := NewDynamicValue(NewName("Greeting"), []string{"Hello"})

	if d.IsMutable() {
		t.Error("expected immutable")
	}

	if !d.IsReady() {
		t.Error("expected ready")
	}

	if !d.IsMatch() {
		t.Error("expected match")
	}

	if d.UpdateContext(fakeContext{}) {
		t.Error("expected no change")
	}
}

func TestDynamicValue_Candidates(t *testing.T) {
	d := NewDynamicValue(NewName("Greeting"),
		[]string{" Good morning", "good MORNING", "", "Good day "})

	if got := d.Values(); !slices.Equal(got, []string{"Good morning", "Good day"}) {
		t.Errorf("Values = %q", got)
	}

	if d.Name().Name() != "Greeting" {
		t.Errorf("Name = %v", d.Name())
	}
}

func TestDynamicValue_ReadinessIsConjunction(t *testing.T) {
	conds := []*fakeCondition{
		{ready: true, match: true},
		{ready: true, match: true},
		{ready: true, match: true},
	}

	d := NewDynamicValue(NewName("X"), []string{"x"},
		conds[0], conds[1], conds[2])

	if !d.IsReady() || !d.IsMatch() {
		t.Fatal("expected ready and matching")
	}

	for i := range conds {
		t.Run("flip", func(t *testing.T) {
			conds[i].ready = false
			defer func() { conds[i].ready = true }()

			if d.IsReady() {
				t.Errorf("expected not ready with condition %d not ready", i)
			}

			if d.IsMatch() {
				t.Errorf("expected no match with condition %d not ready", i)
			}
		})
	}

	conds[1].match = false

	if !d.IsReady() {
		t.Error("a non-matching condition is still ready")
	}

	if d.IsMatch() {
		t.Error("expected no match")
	}
}

func TestDynamicValue_MutabilityIsDisjunction(t *testing.T) {
	a := &fakeCondition{ready: true}
	b := &fakeCondition{ready: true, mutable: true}

	if NewDynamicValue(NewName("X"), nil, a).IsMutable() {
		t.Error("expected immutable")
	}

	if !NewDynamicValue(NewName("X"), nil, a, b).IsMutable() {
		t.Error("expected mutable")
	}
}

func TestDynamicValue_UpdateNeverShortCircuits(t *testing.T) {
	conds := []*fakeCondition{
		{mutable: true, changed: true},
		{mutable: true},
		{mutable: true, changed: true},
	}

	d := NewDynamicValue(NewName("X"), nil, conds[0], conds[1], conds[2])

	if !d.UpdateContext(fakeContext{}) {
		t.Error("expected change")
	}

	for i, c := range conds {
		if c.updates != 1 {
			t.Errorf("condition %d updated %d times, want 1", i, c.updates)
		}
	}

	conds[0].changed, conds[2].changed = false, false

	if d.UpdateContext(fakeContext{}) {
		t.Error("expected no change")
	}
}

func TestDynamicValue_WithTokenConditions(t *testing.T) {
	season := mutable("Spring")
	ctx := fakeContext{"season": season}

	cond, err := NewTokenCondition("Season", "Spring, Summer", ctx)
	if err != nil {
		t.Fatalf("condition error: %v", err)
	}

	d := NewDynamicValue(NewName("Warm"), []string{"true"}, cond)

	if !d.IsMutable() {
		t.Fatal("expected mutable")
	}

	if d.IsReady() {
		t.Error("expected not ready before first update")
	}

	if !d.UpdateContext(ctx) {
		t.Error("expected change")
	}

	if !d.IsMatch() {
		t.Error("expected match in spring")
	}

	season.values[""] = []string{"Winter"}

	if !d.UpdateContext(ctx) {
		t.Error("expected change")
	}

	if d.IsMatch() {
		t.Error("expected no match in winter")
	}

	if !d.IsReady() {
		t.Error("expected ready")
	}
}
