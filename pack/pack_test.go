package pack

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/ctoken/registry"
	"github.com/ardnew/ctoken/token"
)

const valleyPack = `
name: valley
dynamicTokens:
  - name: Greeting
    value: Hello
  - name: Greeting
    value: Good morning, Good day
    when: { Season: Spring }
  - name: Farewell
    value: "{{Year}}"
    when: { Greeting: Hello }
changes:
  - logName: season sign
    fields:
      target: "Maps/{{Season}}"
      text: "{{Greeting}}!"
    when: { "Hearts:{{Spouse}}": [5, 6] }
  - logName: winter only
    fields: { text: brr }
    when: { Season: Winter }
`

type world struct {
	reg    *registry.Registry
	season *registry.Var
	hearts *registry.Var
}

func newWorld(t *testing.T) world {
	t.Helper()

	w := world{
		reg:    registry.New(),
		season: registry.NewVar("Spring"),
		hearts: registry.NewVar(),
	}

	w.hearts.SetInput("Abigail", "5")

	for _, r := range []struct {
		name string
		p    token.Provider
	}{
		{"Season", w.season},
		{"Hearts", w.hearts},
		{"Spouse", registry.NewStatic("Abigail")},
		{"Year", registry.NewStatic("1")},
	} {
		if err := w.reg.Register(r.name, r.p); err != nil {
			t.Fatalf("register %s: %v", r.name, err)
		}
	}

	return w
}

func loadValley(t *testing.T, w world, opts ...Option) *Pack {
	t.Helper()

	p, err := Load(t.Context(), strings.NewReader(valleyPack), w.reg, opts...)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	return p
}

func logNames(patches []*Patch) []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.LogName()
	}

	return out
}

func TestLoad(t *testing.T) {
	w := newWorld(t)
	p := loadValley(t, w)

	if p.Name() != "valley" {
		t.Errorf("Name = %q", p.Name())
	}

	if got := p.Tokens(); !slices.Equal(got, []string{"Greeting", "Farewell"}) {
		t.Errorf("Tokens = %q", got)
	}

	if got := logNames(p.Patches()); !slices.Equal(got, []string{"season sign", "winter only"}) {
		t.Errorf("Patches = %q", got)
	}

	greeting, ok := w.reg.Lookup("greeting")
	if !ok {
		t.Fatal("expected Greeting registered")
	}

	if d, ok := greeting.(*registry.Dynamic); !ok || len(d.Rules()) != 2 {
		t.Errorf("expected Greeting with 2 rules, got %T", greeting)
	}

	if !greeting.IsMutable() {
		t.Error("expected Greeting mutable")
	}

	sign, _ := p.Patches()[0].Field("target")
	if sign == nil || !sign.IsMutable() {
		t.Error("expected mutable target field")
	}
}

func TestPack_Update(t *testing.T) {
	w := newWorld(t)
	p := loadValley(t, w, WithConcurrency(2))

	res, err := p.Update(t.Context(), w.reg)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	if !slices.Equal(res.Tokens, []string{"Greeting", "Farewell"}) {
		t.Errorf("first tick Tokens = %q", res.Tokens)
	}

	if got := logNames(res.Changed); !slices.Equal(got, []string{"season sign", "winter only"}) {
		t.Errorf("first tick Changed = %q", got)
	}

	if got := logNames(p.Applied()); !slices.Equal(got, []string{"season sign"}) {
		t.Fatalf("Applied = %q", got)
	}

	want := map[string]string{"target": "Maps/Spring", "text": "Good morning!"}
	if got := p.Patches()[0].Values(); !maps.Equal(got, want) {
		t.Errorf("spring values = %v, want %v", got, want)
	}

	if w.reg.Resolve(token.NewName("Farewell"), true) != nil {
		t.Error("expected Farewell not ready in spring")
	}

	// nothing changed
	res, err = p.Update(t.Context(), w.reg)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	if len(res.Tokens) != 0 || len(res.Changed) != 0 {
		t.Errorf("idle tick = %q, %q", res.Tokens, logNames(res.Changed))
	}

	w.season.Set("Winter")

	res, err = p.Update(t.Context(), w.reg)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	if got := logNames(res.Changed); !slices.Equal(got, []string{"season sign", "winter only"}) {
		t.Errorf("winter Changed = %q", got)
	}

	want = map[string]string{"target": "Maps/Winter", "text": "Hello!"}
	if got := p.Patches()[0].Values(); !maps.Equal(got, want) {
		t.Errorf("winter values = %v, want %v", got, want)
	}

	if got := w.reg.Values(token.NewName("Farewell")); !slices.Equal(got, []string{"1"}) {
		t.Errorf("Farewell = %q", got)
	}

	w.hearts.SetInput("Abigail", "2")

	if _, err := p.Update(t.Context(), w.reg); err != nil {
		t.Fatalf("update error: %v", err)
	}

	if got := logNames(p.Applied()); !slices.Equal(got, []string{"winter only"}) {
		t.Errorf("Applied = %q", got)
	}
}

func TestPack_Update_Canceled(t *testing.T) {
	w := newWorld(t)
	p := loadValley(t, w)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := p.Update(ctx, w.reg); !errors.Is(err, ErrTick) {
		t.Errorf("expected ErrTick, got %v", err)
	}

	if len(p.Applied()) != 0 {
		t.Error("expected no evaluation after a canceled tick")
	}
}

func TestPack_Update_Concurrent(t *testing.T) {
	w := newWorld(t)

	var sb strings.Builder

	sb.WriteString("name: many\nchanges:\n")

	for i := range 50 {
		sb.WriteString("  - logName: change" + string(rune('A'+i%26)) + "\n")
		sb.WriteString("    fields: { text: \"{{Season}} {{Hearts:Abigail}}\" }\n")
	}

	p, err := Load(t.Context(), strings.NewReader(sb.String()), w.reg, WithConcurrency(4))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	res, err := p.Update(t.Context(), w.reg)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	if len(res.Changed) != 50 || len(p.Applied()) != 50 {
		t.Fatalf("changed %d, applied %d", len(res.Changed), len(p.Applied()))
	}

	for _, patch := range p.Patches() {
		if got := patch.Values()["text"]; got != "Spring 5" {
			t.Fatalf("text = %q", got)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			"unknown field",
			"name: x\nchanges:\n  - logName: a\n    field: {}\n",
			ErrDecode,
		},
		{
			"self reference",
			"dynamicTokens:\n  - name: Loop\n    value: x\n    when: { Loop: x }\n",
			ErrDependency,
		},
		{
			"forward reference",
			"dynamicTokens:\n  - name: A\n    value: a\n    when: { B: b }\n  - name: B\n    value: b\n",
			ErrDependency,
		},
		{
			"forward reference in value",
			"dynamicTokens:\n  - name: A\n    value: \"{{B}}\"\n  - name: B\n    value: b\n",
			ErrDependency,
		},
		{
			"reference to token with later rules",
			"dynamicTokens:\n  - name: B\n    value: x\n" +
				"  - name: A\n    value: \"yes\"\n    when: { B: x }\n" +
				"  - name: B\n    value: z\n    when: { Season: Summer }\n",
			ErrDependency,
		},
		{
			"mutable value",
			"dynamicTokens:\n  - name: A\n    value: \"{{Season}}\"\n",
			ErrMutableValue,
		},
		{
			"unresolved value",
			"dynamicTokens:\n  - name: A\n    value: \"{{Nope}}\"\n",
			ErrMutableValue,
		},
		{
			"invalid name",
			"dynamicTokens:\n  - name: \"A:b\"\n    value: a\n",
			ErrInvalidDefinition,
		},
		{
			"registered elsewhere",
			"dynamicTokens:\n  - name: season\n    value: a\n",
			ErrInvalidDefinition,
		},
		{
			"empty condition key",
			"changes:\n  - logName: a\n    when: { \"\": x }\n",
			ErrInvalidDefinition,
		},
		{
			"nested condition value",
			"changes:\n  - logName: a\n    when: { Season: { a: b } }\n",
			ErrInvalidDefinition,
		},
		{
			"too deep",
			"changes:\n  - logName: a\n    fields: { x: \"" +
				strings.Repeat("{{a:", 101) + strings.Repeat("}}", 101) + "\" }\n",
			ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)

			_, err := Load(t.Context(), strings.NewReader(tt.input), w.reg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_EarlierReference(t *testing.T) {
	w := newWorld(t)

	p, err := Load(t.Context(), strings.NewReader(`
dynamicTokens:
  - name: A
    value: a
  - name: B
    value: "{{A}}-b"
    when: { A: a }
`), w.reg)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if _, err := p.Update(t.Context(), w.reg); err != nil {
		t.Fatalf("update error: %v", err)
	}

	if got := w.reg.Values(token.NewName("B")); !slices.Equal(got, []string{"a-b"}) {
		t.Errorf("B = %q", got)
	}
}

func TestLoad_Empty(t *testing.T) {
	p, err := Load(t.Context(), strings.NewReader(""), registry.New())
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if len(p.Patches()) != 0 || len(p.Tokens()) != 0 {
		t.Error("expected an empty pack")
	}

	res, err := p.Update(t.Context(), registry.New())
	if err != nil || len(res.Changed) != 0 {
		t.Errorf("Update = %v, %v", res, err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(valleyPack), 0o600); err != nil {
		t.Fatal(err)
	}

	w := newWorld(t)

	p, err := LoadFile(t.Context(), path, w.reg)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if len(p.Patches()) != 2 {
		t.Errorf("expected 2 patches, got %d", len(p.Patches()))
	}

	_, err = LoadFile(t.Context(), filepath.Join(t.TempDir(), "missing"), w.reg)
	if !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead, got %v", err)
	}
}
