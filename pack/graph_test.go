package pack

import (
	"slices"
	"strings"
	"testing"
)

func TestPack_Graph(t *testing.T) {
	p := loadValley(t, newWorld(t))

	want := []Dependency{
		{KindToken, "Greeting", nil},
		{KindToken, "Greeting", []string{"Season"}},
		{KindToken, "Farewell", []string{"Greeting", "Year"}},
		{KindChange, "season sign", []string{"Hearts", "Spouse", "Season", "Greeting"}},
		{KindChange, "winter only", []string{"Season"}},
	}

	got := p.Graph()
	if len(got) != len(want) {
		t.Fatalf("Graph = %v", got)
	}

	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Name != want[i].Name ||
			!slices.Equal(got[i].Refs, want[i].Refs) {
			t.Errorf("Graph[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPack_Warnings(t *testing.T) {
	w := newWorld(t)

	p, err := Load(t.Context(), strings.NewReader(`
changes:
  - logName: typo
    fields: { text: "{{Sesn}} {{Season}}" }
    when: { "Harts:Abigail": "5" }
`), w.reg)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	got := p.Warnings()
	if len(got) != 2 {
		t.Fatalf("Warnings = %v", got)
	}

	if got[0].Owner != "change typo" || got[0].Token != "Harts:Abigail" {
		t.Errorf("Warnings[0] = %+v", got[0])
	}

	if len(got[0].Suggestions) == 0 || got[0].Suggestions[0] != "Hearts" {
		t.Errorf("Warnings[0] suggestions = %q", got[0].Suggestions)
	}

	if got[1].Token != "{{Sesn}}" || len(got[1].Suggestions) == 0 ||
		got[1].Suggestions[0] != "Season" {
		t.Errorf("Warnings[1] = %+v", got[1])
	}
}

func TestPlaceholderName(t *testing.T) {
	for src, want := range map[string]string{
		"{{Sesn}}":       "Sesn",
		"{{Hearts:x}}":   "Hearts",
		"Harts:Abigail":  "Harts",
		"{{ Spaced |a}}": "Spaced",
	} {
		if got := placeholderName(src); got != want {
			t.Errorf("placeholderName(%q) = %q, want %q", src, got, want)
		}
	}
}
