package repl

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/pack"
	"github.com/ardnew/ctoken/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	_ = reg.Register("Season", registry.NewVar("Spring"))
	_ = reg.Register("Spouse", registry.NewStatic("Abigail"))

	hearts := registry.NewVar()
	hearts.SetInput("Abigail", "5")
	_ = reg.Register("Hearts", hearts)

	return reg
}

func TestEvaluate(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		template string
		contains []string
	}{
		{"{{Season}}", []string{"Spring"}},
		{"{{Hearts:{{Spouse}}}} hearts", []string{"5 hearts"}},
		{"{{Sesn}}", []string{"not ready", "unresolved {{Sesn}}", "Season"}},
		{"plain", []string{"plain"}},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got := evaluate(reg, tt.template, log.Logger{})
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("evaluate(%q) = %q, want it to contain %q",
						tt.template, got, want)
				}
			}
		})
	}
}

func TestListTokens(t *testing.T) {
	reg := testRegistry(t)

	weather := registry.NewVar(strings.Repeat("x", 60))
	_ = reg.Register("Weather", weather)

	got := listTokens(reg)

	for _, want := range []string{"Season", "Spring", "Hearts", "(not ready)", "..."} {
		if !strings.Contains(got, want) {
			t.Errorf("listTokens missing %q:\n%s", want, got)
		}
	}
}

func TestModel_Submit(t *testing.T) {
	reloads := 0

	cfg := Config{
		Registry: testRegistry(t),
		Reload: func(context.Context) error {
			reloads++

			return nil
		},
		Tick: func(context.Context) (pack.Result, error) {
			return pack.Result{}, errors.New("boom")
		},
	}

	m := newModel(t.Context(), cfg, NewHistory(""))

	m.input.SetValue("{{Season}}")

	m, cmd := m.submit()
	if cmd == nil || m.input.Value() != "" || m.history.Len() != 1 {
		t.Errorf("submit eval: cmd=%v input=%q history=%d",
			cmd != nil, m.input.Value(), m.history.Len())
	}

	m = m.switchMode(modeCtrl)
	m.input.SetValue("reload")

	m, _ = m.submit()
	if reloads != 1 {
		t.Errorf("expected one reload, got %d", reloads)
	}

	m.input.SetValue("quit")

	m, _ = m.submit()
	if !m.quitting {
		t.Error("expected quitting")
	}
}

func TestModel_SwitchModeKeepsInput(t *testing.T) {
	m := newModel(t.Context(), Config{Registry: testRegistry(t)}, NewHistory(""))

	m.input.SetValue("{{Sea")
	m = m.switchMode(modeCtrl)

	if m.input.Value() != "" {
		t.Errorf("ctrl input = %q", m.input.Value())
	}

	m.input.SetValue("li")
	m = m.switchMode(modeEval)

	if m.input.Value() != "{{Sea" {
		t.Errorf("eval input = %q", m.input.Value())
	}

	m = m.switchMode(modeCtrl)
	if m.input.Value() != "li" {
		t.Errorf("restored ctrl input = %q", m.input.Value())
	}
}

func TestModel_Recall(t *testing.T) {
	h := NewHistory("")
	_ = h.Add("{{Season}}", modeEval)
	_ = h.Add("list", modeCtrl)

	m := newModel(t.Context(), Config{Registry: testRegistry(t)}, h)

	m = m.recall(-1)
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Errorf("recall 1 = %v %q", m.mode, m.input.Value())
	}

	m = m.recall(-1)
	if m.mode != modeEval || m.input.Value() != "{{Season}}" {
		t.Errorf("recall 2 = %v %q", m.mode, m.input.Value())
	}

	m = m.recall(-1)
	if m.historyIdx != 0 {
		t.Errorf("recall past the start moved to %d", m.historyIdx)
	}

	m = m.recall(1)
	m = m.recall(1)

	if m.input.Value() != "" || m.historyIdx != h.Len() {
		t.Errorf("recall past the end = %q at %d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_CtrlCQuitsOnEmptyLine(t *testing.T) {
	m := newModel(t.Context(), Config{Registry: testRegistry(t)}, NewHistory(""))

	m.input.SetValue("text")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.quitting || m.input.Value() != "" {
		t.Fatalf("first ctrl-c: quitting=%v input=%q", m.quitting, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.quitting {
		t.Error("expected quit on an empty line")
	}
}

func TestFormatResult(t *testing.T) {
	if got := formatResult(pack.Result{}); !strings.Contains(got, "no changes") {
		t.Errorf("empty result = %q", got)
	}

	got := formatResult(pack.Result{Tokens: []string{"Greeting"}})
	if !strings.Contains(got, "Greeting") {
		t.Errorf("token result = %q", got)
	}
}

func TestRun_NoRegistry(t *testing.T) {
	if err := Run(t.Context(), Config{}); !errors.Is(err, ErrNoRegistry) {
		t.Errorf("expected ErrNoRegistry, got %v", err)
	}
}
