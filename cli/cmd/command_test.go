package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Render
		check func(t *testing.T, out string)
	}{
		{
			"text",
			Render{Output: outputText},
			func(t *testing.T, out string) {
				want := "✔ season sign\n  target: Maps/Spring\n  text: Good morning!\n"
				if out != want {
					t.Errorf("output = %q, want %q", out, want)
				}
			},
		},
		{
			"all",
			Render{Output: outputText, All: true},
			func(t *testing.T, out string) {
				if !strings.Contains(out, "✘ winter only") || !strings.Contains(out, "✘ typo") {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			"json",
			Render{Output: outputJSON},
			func(t *testing.T, out string) {
				var got []patchView
				if err := json.Unmarshal([]byte(out), &got); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}

				if len(got) != 1 || got[0].Fields["target"] != "Maps/Spring" {
					t.Errorf("patches = %+v", got)
				}
			},
		},
		{
			"yaml",
			Render{Output: outputYAML},
			func(t *testing.T, out string) {
				var got []patchView
				if err := yaml.Unmarshal([]byte(out), &got); err != nil {
					t.Fatalf("invalid YAML: %v", err)
				}

				if len(got) != 1 || !got[0].Applied || got[0].LogName != "season sign" {
					t.Errorf("patches = %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := commandContext(t, fixture(t))

			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatalf("render error: %v", err)
			}

			tt.check(t, out.String())
		})
	}
}

func TestRender_NoPack(t *testing.T) {
	ctx, _ := commandContext(t, Settings{})

	if err := (&Render{}).Run(ctx); !errors.Is(err, ErrNoPack) {
		t.Errorf("expected ErrNoPack, got %v", err)
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		template string
		want     string
		wantErr  error
	}{
		{"{{Greeting}}, it is {{Season}}", "Good morning, it is Spring\n", nil},
		{"{{Hearts:{{Spouse}}}}", "5\n", nil},
		{"{{Nope}}", "", ErrNotReady},
		{"It is {{Weather}}", "", ErrNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			ctx, out := commandContext(t, fixture(t))

			err := (&Eval{Template: tt.template}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("eval error = %v, want %v", err, tt.wantErr)
			}

			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestLex(t *testing.T) {
	ctx, out := commandContext(t, Settings{})

	if err := (&Lex{Template: "a {{Hearts:{{Spouse}}}} {{Hearts}}", MaxDepth: 100}).Run(ctx); err != nil {
		t.Fatalf("lex error: %v", err)
	}

	got := out.String()

	for _, want := range []string{`Literal: "a "`, "Token: Hearts", "Token: Spouse", "References: Hearts, Spouse\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	ctx, _ = commandContext(t, Settings{})

	if err := (&Lex{Template: "{{a:{{b}}}}", MaxDepth: 1}).Run(ctx); err == nil {
		t.Error("expected max depth error")
	}
}

func TestDeps(t *testing.T) {
	ctx, out := commandContext(t, fixture(t))

	if err := (&Deps{Output: outputText}).Run(ctx); err != nil {
		t.Fatalf("deps error: %v", err)
	}

	got := out.String()

	for _, want := range []string{
		"token Greeting -> (none)\n",
		"token Greeting -> Season\n",
		"change season sign -> Hearts, Spouse, Season, Greeting\n",
		"warning: change typo: unresolved {{Sesn}} (did you mean Season",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWatch(t *testing.T) {
	s := fixture(t)
	ctx, out := commandContext(t, s)

	err := (&Watch{Interval: 10 * time.Millisecond, Count: 3, Output: outputText}).Run(ctx)
	if err != nil {
		t.Fatalf("watch error: %v", err)
	}

	got := out.String()

	// only the first tick changes anything
	if !strings.Contains(got, "# tick 1\n") || strings.Contains(got, "# tick 2") {
		t.Errorf("output = %q", got)
	}
}

func TestWatch_Canceled(t *testing.T) {
	ctx, _ := commandContext(t, fixture(t))

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	if err := (&Watch{Interval: time.Hour, Output: outputText}).Run(ctx); err != nil {
		t.Errorf("watch error: %v", err)
	}
}
