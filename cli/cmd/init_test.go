package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{"create new config", false, false, nil},
		{"overwrite existing with force", true, true, nil},
		{"fail without force", false, true, ErrWriteConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct {
				State string `name:"state"`
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{"--state=world.yaml"})
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(t.Context(), ktx))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, ErrFileExists) {
					t.Errorf("expected ErrFileExists cause, got %v", err)
				}

				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v", err)
			}

			if got["state"] != "world.yaml" {
				t.Errorf("config = %v", got)
			}
		})
	}
}

func TestFlagValues(t *testing.T) {
	var cli struct {
		Verbose  bool          `name:"verbose"`
		Output   string        `name:"output"`
		Empty    string        `name:"empty"`
		Count    int           `name:"count"`
		Interval time.Duration `name:"interval"`
		Tags     []string      `name:"tags"`
		Hidden   string        `hidden:""       name:"hidden"`
		Pprof    string        `name:"pprof-mode"`
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse([]string{
		"--verbose", "--output=test.txt", "--count=5", "--interval=2s",
		"--tags=a,b", "--hidden=x", "--pprof-mode=cpu",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := flagValues(ktx)

	want := map[string]string{
		"verbose":  "true",
		"output":   "test.txt",
		"count":    "5",
		"interval": "2s",
		"tags":     "[a b]",
	}

	if len(got) != len(want) {
		t.Errorf("flagValues = %v", got)
	}

	for k, v := range want {
		if s := strings.TrimSpace(sprint(got[k])); s != v {
			t.Errorf("%s = %q, want %q", k, s, v)
		}
	}
}

func TestConfigValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"", nil},
		{"x", "x"},
		{true, true},
		{3, 3},
		{[]string{}, nil},
		{time.Second, "1s"},
		{struct{ A int }{1}, "{1}"},
	}

	for _, tt := range tests {
		got := configValue(tt.in)
		if sprint(got) != sprint(tt.want) {
			t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
