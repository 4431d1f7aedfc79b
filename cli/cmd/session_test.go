package cmd

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/pack"
	"github.com/ardnew/ctoken/token"
)

func TestOpen(t *testing.T) {
	s := fixture(t)
	s.Builtins = true

	sess, err := Open(t.Context(), s, log.Logger{})
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	if sess.Pack == nil || sess.Pack.Name() != "valley" {
		t.Fatal("expected the pack loaded")
	}

	if _, ok := sess.Registry.Lookup("Platform"); !ok {
		t.Error("expected builtins registered")
	}

	if got := sess.Registry.Values(token.NewName("Season")); !slices.Equal(got, []string{"Spring"}) {
		t.Errorf("Season = %q", got)
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*Settings)
		wantErr error
	}{
		{"missing pack", func(s *Settings) { s.Pack = filepath.Join(t.TempDir(), "none") }, pack.ErrRead},
		{"missing state", func(s *Settings) { s.State = filepath.Join(t.TempDir(), "none") }, ErrOpenSession},
		{"bad pack", func(s *Settings) { writeFile(t, s.Pack, "changes: 5\n") }, pack.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture(t)
			tt.edit(&s)

			if _, err := Open(t.Context(), s, log.Logger{}); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSession_Tick(t *testing.T) {
	s := fixture(t)

	sess, err := Open(t.Context(), s, log.Logger{})
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	if _, err := sess.Tick(t.Context()); err != nil {
		t.Fatalf("tick error: %v", err)
	}

	writeFile(t, s.State, "tokens:\n  Season: { values: [Winter] }\n")

	res, err := sess.Tick(t.Context())
	if err != nil {
		t.Fatalf("tick error: %v", err)
	}

	var names []string
	for _, p := range res.Changed {
		names = append(names, p.LogName())
	}

	if !slices.Equal(names, []string{"season sign", "winter only"}) {
		t.Errorf("changed = %q", names)
	}

	if _, err := (&Session{}).Tick(t.Context()); !errors.Is(err, ErrNoPack) {
		t.Errorf("expected ErrNoPack, got %v", err)
	}
}
