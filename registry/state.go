package registry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/token"
)

// State is a snapshot of host-provided token values.
//
//	tokens:
//	  Season:
//	    values: [Spring]
//	  Hearts:
//	    inputs:
//	      Abigail: ["5"]
//	  Weather:
//	    ready: false
//	  Year:
//	    values: ["1"]
//	    mutable: false
type State struct {
	Tokens map[string]TokenState `yaml:"tokens" json:"tokens"`
}

// TokenState is the state of one token. Tokens are mutable and ready unless
// stated otherwise.
type TokenState struct {
	Values  []string            `yaml:"values,omitempty"  json:"values,omitempty"`
	Inputs  map[string][]string `yaml:"inputs,omitempty"  json:"inputs,omitempty"`
	Mutable *bool               `yaml:"mutable,omitempty" json:"mutable,omitempty"`
	Ready   *bool               `yaml:"ready,omitempty"   json:"ready,omitempty"`
}

func (t TokenState) mutable() bool { return t.Mutable == nil || *t.Mutable }
func (t TokenState) ready() bool   { return t.Ready == nil || *t.Ready }

// LoadState decodes a state snapshot from r. Unknown fields are rejected.
func LoadState(ctx context.Context, r io.Reader) (State, error) {
	data, err := lang.ReadAll(ctx, r)
	if err != nil {
		return State{}, ErrReadState.Wrap(err)
	}

	var s State

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return State{}, ErrDecodeState.Wrap(err)
	}

	return s, nil
}

// LoadStateFile decodes a state snapshot from the file at path.
func LoadStateFile(ctx context.Context, path string) (State, error) {
	f, err := os.Open(path)
	if err != nil {
		return State{}, ErrReadState.Wrap(err).With(slog.String("path", path))
	}

	defer f.Close()

	s, err := LoadState(ctx, f)
	if err != nil {
		return State{}, WrapError(err).With(slog.String("path", path))
	}

	return s, nil
}

// ApplyState loads s into the registry. Unregistered tokens are registered
// as [Var], or as [Static] when declared immutable. Registered [Var] tokens
// are overwritten and tokens not named in s keep their values. Immutable
// tokens keep the values they were first registered with. Declaring a
// registered non-[Var] token mutable is an error.
func (r *Registry) ApplyState(s State) error {
	names := make([]string, 0, len(s.Tokens))
	for name := range s.Tokens {
		names = append(names, name)
	}

	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	for _, name := range names {
		ts := s.Tokens[name]

		p, ok := r.Lookup(name)
		if !ok {
			if err := r.Register(name, ts.provider()); err != nil {
				return err
			}

			continue
		}

		switch p := p.(type) {
		case *Var:
			ts.apply(p)
		case *Static:
			// fixed at first registration
			if ts.mutable() {
				return ErrImmutable.With(slog.String("name", name))
			}
		default:
			return ErrImmutable.With(slog.String("name", name))
		}
	}

	r.logger.Trace("apply state", slog.Int("tokens", len(names)))

	return nil
}

func (t TokenState) provider() token.Provider {
	if !t.mutable() {
		s := NewStatic(t.Values...)
		for input, values := range t.Inputs {
			s.WithInput(input, values...)
		}

		return s
	}

	v := NewVar()
	t.apply(v)

	return v
}

func (t TokenState) apply(v *Var) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.values = slices.Clone(t.Values)
	v.inputs = nil

	if len(t.Inputs) > 0 {
		v.inputs = make(map[string][]string, len(t.Inputs))
		for input, values := range t.Inputs {
			v.inputs[inputKey(input)] = slices.Clone(values)
		}
	}

	v.ready = t.ready()
}
