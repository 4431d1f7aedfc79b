package pack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/ctoken/lang"
)

// Definition is the decoded form of a content pack file.
type Definition struct {
	Name          string       `yaml:"name"                    json:"name"`
	DynamicTokens []DynamicDef `yaml:"dynamicTokens,omitempty" json:"dynamicTokens,omitempty"`
	Changes       []ChangeDef  `yaml:"changes,omitempty"       json:"changes,omitempty"`
}

// DynamicDef declares one rule of a dynamic token. Several rules may share a
// name; the last matching rule wins.
type DynamicDef struct {
	Name  string `yaml:"name"           json:"name"`
	Value string `yaml:"value"          json:"value"`
	When  When   `yaml:"when,omitempty" json:"when,omitempty"`
}

// ChangeDef declares a conditional change.
type ChangeDef struct {
	LogName string            `yaml:"logName"          json:"logName"`
	Fields  map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
	When    When              `yaml:"when,omitempty"   json:"when,omitempty"`
}

// When maps condition keys to their allowed values. A value is either a
// comma-separated string or a list of scalars.
type When map[string]any

// clause is one normalized condition of a When block.
type clause struct {
	key    string
	values string
}

// clauses returns the conditions ordered by key.
func (w When) clauses() ([]clause, error) {
	out := make([]clause, 0, len(w))

	for _, key := range slices.Sorted(maps.Keys(w)) {
		values, err := scalarList(w[key])
		if err != nil {
			return nil, ErrInvalidDefinition.Wrap(err).
				With(slog.String("condition", key))
		}

		out = append(out, clause{key: key, values: values})
	}

	return out, nil
}

func scalarList(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", errors.New("missing values")
	case string:
		return v, nil
	case []any:
		parts := make([]string, 0, len(v))

		for _, item := range v {
			s, err := scalar(item)
			if err != nil {
				return "", err
			}

			parts = append(parts, s)
		}

		return strings.Join(parts, ", "), nil
	default:
		return scalar(v)
	}
}

func scalar(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", errors.New("null value")
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// Decode reads a pack definition from r. Unknown fields are rejected.
func Decode(ctx context.Context, r io.Reader) (Definition, error) {
	data, err := lang.ReadAll(ctx, r)
	if err != nil {
		return Definition{}, ErrRead.Wrap(err)
	}

	var def Definition

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return Definition{}, ErrDecode.Wrap(err)
	}

	return def, nil
}
