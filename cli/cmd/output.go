package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/ctoken/pack"
)

// Output formats accepted by the --output flags.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

const outputIndent = 2

// patchView is the serialized form of a patch.
type patchView struct {
	LogName string            `json:"logName"          yaml:"logName"`
	Applied bool              `json:"applied"          yaml:"applied"`
	Fields  map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func viewPatches(patches []*pack.Patch) []patchView {
	out := make([]patchView, len(patches))
	for i, p := range patches {
		out[i] = patchView{
			LogName: p.LogName(),
			Applied: p.IsApplied(),
			Fields:  p.Values(),
		}
	}

	return out
}

// writePatchesText writes one block per patch with its fields in key order.
func writePatchesText(w io.Writer, patches []*pack.Patch) error {
	for _, p := range patches {
		mark := "✔"
		if !p.IsApplied() {
			mark = "✘"
		}

		if _, err := fmt.Fprintf(w, "%s %s\n", mark, p.LogName()); err != nil {
			return err
		}

		for _, f := range p.Fields() {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", f.Key, f.Value); err != nil {
				return err
			}
		}
	}

	return nil
}

// encode writes v to w as JSON or YAML, or calls text for plain output.
func encode(
	ctx context.Context,
	w io.Writer,
	format string,
	v any,
	text func(io.Writer) error,
) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return ErrWrite.Wrap(err)
		}

	case outputYAML:
		data, err := yaml.MarshalContext(ctx, v, yaml.Indent(outputIndent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		if _, err := w.Write(data); err != nil {
			return ErrWrite.Wrap(err)
		}

	default:
		if err := text(w); err != nil {
			return ErrWrite.Wrap(err)
		}
	}

	return nil
}
