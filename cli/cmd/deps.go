package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/pack"
)

// Deps prints the dependency graph of the content pack.
type Deps struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
}

type depsView struct {
	Graph    []pack.Dependency `json:"graph"              yaml:"graph"`
	Warnings []pack.Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Run executes the deps command.
func (d *Deps) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sess, err := Open(ctx, settingsFrom(ctx), log.Default())
	if err != nil {
		return err
	}

	if sess.Pack == nil {
		return ErrNoPack
	}

	view := depsView{
		Graph:    sess.Pack.Graph(),
		Warnings: sess.Pack.Warnings(),
	}

	return encode(ctx, outputFrom(ctx), d.Output, view,
		func(w io.Writer) error { return writeDepsText(w, view) })
}

func writeDepsText(w io.Writer, view depsView) error {
	for _, dep := range view.Graph {
		refs := "(none)"
		if len(dep.Refs) > 0 {
			refs = strings.Join(dep.Refs, ", ")
		}

		if _, err := fmt.Fprintf(w, "%s %s -> %s\n", dep.Kind, dep.Name, refs); err != nil {
			return err
		}
	}

	for _, warn := range view.Warnings {
		hint := ""
		if len(warn.Suggestions) > 0 {
			hint = " (did you mean " + strings.Join(warn.Suggestions, ", ") + "?)"
		}

		if _, err := fmt.Fprintf(w, "warning: %s: unresolved %s%s\n",
			warn.Owner, warn.Token, hint); err != nil {
			return err
		}
	}

	return nil
}
