package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/token"
)

// Lex prints the lexical tree of a template and the token names it
// references.
type Lex struct {
	Template string `arg:""  help:"Template to lex."                                        name:"template"`
	Implied  bool   `        help:"Treat the template as the inside of a single placeholder." short:"i"`
	MaxDepth int    `default:"100" help:"Maximum nesting depth of placeholders."`
}

// Run executes the lex command.
func (l *Lex) Run(ctx context.Context) error {
	nodes, err := lang.DefaultCache().Lex(ctx, l.Template,
		lang.WithImpliedBraces(l.Implied),
		lang.WithMaxDepth(l.MaxDepth),
		lang.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if err := writeLex(w, nodes); err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}

func writeLex(w io.Writer, nodes []lang.Node) error {
	if err := lang.Print(w, nodes); err != nil {
		return err
	}

	var names token.NameSet

	for ref := range lang.Refs(nodes) {
		names.Add(token.NewName(ref.Name))
	}

	if names.Len() == 0 {
		return nil
	}

	refs := make([]string, 0, names.Len())
	for name := range names.All() {
		refs = append(refs, name.Name())
	}

	_, err := fmt.Fprintf(w, "References: %s\n", strings.Join(refs, ", "))

	return err
}
