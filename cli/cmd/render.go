package cmd

import (
	"context"
	"io"

	"github.com/ardnew/ctoken/log"
)

// Render runs one tick of the content pack and prints its changes.
type Render struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format."                      short:"o"`
	All    bool   `                                     help:"Include changes that do not apply." short:"a"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sess, err := Open(ctx, settingsFrom(ctx), log.Default())
	if err != nil {
		return err
	}

	if sess.Pack == nil {
		return ErrNoPack
	}

	if _, err := sess.Pack.Update(ctx, sess.Registry); err != nil {
		return err
	}

	patches := sess.Pack.Applied()
	if r.All {
		patches = sess.Pack.Patches()
	}

	return encode(ctx, outputFrom(ctx), r.Output, viewPatches(patches),
		func(w io.Writer) error { return writePatchesText(w, patches) })
}
