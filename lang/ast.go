package lang

import (
	"io"
	"iter"
	"strconv"
	"strings"
)

// Position identifies a location in template source.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in runes
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Node is an element of a lexed template: either a [*Literal] or a
// [*TokenRef].
type Node interface {
	// Raw returns the exact source text the node was lexed from.
	Raw() string
	// Position returns where the node starts in the source.
	Position() Position

	node()
}

// Literal is a run of plain text.
type Literal struct {
	Text string
	Pos  Position
}

func (l *Literal) Raw() string        { return l.Text }
func (l *Literal) Position() Position { return l.Pos }
func (*Literal) node()                {}

// TokenRef is a placeholder referencing a named token.
type TokenRef struct {
	// Name is the trimmed token name.
	Name string
	// Input is the lexed input argument, if any.
	Input []Node
	// HasInput distinguishes an empty input ("{{Name:}}") from none.
	HasInput bool
	// Source is the placeholder's original text, braces included unless the
	// placeholder was lexed with implied braces.
	Source string
	Pos    Position
}

func (r *TokenRef) Raw() string        { return r.Source }
func (r *TokenRef) Position() Position { return r.Pos }
func (*TokenRef) node()                {}

// InputSource returns the original text of the input argument.
func (r *TokenRef) InputSource() string { return Source(r.Input) }

// Source concatenates the original text of nodes.
func Source(nodes []Node) string {
	var sb strings.Builder

	for _, n := range nodes {
		sb.WriteString(n.Raw())
	}

	return sb.String()
}

// Walk returns a pre-order iterator over nodes and the input arguments of
// every token reference they contain.
func Walk(nodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(nodes, yield)
	}
}

func walk(nodes []Node, yield func(Node) bool) bool {
	for _, n := range nodes {
		if !yield(n) {
			return false
		}

		if ref, ok := n.(*TokenRef); ok {
			if !walk(ref.Input, yield) {
				return false
			}
		}
	}

	return true
}

// Refs returns a pre-order iterator over every token reference in nodes,
// including references nested in input arguments.
func Refs(nodes []Node) iter.Seq[*TokenRef] {
	return func(yield func(*TokenRef) bool) {
		for n := range Walk(nodes) {
			if ref, ok := n.(*TokenRef); ok {
				if !yield(ref) {
					return
				}
			}
		}
	}
}

// Print writes an indented description of nodes to w.
func Print(w io.Writer, nodes []Node) error {
	pw := &printer{w: w}
	pw.nodes(nodes, 0)

	return pw.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) put(indent int, item ...string) {
	if p.err != nil {
		return
	}

	_, p.err = io.WriteString(
		p.w,
		strings.Repeat("  ", indent)+strings.Join(item, ": ")+"\n",
	)
}

func (p *printer) nodes(nodes []Node, indent int) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Literal:
			p.put(indent, "Literal", strconv.Quote(n.Text))

		case *TokenRef:
			p.put(indent, "Token", n.Name)

			if n.HasInput {
				p.put(indent+1, "Input", strconv.Quote(n.InputSource()))
				p.nodes(n.Input, indent+2)
			}
		}
	}
}
