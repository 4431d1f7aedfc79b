package lang

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/ctoken/log"
)

const (
	openBraces  = "{{"
	closeBraces = "}}"
)

// Lex splits raw into literal text and token references.
//
// Lex is deterministic: the same input and options always produce an
// equivalent node sequence, and [Source] of the result equals raw. The only
// error it returns is [ErrMaxDepthExceeded].
func Lex(raw string, opts ...Option) ([]Node, error) {
	cfg := makeConfig(opts...)

	l := &lexer{
		input:    raw,
		line:     1,
		col:      1,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}

	var (
		nodes []Node
		err   error
	)

	if cfg.impliedBraces {
		nodes, err = l.lexImplied()
	} else {
		nodes, err = l.lexSequence(false)
	}

	if err != nil {
		return nil, err
	}

	l.logger.Trace("lex complete",
		slog.Int("source_bytes", len(raw)),
		slog.Int("node_count", len(nodes)),
		slog.Bool("implied_braces", cfg.impliedBraces))

	return nodes, nil
}

// lexer holds the lexer state.
type lexer struct {
	input    string
	pos      int
	line     int
	col      int
	maxDepth int
	chain    []string // names of enclosing token references
	logger   log.Logger

	// offsets of "{{" known to be unterminated. Whether a placeholder
	// terminates does not depend on where it is reached from, so each
	// opening is tried at most once.
	failed map[int]bool
}

type mark struct {
	pos, line, col int
}

// lexSequence lexes nodes until EOF, or until an unconsumed "}}" when
// inToken is set.
func (l *lexer) lexSequence(inToken bool) ([]Node, error) {
	var nodes []Node

	litStart := -1

	var litPos Position

	flush := func() {
		if litStart >= 0 && litStart < l.pos {
			nodes = append(nodes, &Literal{
				Text: l.input[litStart:l.pos],
				Pos:  litPos,
			})
		}

		litStart = -1
	}

	for !l.eof() {
		if inToken && l.hasPrefix(closeBraces) {
			break
		}

		if l.hasPrefix(openBraces) {
			if !l.failed[l.pos] {
				at := l.position()

				ref, ok, err := l.lexTokenRef()
				if err != nil {
					return nil, err
				}

				if ok {
					// ref was lexed past the pending literal; cut it at the
					// opening braces.
					if litStart >= 0 {
						nodes = append(nodes, &Literal{
							Text: l.input[litStart:at.Offset],
							Pos:  litPos,
						})
						litStart = -1
					}

					nodes = append(nodes, ref)

					continue
				}
			}

			// unterminated, so the braces are literal text
			if litStart < 0 {
				litStart, litPos = l.pos, l.position()
			}

			l.advance()
			l.advance()

			continue
		}

		if litStart < 0 {
			litStart, litPos = l.pos, l.position()
		}

		l.advance()
	}

	flush()

	return nodes, nil
}

// lexTokenRef lexes a placeholder starting at "{{". It reports false,
// leaving the lexer where it started, if the placeholder is unterminated.
func (l *lexer) lexTokenRef() (*TokenRef, bool, error) {
	start := l.mark()
	pos := l.position()

	l.advance()
	l.advance()

	name := l.lexName(true)
	if l.eof() || l.hasPrefix(openBraces) {
		l.fail(start)

		return nil, false, nil
	}

	hasInput := l.lexSeparator()

	ref := &TokenRef{Name: name, HasInput: hasInput, Pos: pos}

	if hasInput {
		input, err := l.lexInput(name, true)
		if err != nil {
			return nil, false, err
		}

		ref.Input = input
	} else if err := l.checkDepth(name); err != nil {
		return nil, false, err
	}

	if !l.hasPrefix(closeBraces) {
		l.fail(start)

		return nil, false, nil
	}

	l.advance()
	l.advance()

	ref.Source = l.input[start.pos:l.pos]

	l.logger.Trace("lex token",
		slog.String("name", ref.Name),
		slog.Bool("has_input", ref.HasInput),
		slog.Int("depth", len(l.chain)+1),
		slog.String("position", pos.String()))

	return ref, true, nil
}

// lexImplied lexes the whole input as the inside of one placeholder.
func (l *lexer) lexImplied() ([]Node, error) {
	if strings.TrimSpace(l.input) == "" {
		return nil, nil
	}

	pos := l.position()
	name := l.lexName(false)
	hasInput := l.lexSeparator()

	ref := &TokenRef{Name: name, HasInput: hasInput, Pos: pos}

	if hasInput {
		input, err := l.lexInput(name, false)
		if err != nil {
			return nil, err
		}

		ref.Input = input
	} else if err := l.checkDepth(name); err != nil {
		return nil, err
	}

	ref.Source = l.input

	return []Node{ref}, nil
}

// lexName consumes a token name up to ':' or '|', or either brace pair when
// stopAtClose is set, and returns it trimmed.
func (l *lexer) lexName(stopAtClose bool) string {
	start := l.pos

	for !l.eof() {
		if r := l.peek(); r == ':' || r == '|' {
			break
		}

		if stopAtClose &&
			(l.hasPrefix(closeBraces) || l.hasPrefix(openBraces)) {
			break
		}

		l.advance()
	}

	return strings.TrimSpace(l.input[start:l.pos])
}

// lexSeparator consumes the separator between a name and its input and
// reports whether an input follows. A '|' is part of the input.
func (l *lexer) lexSeparator() bool {
	switch l.peek() {
	case ':':
		l.advance()

		return true

	case '|':
		return true

	default:
		return false
	}
}

func (l *lexer) lexInput(name string, inToken bool) ([]Node, error) {
	if err := l.checkDepth(name); err != nil {
		return nil, err
	}

	l.chain = append(l.chain, name)
	defer func() { l.chain = l.chain[:len(l.chain)-1] }()

	return l.lexSequence(inToken)
}

func (l *lexer) checkDepth(name string) error {
	depth := len(l.chain) + 1
	if depth <= l.maxDepth {
		return nil
	}

	chain := append(append([]string(nil), l.chain...), name)

	return ErrMaxDepthExceeded.WithPosition(l.position()).With(
		slog.Int("depth", depth),
		slog.Int("max_depth", l.maxDepth),
		slog.String("chain", strings.Join(chain, " → ")),
	)
}

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return r
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) mark() mark {
	return mark{pos: l.pos, line: l.line, col: l.col}
}

func (l *lexer) reset(m mark) {
	l.pos, l.line, l.col = m.pos, m.line, m.col
}

// fail records the placeholder opened at m as unterminated and rewinds to it.
func (l *lexer) fail(m mark) {
	if l.failed == nil {
		l.failed = make(map[int]bool)
	}

	l.failed[m.pos] = true
	l.reset(m)
}
