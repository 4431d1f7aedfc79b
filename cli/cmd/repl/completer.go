package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "tick", "reload", "edit", "clear", "quit"}

// isWordBoundary reports whether r delimits a token name in a template.
func isWordBoundary(r rune) bool {
	switch r {
	case '{', '}', ':', '|', ',', ' ', '\t':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries in input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// atTokenName reports whether a word starting at wordStart is the name of
// a placeholder, that is, it directly follows an opening "{{".
func atTokenName(input string, wordStart int) bool {
	return strings.HasSuffix(strings.TrimRight(input[:wordStart], " \t"), "{{")
}

// computeMatches returns the ranked candidates for the word at the cursor.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, ws, we := wordBounds(input, m.input.Position())

	var candidates []string

	switch {
	case word == "":
		return nil, ws, we
	case m.mode == modeCtrl:
		if strings.TrimSpace(input[:ws]) != "" {
			return nil, ws, we
		}

		candidates = ctrlCommands
	case atTokenName(input, ws):
		candidates = m.cfg.Registry.Names()
	default:
		return nil, ws, we
	}

	return fuzzy.Find(word, candidates), ws, we
}

// renderCandidateBar renders the completion bar, ellipsized to fit width.
// The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)

			if used+w+reserve > width {
				b.WriteString(sep)
				b.WriteString(ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters bold.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, highlight = selectedStyle, selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
