package token

import (
	"iter"
	"strings"

	"github.com/segmentio/fasthash/fnv1a"
)

// Name identifies a token and, for parametrized tokens, its input argument.
// Names compare case-insensitively; use [Name.Key] as a map key.
type Name struct {
	name     string
	input    string
	hasInput bool
}

// NewName returns the name of a token without input.
func NewName(name string) Name {
	return Name{name: strings.TrimSpace(name)}
}

// ParseName parses "Name", "Name:input" or "Name|arg=value" without
// evaluating any placeholders in the input.
func ParseName(raw string) Name {
	i := strings.IndexAny(raw, ":|")
	if i < 0 {
		return NewName(raw)
	}

	input := raw[i:]
	if input[0] == ':' {
		input = input[1:]
	}

	return NewName(raw[:i]).WithInput(input)
}

// WithInput returns a copy of n with the given input argument.
func (n Name) WithInput(input string) Name {
	n.input = strings.TrimSpace(input)
	n.hasInput = true

	return n
}

// Name returns the bare token name.
func (n Name) Name() string { return n.name }

// Input returns the input argument and whether one is set.
func (n Name) Input() (string, bool) { return n.input, n.hasInput }

// HasInput reports whether n carries an input argument.
func (n Name) HasInput() bool { return n.hasInput }

// IsZero reports whether n has neither a name nor an input.
func (n Name) IsZero() bool { return n.name == "" && !n.hasInput }

// Key returns the case-folded identity of n.
func (n Name) Key() string {
	if !n.hasInput {
		return strings.ToLower(n.name)
	}

	// '\x00' cannot appear in a lexed name, so an empty input stays
	// distinct from no input.
	return strings.ToLower(n.name) + "\x00" + strings.ToLower(n.input)
}

// Hash returns a 64-bit FNV-1a hash of [Name.Key].
func (n Name) Hash() uint64 {
	return fnv1a.HashString64(n.Key())
}

// Equal reports whether n and o name the same token, ignoring case.
func (n Name) Equal(o Name) bool {
	return n.hasInput == o.hasInput &&
		strings.EqualFold(n.name, o.name) &&
		strings.EqualFold(n.input, o.input)
}

// String formats n the way it would appear inside a placeholder.
func (n Name) String() string {
	switch {
	case !n.hasInput:
		return n.name
	case strings.HasPrefix(n.input, "|"):
		return n.name + " " + n.input
	default:
		return n.name + ":" + n.input
	}
}

// NameSet is an insertion-ordered, case-insensitive set of names.
// The zero value is an empty set ready to use.
type NameSet struct {
	index map[string]int
	names []Name
}

// NewNameSet returns a set containing names.
func NewNameSet(names ...Name) *NameSet {
	s := &NameSet{}
	for _, n := range names {
		s.Add(n)
	}

	return s
}

// Add inserts n and reports whether it was not already present.
func (s *NameSet) Add(n Name) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}

	key := n.Key()
	if _, ok := s.index[key]; ok {
		return false
	}

	s.index[key] = len(s.names)
	s.names = append(s.names, n)

	return true
}

// Has reports whether n is in the set.
func (s *NameSet) Has(n Name) bool {
	if s == nil {
		return false
	}

	_, ok := s.index[n.Key()]

	return ok
}

// Len returns the number of names in the set.
func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.names)
}

// All iterates the set in insertion order.
func (s *NameSet) All() iter.Seq[Name] {
	return func(yield func(Name) bool) {
		if s == nil {
			return
		}

		for _, n := range s.names {
			if !yield(n) {
				return
			}
		}
	}
}

// Slice returns a copy of the names in insertion order.
func (s *NameSet) Slice() []Name {
	if s == nil {
		return nil
	}

	return append([]Name(nil), s.names...)
}
