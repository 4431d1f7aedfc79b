package pack

import (
	"strings"

	"github.com/ardnew/ctoken/token"
)

// Kind identifies what a [Dependency] describes.
type Kind string

const (
	KindToken  Kind = "token"
	KindChange Kind = "change"
)

// Dependency lists the token names referenced by a dynamic token rule or a
// change.
type Dependency struct {
	Kind Kind     `yaml:"kind" json:"kind"`
	Name string   `yaml:"name" json:"name"`
	Refs []string `yaml:"refs" json:"refs"`
}

// Graph returns one dependency per dynamic token rule and per change, in
// declaration order. References are distinct, ignoring case and input.
func (p *Pack) Graph() []Dependency {
	out := make([]Dependency, 0, len(p.rules)+len(p.patches))

	for _, r := range p.rules {
		out = append(out, Dependency{
			Kind: KindToken,
			Name: r.value.Name().Name(),
			Refs: refs(r.templates),
		})
	}

	for _, patch := range p.patches {
		out = append(out, Dependency{
			Kind: KindChange,
			Name: patch.LogName(),
			Refs: refs(patchTemplates(patch)),
		})
	}

	return out
}

func refs(templates []*token.String) []string {
	var set token.NameSet

	for _, t := range templates {
		for name := range t.ReferencedNames() {
			set.Add(token.NewName(name.Name()))
		}
	}

	out := make([]string, 0, set.Len())
	for name := range set.All() {
		out = append(out, name.Name())
	}

	return out
}

func patchTemplates(patch *Patch) []*token.String {
	out := make([]*token.String, 0, 2*len(patch.conditions)+len(patch.fields))

	for _, c := range patch.conditions {
		if tc, ok := c.(*token.TokenCondition); ok {
			out = append(out, tc.Key(), tc.Allowed())
		}
	}

	return append(out, patch.templates()...)
}

// Warning reports a placeholder that did not resolve when the pack was
// loaded.
type Warning struct {
	Owner       string   `yaml:"owner"                 json:"owner"`
	Token       string   `yaml:"token"                 json:"token"`
	Suggestions []string `yaml:"suggestions,omitempty" json:"suggestions,omitempty"`
}

// MaxSuggestions is the number of suggestions attached to a [Warning].
const MaxSuggestions = 3

// Warnings returns a warning for every unresolved placeholder, with the
// registered names that most closely match it.
func (p *Pack) Warnings() []Warning {
	var out []Warning

	add := func(owner string, templates []*token.String) {
		for _, t := range templates {
			for _, src := range t.InvalidTokens() {
				out = append(out, Warning{
					Owner:       owner,
					Token:       src,
					Suggestions: p.reg.Suggest(placeholderName(src), MaxSuggestions),
				})
			}
		}
	}

	for _, r := range p.rules {
		add(string(KindToken)+" "+r.value.Name().Name(), r.templates)
	}

	for _, patch := range p.patches {
		add(string(KindChange)+" "+patch.LogName(), patchTemplates(patch))
	}

	return out
}

// placeholderName returns the token name of a placeholder's source text.
func placeholderName(src string) string {
	src = strings.TrimSuffix(strings.TrimPrefix(src, "{{"), "}}")

	return token.ParseName(src).Name()
}
