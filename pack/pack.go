package pack

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/registry"
	"github.com/ardnew/ctoken/token"
)

// Pack is a loaded content pack.
type Pack struct {
	name        string
	reg         *registry.Registry
	rules       []*rule
	patches     []*Patch
	logger      log.Logger
	concurrency int
}

// rule is a dynamic token rule together with the templates it was built
// from.
type rule struct {
	value     *token.DynamicValue
	templates []*token.String
}

// Load decodes a pack from r and loads it into reg.
func Load(
	ctx context.Context,
	r io.Reader,
	reg *registry.Registry,
	opts ...Option,
) (*Pack, error) {
	def, err := Decode(ctx, r)
	if err != nil {
		return nil, err
	}

	return New(def, reg, opts...)
}

// LoadFile decodes the pack file at path and loads it into reg.
func LoadFile(
	ctx context.Context,
	path string,
	reg *registry.Registry,
	opts ...Option,
) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("path", path))
	}

	defer f.Close()

	p, err := Load(ctx, f, reg, opts...)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", path))
	}

	return p, nil
}

// New loads def into reg. Dynamic tokens are registered in declaration
// order; the changes are constructed once every dynamic token exists.
func New(def Definition, reg *registry.Registry, opts ...Option) (*Pack, error) {
	cfg := makeConfig(opts...)

	p := &Pack{
		name:        def.Name,
		reg:         reg,
		logger:      cfg.logger,
		concurrency: cfg.concurrency,
	}

	// last declaration index of each dynamic token, by case-folded name. A
	// rule may only reference tokens whose rules are all declared before it.
	declared := make(map[string]int, len(def.DynamicTokens))
	for i, d := range def.DynamicTokens {
		declared[strings.ToLower(d.Name)] = i
	}

	owned := make(map[string]*registry.Dynamic)

	for i, d := range def.DynamicTokens {
		r, err := p.loadRule(i, d, declared, cfg)
		if err != nil {
			return nil, err
		}

		key := strings.ToLower(d.Name)
		if dyn, ok := owned[key]; ok {
			dyn.Add(r.value)
		} else {
			dyn := registry.NewDynamic(r.value)
			if err := reg.Register(d.Name, dyn); err != nil {
				return nil, ErrInvalidDefinition.Wrap(err).
					With(slog.String("token", d.Name))
			}

			owned[key] = dyn
		}

		p.rules = append(p.rules, r)
	}

	for _, c := range def.Changes {
		patch, err := p.loadChange(c, cfg)
		if err != nil {
			return nil, err
		}

		p.patches = append(p.patches, patch)
	}

	p.logger.Debug("load pack",
		slog.String("name", p.name),
		slog.Int("dynamic_tokens", len(p.rules)),
		slog.Int("changes", len(p.patches)))

	return p, nil
}

func (p *Pack) loadRule(
	index int,
	d DynamicDef,
	declared map[string]int,
	cfg config,
) (*rule, error) {
	if !registry.ValidName(d.Name) {
		return nil, ErrInvalidDefinition.
			With(slog.String("token", d.Name), slog.String("issue", "invalid name"))
	}

	value, err := token.Parse(d.Value, p.reg, cfg.tokenOptions()...)
	if err != nil {
		return nil, ErrInvalidDefinition.Wrap(err).With(slog.String("token", d.Name))
	}

	clauses, err := d.When.clauses()
	if err != nil {
		return nil, WrapError(err).With(slog.String("token", d.Name))
	}

	conds, templates, err := p.conditions(clauses, cfg)
	if err != nil {
		return nil, WrapError(err).With(slog.String("token", d.Name))
	}

	templates = append(templates, value)

	for _, t := range templates {
		for ref := range t.ReferencedNames() {
			if err := checkDependency(index, d.Name, ref, declared); err != nil {
				return nil, err
			}
		}
	}

	if value.IsMutable() || !value.IsReady() {
		return nil, ErrMutableValue.
			With(slog.String("token", d.Name), slog.String("value", d.Value))
	}

	v, _ := value.Value()

	return &rule{
		value: token.NewDynamicValue(
			token.NewName(d.Name), strings.Split(v, ","), conds...),
		templates: templates,
	}, nil
}

// checkDependency rejects a reference from the rule at index to its own
// token or to a dynamic token with any rule declared after it.
func checkDependency(index int, name string, ref token.Name, declared map[string]int) error {
	issue := ""

	switch at, ok := declared[strings.ToLower(ref.Name())]; {
	case strings.EqualFold(ref.Name(), name):
		issue = "self reference"
	case ok && at > index:
		issue = "forward reference"
	default:
		return nil
	}

	return ErrDependency.With(
		slog.String("token", name),
		slog.String("reference", ref.Name()),
		slog.String("issue", issue))
}

func (p *Pack) loadChange(c ChangeDef, cfg config) (*Patch, error) {
	clauses, err := c.When.clauses()
	if err != nil {
		return nil, WrapError(err).With(slog.String("change", c.LogName))
	}

	conds, _, err := p.conditions(clauses, cfg)
	if err != nil {
		return nil, WrapError(err).With(slog.String("change", c.LogName))
	}

	keys := make([]string, 0, len(c.Fields))
	for key := range c.Fields {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	fields := make([]Field, 0, len(keys))

	for _, key := range keys {
		s, err := token.Parse(c.Fields[key], p.reg, cfg.tokenOptions()...)
		if err != nil {
			return nil, ErrInvalidDefinition.Wrap(err).
				With(slog.String("change", c.LogName), slog.String("field", key))
		}

		fields = append(fields, Field{Key: key, Value: s})
	}

	return NewPatch(c.LogName, fields, conds...), nil
}

// conditions builds the conditions of a when block and returns them along
// with their key and value templates.
func (p *Pack) conditions(
	clauses []clause,
	cfg config,
) ([]token.Condition, []*token.String, error) {
	conds := make([]token.Condition, 0, len(clauses))
	templates := make([]*token.String, 0, 2*len(clauses))

	for _, cl := range clauses {
		c, err := token.NewTokenCondition(cl.key, cl.values, p.reg, cfg.tokenOptions()...)
		if err != nil {
			return nil, nil, ErrInvalidDefinition.Wrap(err)
		}

		conds = append(conds, c)
		templates = append(templates, c.Key(), c.Allowed())
	}

	return conds, templates, nil
}

// Name returns the pack name.
func (p *Pack) Name() string { return p.name }

// Patches returns the changes in declaration order.
func (p *Pack) Patches() []*Patch { return slices.Clone(p.patches) }

// Tokens returns the names of the dynamic tokens defined by the pack, in
// declaration order and without duplicates.
func (p *Pack) Tokens() []string {
	var names []string

	for _, r := range p.rules {
		name := r.value.Name().Name()
		if !slices.ContainsFunc(names, func(s string) bool {
			return strings.EqualFold(s, name)
		}) {
			names = append(names, name)
		}
	}

	return names
}
