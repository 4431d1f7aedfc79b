package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/ctoken/token"
)

// Query evaluates its input as an expr-lang expression. Compiled programs are
// cached by the xxh3 hash of their source.
//
// Expressions can use the host environment (platform, target, hostname,
// user, shell, cwd(), env(key), file.*, path.*, mung.*) and read other
// tokens with token(name) or tokens(name):
//
//	{{Query: token('Season') in ['Spring', 'Summer']}}
//	{{Query: file.exists(env('HOME') + '/.profile')}}
type Query struct {
	reg      *Registry
	programs sync.Map // uint64 -> compiled
}

type compiled struct {
	prog *vm.Program
	err  error
}

func newQuery(r *Registry) *Query {
	return &Query{reg: r}
}

func (*Query) IsMutable() bool { return true }

// Values returns the result of the expression in the input. Booleans format
// as "true" or "false", arrays yield one value per element, and nil or a
// failed expression yields nothing.
func (q *Query) Values(name token.Name) []string {
	src, ok := name.Input()
	if !ok || src == "" {
		return nil
	}

	prog, err := q.compile(src)
	if err != nil {
		q.reg.logger.Debug("query compile failed",
			slog.String("expr", src), slog.Any("error", err))

		return nil
	}

	out, err := expr.Run(prog, q.env())
	if err != nil {
		q.reg.logger.Debug("query evaluation failed",
			slog.String("expr", src), slog.Any("error", err))

		return nil
	}

	return formatResult(out)
}

func (q *Query) compile(src string) (*vm.Program, error) {
	key := xxh3.HashString(src)

	if v, ok := q.programs.Load(key); ok {
		c, _ := v.(compiled)

		return c.prog, c.err
	}

	prog, err := expr.Compile(src, expr.Env(q.env()))
	q.programs.Store(key, compiled{prog: prog, err: err})

	return prog, err
}

func (q *Query) env() map[string]any {
	env := maps.Clone(baseEnv())

	env["token"] = func(name string) string {
		if v := q.reg.Values(token.ParseName(name)); len(v) > 0 {
			return v[0]
		}

		return ""
	}

	env["tokens"] = func(name string) []string {
		return q.reg.Values(token.ParseName(name))
	}

	return env
}

//nolint:gochecknoglobals
var (
	baseEnvOnce sync.Once
	baseEnvMap  map[string]any
)

// baseEnv returns the process-scoped expression environment. Callers must
// clone it before adding entries.
func baseEnv() map[string]any {
	baseEnvOnce.Do(func() {
		sys := systemInfo()

		baseEnvMap = map[string]any{
			"platform": sys.platform.String(),
			"target":   sys.target.triple(),
			"hostname": sys.hostname,
			"user":     sys.user,
			"shell":    sys.shell,
			"cwd":      getCwd,
			"env":      os.Getenv,
			"file": map[string]any{
				"exists":    fileExists,
				"isDir":     fileIsDir,
				"isRegular": fileIsRegular,
			},
			"path": map[string]any{
				"abs":  pathAbs,
				"cat":  filepath.Join,
				"base": filepath.Base,
				"dir":  filepath.Dir,
			},
			"mung": map[string]any{
				"prefix": mungPrefix,
			},
		}
	})

	return baseEnvMap
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func formatResult(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case bool:
		return []string{strconv.FormatBool(v)}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, formatResult(e)...)
		}

		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
