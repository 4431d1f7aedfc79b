package registry

// Builtin tokens describing the host system. Identity tokens (Platform,
// Target, Hostname, User, Shell) are resolved once per process; the others
// are mutable and re-evaluated every tick.

import (
	"bufio"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/ardnew/ctoken/token"
)

// Builtin token names.
const (
	BuiltinPlatform   = "Platform"
	BuiltinTarget     = "Target"
	BuiltinHostname   = "Hostname"
	BuiltinUser       = "User"
	BuiltinShell      = "Shell"
	BuiltinCwd        = "Cwd"
	BuiltinEnv        = "Env"
	BuiltinFileExists = "FileExists"
	BuiltinPathPrefix = "PathPrefix"
	BuiltinQuery      = "Query"
)

// RegisterBuiltins registers every builtin token.
func (r *Registry) RegisterBuiltins() error {
	sys := systemInfo()

	builtins := []struct {
		name string
		p    token.Provider
	}{
		{BuiltinPlatform, NewStatic(sys.platform.String()).
			WithInput("os", sys.platform.OS).
			WithInput("arch", sys.platform.Arch)},
		{BuiltinTarget, NewStatic(sys.target.triple()).
			WithInput("os", sys.target.OS).
			WithInput("arch", sys.target.Arch)},
		{BuiltinHostname, NewStatic(nonEmpty(sys.hostname)...)},
		{BuiltinUser, NewStatic(nonEmpty(sys.user)...)},
		{BuiltinShell, NewStatic(nonEmpty(sys.shell)...)},
		{BuiltinCwd, NewFunc(true, func(token.Name) []string {
			return []string{getCwd()}
		})},
		{BuiltinEnv, NewFunc(true, envValues)},
		{BuiltinFileExists, NewFunc(true, fileExistsValues)},
		{BuiltinPathPrefix, NewFunc(true, pathPrefixValues)},
		{BuiltinQuery, newQuery(r)},
	}

	for _, b := range builtins {
		if err := r.Register(b.name, b.p); err != nil {
			return err
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// System information
// ---------------------------------------------------------------------------

// target contains string identifiers for an operating system and
// instruction set architecture.
type target struct {
	OS   string
	Arch string
}

func (t target) String() string { return t.OS + "/" + t.Arch }

func (t target) triple() string { return t.Arch + "-" + t.OS }

type system struct {
	platform target
	target   target
	hostname string
	user     string
	shell    string
}

//nolint:gochecknoglobals
var (
	systemOnce sync.Once
	systemInst system
)

func systemInfo() system {
	systemOnce.Do(func() {
		systemInst = system{
			platform: getPlatform(),
			target:   getTarget(),
			hostname: getHostname(),
			user:     getUser(),
			shell:    getShell(),
		}
	})

	return systemInst
}

// getTarget returns the host target using GNU GCC/LLVM naming conventions.
func getTarget() target {
	t := getPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch strings.TrimSpace(arm) {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// getPlatform returns the host target using Go conventions.
func getPlatform() target {
	o, ok := os.LookupEnv("GOHOSTOS")
	if !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	a, ok := os.LookupEnv("GOHOSTARCH")
	if !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return target{OS: o, Arch: a}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

func getShell() string {
	if shell, ok := os.LookupEnv("SHELL"); ok {
		return shell
	}

	name := getUser()
	if name == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == name {
			return e[6]
		}
	}

	return ""
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}

	return []string{s}
}

// ---------------------------------------------------------------------------
// Parametrized builtins
// ---------------------------------------------------------------------------

// envValues returns the value of the environment variable named by the
// input, or nothing if it is unset.
func envValues(name token.Name) []string {
	key, ok := name.Input()
	if !ok || key == "" {
		return nil
	}

	if v, ok := os.LookupEnv(key); ok {
		return []string{v}
	}

	return nil
}

func fileExistsValues(name token.Name) []string {
	path, ok := name.Input()
	if !ok || path == "" {
		return nil
	}

	return []string{strconv.FormatBool(fileExists(path))}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

// pathPrefixValues prepends directories to a PATH-like environment
// variable. The input is "VAR, dir, ...".
func pathPrefixValues(name token.Name) []string {
	input, ok := name.Input()
	if !ok {
		return nil
	}

	fields := splitList(input)
	if len(fields) == 0 {
		return nil
	}

	return []string{mungPrefix(os.Getenv(fields[0]), fields[1:]...)}
}

func mungPrefix(subject string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// splitList splits a comma-separated list, trimming and dropping empty
// elements.
func splitList(s string) []string {
	var out []string

	for v := range strings.SplitSeq(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
