// Package profile wraps [github.com/pkg/profile] for ctoken.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o ctoken .
//	ctoken --pprof-mode=cpu --state=world.yaml --pack=pack.yaml watch -c 100
//
// Without the tag, [Config.Start] always returns a no-op and [Modes] is
// empty. Profiles are written to the directory given by [WithPath] and can
// be inspected with go tool pprof. Building with the tag also registers the
// net/http/pprof handlers on the default mux.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
