// Package cli contains the command line interface for ctoken.
//
// # Usage
//
// Global flags name the world-state file and content pack every command
// loads:
//
//	ctoken --state=world.yaml --pack=pack.yaml render -o yaml
//	ctoken --state=world.yaml eval '{{Season}} {{Hearts:{{Spouse}}}}'
//	ctoken lex '{{Hearts:{{Spouse}}}}'
//	ctoken --pack=pack.yaml deps
//	ctoken --state=world.yaml --pack=pack.yaml watch -n 500ms
//	ctoken --state=world.yaml repl
//
// # Configuration
//
// Flags may also be set in a YAML file in the user configuration directory
// (for example ~/.config/ctoken/config.yaml). The init command writes one
// from the current flags. Nested mappings join with hyphens:
//
//	state: /home/me/world.yaml
//	log:
//	  level: debug
//	  format: text
//
// # Logging Options
//
//   - --log-level: trace, debug, info, warn or error
//   - --log-format: json or text
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, ...)
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorize text output
//
// # Profiling Options
//
// Only available when built with the pprof build tag:
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread or trace
//   - --pprof-dir: profile output directory
//
// Build with:
//
//	go build -tags pprof -o ctoken .
package cli
