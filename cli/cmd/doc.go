// Package cmd implements the ctoken subcommands.
//
// Every command opens a [Session]: a token registry seeded with the builtin
// tokens, the world-state file and the content pack named by the global
// flags.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
