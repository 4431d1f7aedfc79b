// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured at creation time using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// A zero-value [Logger] discards everything, so libraries can hold one
// unconditionally and callers opt in with a configured logger.
//
// # Levels
//
// In addition to the four [log/slog] levels the package defines
// [LevelTrace], used for fine-grained evaluation breadcrumbs such as
// per-token substitution results.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText]. When pretty printing is enabled
// the text format colorizes keys and values with lipgloss styles; the JSON
// format is never colorized so it stays machine readable.
//
// # Package-level Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that [Config] reconfigures in place. The CLI uses it for
// command diagnostics.
package log
