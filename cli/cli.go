package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/ctoken/cli/cmd"
	"github.com/ardnew/ctoken/pkg"
)

// CLI is the top-level command-line interface for ctoken.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit."`

	Pack        string `help:"Content pack file."                             short:"p" type:"path"`
	State       string `help:"World state file."                              short:"s" type:"path"`
	Builtins    bool   `default:"true" help:"Register the builtin tokens." negatable:""`
	Concurrency int    `default:"0"    help:"Patches evaluated in parallel (0 uses every CPU)."`

	Render cmd.Render `cmd:"" default:"withargs" help:"Run one update and print the applied changes"`
	Eval   cmd.Eval   `cmd:""                    help:"Evaluate a template"`
	Lex    cmd.Lex    `cmd:""                    help:"Print the lexical tree of a template"`
	Deps   cmd.Deps   `cmd:""                    help:"Print the content pack dependency graph"`
	Watch  cmd.Watch  `cmd:""                    help:"Update on an interval and print changes"`
	Repl   cmd.Repl   `cmd:""                    help:"Evaluate templates interactively"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

func (c *CLI) settings() cmd.Settings {
	return cmd.Settings{
		Pack:        c.Pack,
		State:       c.State,
		Builtins:    c.Builtins,
		Concurrency: c.Concurrency,
	}
}

// Run executes the ctoken CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSettings(ctx, cli.settings())

	defer cli.Log.start(ctx)()

	// no-op unless built with tag pprof and enabled
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
