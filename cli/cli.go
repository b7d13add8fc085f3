package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/kconfgen/cli/cmd"
	"github.com/ardnew/kconfgen/pkg"
)

// CLI is the top-level command-line interface for kconfgen.
type CLI struct {
	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	cmd.Globals `embed:""`

	GenerateConfig  cmd.GenerateConfig  `cmd:"" help:"Resolve defconfig layers and write the merged configuration"`
	GenerateHeaders cmd.GenerateHeaders `cmd:"" help:"Generate C headers from a merged configuration"`
	Fragments       cmd.Fragments       `cmd:"" help:"Generate one header per Kconfig directory"`
	Query           cmd.Query           `cmd:"" help:"Print the resolved value of a symbol"`
	Enabled         cmd.Enabled         `cmd:"" help:"List enabled symbols"`
	Browse          cmd.Browse          `cmd:"" help:"Browse the resolved configuration interactively"`
	Layout          cmd.Layout          `cmd:"" help:"Write the built-in artifact layout"`
	Init            cmd.Init            `cmd:"" help:"Write current global flags as configuration defaults"`
}

// vars returns the interpolation variables of every flag and help string.
func (c *CLI) vars(config string) kong.Vars {
	return kong.Vars{
		cmd.ConfigIdentifier: config,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Name + " " + pkg.Version(),
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars())
}

// options returns the kong options of the kconfgen parser. Commands receive
// the context returned by ctx when they run.
func (c *CLI) options(
	ctx func() context.Context,
	exit func(code int),
	config string,
) []kong.Option {
	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.BindSingletonProvider(ctx),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, config),
		c.vars(config),
	}
}

// Run parses args and runs the selected command. The exit function is
// called by kong after printing help or version information.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(
		func() context.Context { return ctx },
		exit,
		configPath(baseConfig+".json"),
	)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// The singleton provider above returns ctx as reassigned here.
	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli.Globals)
}
