package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/kconfgen/artifact"
	"github.com/ardnew/kconfgen/log"
)

// GenerateHeaders writes the C headers of the artifact layout from a merged
// configuration.
type GenerateHeaders struct {
	Kconfig   string `arg:"" help:"Root Kconfig file"                              type:"existingfile"`
	Config    string `arg:"" help:"Merged configuration file"                      type:"path"`
	OutputDir string `arg:"" help:"Directory the artifact paths are relative to"   type:"path"`
	Layout    string `       help:"Artifact layout YAML file (default: built-in)" type:"path"         placeholder:"FILE"`
	Jobs      int    `       help:"Number of headers written concurrently"                             default:"1" short:"j"`
}

// Run executes the generate-headers command.
func (c *GenerateHeaders) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	layout := artifact.DefaultLayout()
	if c.Layout != "" {
		layout, err = artifact.LoadLayout(c.Layout)
		if err != nil {
			return err
		}
	}

	res, err := resolveConfig(ctx, g, c.Kconfig, true, c.Config)
	if err != nil {
		return err
	}

	results, err := artifact.Generate(ctx, res, layout, c.OutputDir,
		artifact.WithPrefix(g.Prefix),
		artifact.WithHeader(g.Header),
		artifact.WithJobs(c.Jobs),
		artifact.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "headers generated",
		slog.String("dir", c.OutputDir),
		slog.Int("artifacts", len(results)),
	)

	return nil
}
