package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/kconfgen/artifact"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/resolve"
)

// GenerateConfig resolves defconfig layers and writes the merged
// configuration.
type GenerateConfig struct {
	Kconfig    string `arg:"" help:"Root Kconfig file"                                 type:"existingfile"`
	Output     string `arg:"" help:"Merged configuration file to write"                type:"path"`
	Defconfig  string `arg:"" help:"Defconfig applied after any discovered defconfig" type:"path"         optional:""`
	Board      string `       help:"Board whose defconfig is searched for"                                             env:"BOARD"`
	SearchPath string `       help:"Directory searched for <board>/defconfig or defconfig" type:"path" placeholder:"DIR"`
}

// Run executes the generate-config command.
func (c *GenerateConfig) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	res, err := resolveConfig(ctx, g, c.Kconfig, false, c.layers(ctx)...)
	if err != nil {
		return err
	}

	written, err := artifact.Write(c.Output, resolve.FormatConfig(res, g.Prefix))
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "configuration generated",
		slog.String("path", c.Output),
		slog.Bool("written", written),
	)

	return nil
}

// layers returns the defconfig paths in application order: the one
// discovered under the search path, then the explicit one.
func (c *GenerateConfig) layers(ctx context.Context) []string {
	var paths []string

	if c.SearchPath != "" {
		path, ok := resolve.FindDefconfig(c.SearchPath, c.Board)
		if ok {
			log.InfoContext(ctx, "found defconfig",
				slog.String("path", path),
				slog.String("board", c.Board),
			)

			paths = append(paths, path)
		} else {
			log.DebugContext(ctx, "no defconfig found",
				slog.String("search", c.SearchPath),
				slog.String("board", c.Board),
			)
		}
	}

	if c.Defconfig != "" {
		paths = append(paths, c.Defconfig)
	}

	return paths
}
