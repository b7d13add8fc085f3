package cmd

import (
	"context"

	"github.com/ardnew/kconfgen/cli/cmd/browse"
	"github.com/ardnew/kconfgen/log"
)

// Browse opens the interactive symbol browser.
type Browse struct {
	Kconfig string `arg:"" help:"Root Kconfig file"                                   type:"existingfile"`
	Config  string `       help:"Merged configuration file (default values if missing)" type:"path"         default:".config" env:"KCONFIG_CONFIG"`
	Cache   string `       help:"Directory holding the filter history"                  type:"path"         default:"${cache}" hidden:""`
}

// Run executes the browse command.
func (c *Browse) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	res, err := resolveConfig(ctx, g, c.Kconfig, false, c.Config)
	if err != nil {
		return err
	}

	return browse.Run(ctx, res, c.Cache, log.Default())
}
