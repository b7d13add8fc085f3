package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ardnew/kconfgen/query"
)

// Query prints the resolved value of one symbol.
type Query struct {
	Kconfig string `arg:"" help:"Root Kconfig file"                                   type:"existingfile"`
	Symbol  string `arg:"" help:"Symbol name, with or without the prefix"`
	Config  string `       help:"Merged configuration file (default values if missing)" type:"path"         default:".config" env:"KCONFIG_CONFIG"`
}

// Run executes the query command.
func (c *Query) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	res, err := resolveConfig(ctx, g, c.Kconfig, false, c.Config)
	if err != nil {
		return err
	}

	value, err := query.Lookup(res, c.Symbol)
	if errors.Is(err, query.ErrUnknownSymbol) && g.Prefix != "" {
		if name, ok := strings.CutPrefix(c.Symbol, g.Prefix); ok {
			value, err = query.Lookup(res, name)
		}
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout(ctx), value)

	return err
}
