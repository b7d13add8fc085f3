package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/kconfgen/query"
)

// Enabled lists the bool and tristate symbols resolved to y or m.
type Enabled struct {
	Kconfig string `arg:"" help:"Root Kconfig file"                                   type:"existingfile"`
	Config  string `       help:"Merged configuration file (default values if missing)" type:"path"         default:".config" env:"KCONFIG_CONFIG"`
	Format  string `       help:"Output format"                                                             default:"line"    enum:"line,list,json,yaml" short:"F"`
	Indent  int    `       help:"Indent width for JSON and YAML output"                                     default:"2"                                  short:"i"`
}

// Run executes the enabled command.
func (c *Enabled) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	res, err := resolveConfig(ctx, g, c.Kconfig, false, c.Config)
	if err != nil {
		return err
	}

	entries := query.Enabled(res)
	out := stdout(ctx)

	switch c.Format {
	case "list":
		pairs := make([]string, len(entries))
		for i, e := range entries {
			pairs[i] = e.String()
		}

		_, err = fmt.Fprintln(out, strings.Join(pairs, ";"))

	case "json":
		var data []byte

		data, err = json.MarshalIndent(entries, "", strings.Repeat(" ", c.Indent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(out, string(data))

	case "yaml":
		var data []byte

		data, err = yaml.MarshalContext(ctx, entries, yaml.Indent(c.Indent))
		if err != nil {
			return ErrYAMLMarshal.With(slog.Int("indent", c.Indent)).Wrap(err)
		}

		_, err = out.Write(data)

	default:
		for _, e := range entries {
			if _, err = fmt.Fprintln(out, e); err != nil {
				break
			}
		}
	}

	return err
}
