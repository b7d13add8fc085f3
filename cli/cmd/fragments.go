package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/kconfgen/artifact"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/query"
)

// Fragments writes one header per Kconfig directory declaring visible
// symbols.
type Fragments struct {
	Kconfig      string `arg:"" help:"Root Kconfig file"                                  type:"existingfile"`
	Config       string `       help:"Merged configuration file"                          type:"path"         default:".config"           env:"KCONFIG_CONFIG"`
	OutputDir    string `       help:"Directory headers are written under"                type:"path"         default:"include/generated"`
	Fragment     string `       help:"Generate only the fragment of this Kconfig file"                                                                       placeholder:"FILE"`
	PrintHeaders bool   `       help:"Print the path of each generated header"`
	CheckSymbols bool   `       help:"Print the enabled symbols of the generated headers"`
	List         bool   `       help:"List the available fragments and exit"`
	Jobs         int    `       help:"Number of headers written concurrently"                                 default:"1"                                    short:"j"`
}

// Run executes the fragments command.
func (c *Fragments) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := stdout(ctx)

	if c.List {
		tree, err := loadTree(ctx, c.Kconfig)
		if err != nil {
			return err
		}

		specs, err := artifact.Fragments{}.Specs(tree)
		if err != nil {
			return err
		}

		for _, spec := range specs {
			fmt.Fprintf(out, "%s\t%s\n", spec.ID, spec.Path)
		}

		return nil
	}

	res, err := resolveConfig(ctx, g, c.Kconfig, true, c.Config)
	if err != nil {
		return err
	}

	classifier := artifact.Fragments{Only: c.Fragment}

	results, err := artifact.Generate(ctx, res, classifier, c.OutputDir,
		artifact.WithPrefix(g.Prefix),
		artifact.WithHeader(g.Header),
		artifact.WithJobs(c.Jobs),
		artifact.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "fragment headers generated",
		slog.String("dir", c.OutputDir),
		slog.Int("artifacts", len(results)),
	)

	if c.PrintHeaders {
		for _, r := range results {
			fmt.Fprintln(out, r.Path)
		}
	}

	if c.CheckSymbols {
		plan, err := artifact.Plan(res, classifier)
		if err != nil {
			return err
		}

		entries := query.EnabledIn(res, plan)

		pairs := make([]string, len(entries))
		for i, e := range entries {
			pairs[i] = e.String()
		}

		fmt.Fprintln(out, "ENABLED_SYMBOLS:"+strings.Join(pairs, ";"))
	}

	return nil
}
