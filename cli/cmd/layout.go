package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/kconfgen/artifact"
	"github.com/ardnew/kconfgen/log"
)

// Layout writes the built-in artifact layout as YAML, as a starting point
// for a custom --layout file.
type Layout struct {
	Output string `arg:"" help:"File to write, or '-' for stdout" type:"path" default:"-"`
	Force  bool   `       help:"Overwrite an existing file"                                 short:"f"`
}

// Run executes the layout command.
func (c *Layout) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	data, err := artifact.DefaultLayout().Format(ctx)
	if err != nil {
		return err
	}

	if c.Output == "-" {
		_, err = stdout(ctx).Write(data)

		return err
	}

	_, err = os.Stat(c.Output)
	if err == nil && !c.Force {
		return ErrWriteConfig.
			With(slog.String("file", c.Output)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if _, err = artifact.Write(c.Output, data); err != nil {
		return err
	}

	log.DebugContext(ctx, "wrote layout", slog.String("path", c.Output))

	return nil
}
