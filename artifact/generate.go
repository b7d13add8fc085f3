package artifact

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/kconfgen/resolve"
)

// Result reports the outcome of one generated artifact.
type Result struct {
	ID      string
	Path    string
	Symbols int
	Written bool
}

// Generate plans the artifacts of c, then renders and writes each under
// dir. Results are returned in plan order.
//
// With [WithJobs] greater than one, artifacts are processed concurrently.
// The first failure cancels the artifacts not yet started and is returned
// along with the results of the artifacts that completed.
func Generate(
	ctx context.Context,
	res *resolve.Resolution,
	c Classifier,
	dir string,
	opts ...Option,
) ([]Result, error) {
	o := makeOptions(opts...)

	plan, err := Plan(res, c)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(plan))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs)

	for i, a := range plan {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(dir, filepath.FromSlash(a.Spec.Path))

			written, err := Write(path, Render(a, res, opts...))
			if err != nil {
				return err
			}

			results[i] = Result{ID: a.Spec.ID, Path: path, Symbols: a.Len(), Written: written}

			if written {
				o.logger.InfoContext(ctx, "artifact written",
					slog.String("artifact", a.Spec.ID),
					slog.String("path", path),
				)
			} else {
				o.logger.DebugContext(ctx, "artifact unchanged",
					slog.String("artifact", a.Spec.ID),
					slog.String("path", path),
				)
			}

			return nil
		})
	}

	err = g.Wait()

	return slices.DeleteFunc(results, func(r Result) bool { return r.ID == "" }), err
}
