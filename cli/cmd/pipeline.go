package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/resolve"
)

// loadTree loads the Kconfig tree rooted at path.
func loadTree(ctx context.Context, path string) (*kconfig.Tree, error) {
	tree, err := kconfig.Load(ctx, path, kconfig.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "kconfig loaded",
		slog.String("path", path),
		slog.Int("symbols", len(tree.Symbols)),
		slog.Int("files", len(tree.Files())),
	)

	return tree, nil
}

// loadLayers reads the configuration layers at paths in order, skipping
// paths naming a file already read. A missing file fails with
// [resolve.ErrMissingInput] if required, otherwise it is skipped with a
// warning.
func loadLayers(
	ctx context.Context,
	prefix string,
	required bool,
	paths ...string,
) ([]resolve.Layer, error) {
	layers := make([]resolve.Layer, 0, len(paths))

	for _, path := range uniqueFiles(paths) {
		layer, err := resolve.LoadLayer(path, prefix, resolve.WithLogger(log.Default()))

		switch {
		case err == nil:
			log.DebugContext(ctx, "layer loaded",
				slog.String("path", path),
				slog.Int("values", len(layer.Values)),
			)

			layers = append(layers, layer)

		case !required && errors.Is(err, resolve.ErrMissingInput):
			log.WarnContext(ctx, "configuration not found, using defaults",
				slog.String("path", path),
			)

		default:
			return nil, err
		}
	}

	return layers, nil
}

// resolveConfig loads the Kconfig tree at kconfigPath and resolves it
// against the configuration layers at paths.
func resolveConfig(
	ctx context.Context,
	g *Globals,
	kconfigPath string,
	required bool,
	paths ...string,
) (*resolve.Resolution, error) {
	tree, err := loadTree(ctx, kconfigPath)
	if err != nil {
		return nil, err
	}

	layers, err := loadLayers(ctx, g.Prefix, required, paths...)
	if err != nil {
		return nil, err
	}

	return resolve.Resolve(ctx, tree, layers, resolve.WithLogger(log.Default()))
}
