package artifact

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/pkg"
)

// Spec describes one output header.
type Spec struct {
	// ID names the artifact in rules and diagnostics.
	ID string `json:"id" yaml:"id"`
	// Path is slash-separated and relative to the output directory.
	Path  string `json:"path" yaml:"path"`
	Guard string `json:"guard" yaml:"guard"`
	Title string `json:"title" yaml:"title"`
	// Counts are derived macros appended after the symbol groups.
	Counts []Count `json:"counts,omitempty" yaml:"counts,omitempty"`
}

// Count is a derived macro whose value is the number of Symbols resolved
// to y.
type Count struct {
	Name    string   `json:"name" yaml:"name"`
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// Rule assigns the declarations in matching Kconfig files to an artifact.
// Exactly one of File, Prefix, and Glob is set. File matches one path
// exactly, Prefix matches a leading substring, and Glob matches a doublestar
// pattern.
type Rule struct {
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Glob     string `json:"glob,omitempty" yaml:"glob,omitempty"`
	Artifact string `json:"artifact" yaml:"artifact"`
}

func (r Rule) match(file string) bool {
	switch {
	case r.File != "":
		return file == r.File
	case r.Prefix != "":
		return strings.HasPrefix(file, r.Prefix)
	default:
		ok, _ := doublestar.Match(r.Glob, file)

		return ok
	}
}

// Layout is a [Classifier] driven by an ordered rule list. The first rule
// matching a declaration's file wins.
type Layout struct {
	Artifacts []Spec `json:"artifacts" yaml:"artifacts"`
	Rules     []Rule `json:"rules" yaml:"rules"`
}

// DefaultLayout returns the layout of the board support tree: root
// declarations go to the system header and the boards, drivers, and
// application subtrees each get their own header.
func DefaultLayout() *Layout {
	return &Layout{
		Artifacts: []Spec{
			{
				ID:    "system_config",
				Path:  "src/boards/include/boards/system_config.h",
				Guard: "SYSTEM_CONFIG_H",
				Title: "System Configuration",
			},
			{
				ID:    "board_config",
				Path:  "src/boards/include/boards/board_config.h",
				Guard: "BOARD_CONFIG_H",
				Title: "Board Configuration",
				Counts: []Count{{
					Name:    "BOARD_LED_COUNT",
					Symbols: []string{"BOARD_HAS_LED1", "BOARD_HAS_LED2", "BOARD_HAS_LED3"},
				}},
			},
			{
				ID:    "driver_config",
				Path:  "src/drivers/driver_config.h",
				Guard: "DRIVER_CONFIG_H",
				Title: "Driver Configuration",
			},
			{
				ID:    "app_config",
				Path:  "src/application/app_config.h",
				Guard: "APP_CONFIG_H",
				Title: "Application Configuration",
			},
		},
		Rules: []Rule{
			{File: "Kconfig", Artifact: "system_config"},
			{Prefix: "src/boards/", Artifact: "board_config"},
			{Prefix: "src/drivers/", Artifact: "driver_config"},
			{Prefix: "src/application/", Artifact: "app_config"},
		},
	}
}

// LoadLayout reads a YAML layout file. Unknown fields are rejected and the
// result is validated.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrLayout.With(slog.String("path", path), slog.Bool("exists", false))
		}

		return nil, ErrLayout.With(slog.String("path", path)).Wrap(err)
	}

	return ParseLayout(data, path)
}

// ParseLayout decodes and validates a YAML layout. name identifies the
// source in errors.
func ParseLayout(data []byte, name string) (*Layout, error) {
	var l Layout

	if err := yaml.UnmarshalWithOptions(data, &l, yaml.DisallowUnknownField()); err != nil {
		return nil, ErrLayout.With(slog.String("path", name)).Wrap(err)
	}

	if err := l.Validate(); err != nil {
		return nil, pkg.WrapError(err).With(slog.String("path", name))
	}

	return &l, nil
}

// Format encodes l as YAML that [ParseLayout] accepts.
func (l *Layout) Format(ctx context.Context) ([]byte, error) {
	return yaml.MarshalContext(ctx, l, yaml.Indent(2))
}

// Validate checks that artifact IDs are unique, every spec has a path and
// guard, and every rule has exactly one valid matcher naming a known
// artifact.
func (l *Layout) Validate() error {
	ids := make(map[string]bool, len(l.Artifacts))
	paths := make(map[string]string, len(l.Artifacts))

	for i, s := range l.Artifacts {
		invalid := func(reason string) error {
			return ErrLayout.With(
				slog.Int("artifact", i),
				slog.String("id", s.ID),
				slog.String("reason", reason),
			)
		}

		switch {
		case s.ID == "":
			return invalid("missing id")
		case ids[s.ID]:
			return invalid("duplicate id")
		case s.Path == "":
			return invalid("missing path")
		case s.Guard == "":
			return invalid("missing guard")
		case paths[s.Path] != "":
			return invalid("path already used by " + paths[s.Path])
		}

		for _, c := range s.Counts {
			if c.Name == "" || len(c.Symbols) == 0 {
				return invalid("count requires a name and symbols")
			}
		}

		ids[s.ID] = true
		paths[s.Path] = s.ID
	}

	for i, r := range l.Rules {
		invalid := func(reason string) error {
			return ErrLayout.With(
				slog.Int("rule", i),
				slog.String("artifact", r.Artifact),
				slog.String("reason", reason),
			)
		}

		n := 0

		for _, m := range []string{r.File, r.Prefix, r.Glob} {
			if m != "" {
				n++
			}
		}

		switch {
		case n != 1:
			return invalid("rule requires exactly one of file, prefix, glob")
		case r.Glob != "" && !doublestar.ValidatePattern(r.Glob):
			return invalid("invalid glob " + r.Glob)
		case !ids[r.Artifact]:
			return invalid("unknown artifact")
		}
	}

	return nil
}

// Specs returns the artifacts of l in layout order.
func (l *Layout) Specs(*kconfig.Tree) ([]Spec, error) { return l.Artifacts, nil }

// Classify returns the artifact of the first rule matching file.
func (l *Layout) Classify(file string) (string, bool) {
	for _, r := range l.Rules {
		if r.match(file) {
			return r.Artifact, true
		}
	}

	return "", false
}
