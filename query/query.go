// Package query answers questions about a resolved configuration: the value
// of one symbol, the symbols that are enabled, and the Kconfig files that
// make up the tree.
package query

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/kconfgen/artifact"
	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/pkg"
	"github.com/ardnew/kconfgen/resolve"
)

// ErrUnknownSymbol is returned for names not declared in the tree.
var ErrUnknownSymbol = pkg.NewError("unknown symbol")

// MaxSuggestions bounds the suggestions attached to [ErrUnknownSymbol].
const MaxSuggestions = 5

// Entry is a symbol name and its resolved value.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// String returns "name=value".
func (e Entry) String() string { return e.Name + "=" + e.Value }

// Lookup returns the resolved value of name as text: y, m, or n for bool
// and tristate symbols and the literal value otherwise. Unknown names fail
// with [ErrUnknownSymbol] carrying the closest declared names.
func Lookup(res *resolve.Resolution, name string) (string, error) {
	v, ok := res.Value(name)
	if !ok {
		err := ErrUnknownSymbol.With(slog.String("symbol", name))

		if s := Suggest(res.Tree.Names(), name, MaxSuggestions); len(s) > 0 {
			err = err.With(slog.Any("suggestions", s))
		}

		return "", err
	}

	return v.String(), nil
}

// Enabled returns the bool and tristate symbols of res resolved to y or m,
// in declaration order.
func Enabled(res *resolve.Resolution) []Entry {
	return enabled(res, slices.Values(res.Tree.Symbols))
}

// EnabledIn returns the enabled symbols of the planned artifacts, in plan
// order, each symbol once.
func EnabledIn(res *resolve.Resolution, plan []artifact.Artifact) []Entry {
	return enabled(res, func(yield func(*kconfig.Symbol) bool) {
		seen := map[string]bool{}

		for _, a := range plan {
			for _, g := range a.Groups {
				for _, s := range g.Symbols {
					if seen[s.Name] {
						continue
					}

					seen[s.Name] = true

					if !yield(s) {
						return
					}
				}
			}
		}
	})
}

func enabled(res *resolve.Resolution, syms iter.Seq[*kconfig.Symbol]) []Entry {
	entries := []Entry{}

	for s := range syms {
		if v, ok := res.Value(s.Name); ok && v.Enabled() {
			entries = append(entries, Entry{Name: s.Name, Value: v.String()})
		}
	}

	return entries
}

// Fragments returns the sorted Kconfig files that declare symbols.
func Fragments(tree *kconfig.Tree) []string { return tree.Files() }

// Suggest returns up to limit names that fuzzily match target, best match
// first.
func Suggest(names []string, target string, limit int) []string {
	matches := fuzzy.Find(target, names)

	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}

		out = append(out, m.Str)
	}

	return out
}
