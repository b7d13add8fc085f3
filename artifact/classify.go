// Package artifact turns a resolved configuration into C headers.
//
// A [Classifier] assigns each declaration of a symbol to at most one output
// header. [Plan] groups the visible symbols of every header by menu path,
// [Render] produces the header text, and [Write] persists it only when the
// content changed. [Generate] runs all three for every planned header.
package artifact

import (
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/resolve"
)

// Classifier maps Kconfig files to artifacts.
type Classifier interface {
	// Specs returns the artifacts the classifier can produce for tree, in
	// output order.
	Specs(tree *kconfig.Tree) ([]Spec, error)
	// Classify returns the ID of the artifact receiving the declarations in
	// file, a slash-separated path relative to the tree root.
	Classify(file string) (string, bool)
}

// Group is the symbols of one artifact that share a menu path.
type Group struct {
	Path    string
	Symbols []*kconfig.Symbol
}

// Artifact is a planned header.
type Artifact struct {
	Spec   Spec
	Groups []Group
}

// Len returns the number of symbols in a.
func (a Artifact) Len() int {
	n := 0
	for _, g := range a.Groups {
		n += len(g.Symbols)
	}

	return n
}

// Plan assigns the visible symbols of res to the artifacts of c.
//
// Every declaration is classified on its own, so a symbol declared in
// files belonging to different artifacts appears in each of them. Within an
// artifact, symbols keep declaration order and groups appear in the order
// their first symbol does. Artifacts without symbols are omitted.
func Plan(res *resolve.Resolution, c Classifier) ([]Artifact, error) {
	specs, err := c.Specs(res.Tree)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(specs))
	plan := make([]Artifact, len(specs))

	for i, s := range specs {
		index[s.ID] = i
		plan[i].Spec = s
	}

	for _, s := range res.Tree.Symbols {
		if !res.Visible(s.Name) {
			continue
		}

		added := map[int]bool{}

		for _, loc := range s.Locations {
			id, ok := c.Classify(loc.File)
			if !ok {
				continue
			}

			i, ok := index[id]
			if !ok || added[i] {
				continue
			}

			added[i] = true
			plan[i].add(res.Tree.MenuPath(loc), s)
		}
	}

	return slices.DeleteFunc(plan, func(a Artifact) bool { return len(a.Groups) == 0 }), nil
}

func (a *Artifact) add(menu string, s *kconfig.Symbol) {
	for i := range a.Groups {
		if a.Groups[i].Path == menu {
			a.Groups[i].Symbols = append(a.Groups[i].Symbols, s)

			return
		}
	}

	a.Groups = append(a.Groups, Group{Path: menu, Symbols: []*kconfig.Symbol{s}})
}

// Fragments is a [Classifier] mirroring the Kconfig directory structure:
// the declarations of "dir/Kconfig" go to "dir/config.h" and root-level
// declarations go to "config.h".
//
// If Only is set, it names the one Kconfig file whose declarations are
// produced; other files in its directory are left out.
type Fragments struct {
	Only string
}

// FragmentPath returns the header path of the Kconfig file.
func FragmentPath(file string) string {
	dir := path.Dir(file)
	if dir == "." {
		return "config.h"
	}

	return dir + "/config.h"
}

// Specs returns one artifact per directory declaring symbols, ordered by
// path.
func (f Fragments) Specs(tree *kconfig.Tree) ([]Spec, error) {
	files := tree.Files()

	if f.Only != "" {
		if !slices.Contains(files, f.Only) {
			return nil, ErrUnknownFragment.With(
				slog.String("fragment", f.Only),
				slog.String("available", strings.Join(files, ", ")),
			)
		}

		files = []string{f.Only}
	}

	var specs []Spec

	for _, file := range files {
		id := path.Dir(file)
		if slices.ContainsFunc(specs, func(s Spec) bool { return s.ID == id }) {
			continue
		}

		title := "Configuration"
		if id != "." {
			title = id + " " + title
		}

		p := FragmentPath(file)
		specs = append(specs, Spec{ID: id, Path: p, Guard: guard(p), Title: title})
	}

	return specs, nil
}

// Classify returns the directory of file, or false if Only is set and names
// another file.
func (f Fragments) Classify(file string) (string, bool) {
	if f.Only != "" && file != f.Only {
		return "", false
	}

	return path.Dir(file), true
}

// guard derives an include guard from a header path.
func guard(p string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		default:
			return '_'
		}
	}, p)
}
