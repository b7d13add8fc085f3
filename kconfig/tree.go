package kconfig

import (
	"iter"
	"slices"
	"strings"
)

// Ungrouped is the menu path of a location without grouping ancestors.
const Ungrouped = "Other"

// Tree is the immutable symbol tree produced by [Load].
type Tree struct {
	byName map[string]*Symbol
	// Root is the path of the root Kconfig file as given to Load.
	Root string
	// Title is the mainmenu prompt, if any.
	Title string
	// Symbols are in declaration order.
	Symbols []*Symbol
	Menus   []MenuNode
	order   []*Symbol
}

// Lookup returns the symbol named name.
func (t *Tree) Lookup(name string) (*Symbol, bool) {
	s, ok := t.byName[name]

	return s, ok
}

// Names returns all symbol names in declaration order.
func (t *Tree) Names() []string {
	names := make([]string, len(t.Symbols))
	for i, s := range t.Symbols {
		names[i] = s.Name
	}

	return names
}

// Ordered iterates over symbols so that every symbol comes after all symbols
// its expressions reference.
func (t *Tree) Ordered() iter.Seq[*Symbol] {
	return slices.Values(t.order)
}

// MenuPath returns the prompts of the grouping ancestors of loc joined with
// "/", outermost first, or [Ungrouped] if there are none.
func (t *Tree) MenuPath(loc Location) string {
	var path []string

	for i := t.parent(loc.Node); i >= 0; i = t.Menus[i].Parent {
		if !t.Menus[i].Grouping {
			continue
		}

		prompt := t.Menus[i].Prompt
		if prompt == "" {
			prompt = Ungrouped
		}

		path = append(path, prompt)
	}

	if len(path) == 0 {
		return Ungrouped
	}

	slices.Reverse(path)

	return strings.Join(path, "/")
}

func (t *Tree) parent(node int) int {
	if node < 0 || node >= len(t.Menus) {
		return -1
	}

	return t.Menus[node].Parent
}

// Files returns the sorted set of Kconfig files that declare at least one
// symbol.
func (t *Tree) Files() []string {
	seen := map[string]bool{}

	var files []string

	for _, s := range t.Symbols {
		for _, loc := range s.Locations {
			if !seen[loc.File] {
				seen[loc.File] = true
				files = append(files, loc.File)
			}
		}
	}

	slices.Sort(files)

	return files
}
