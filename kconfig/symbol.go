package kconfig

import "strings"

// Location is one declaration of a symbol.
type Location struct {
	// File is the declaring Kconfig file, slash-separated and relative to the
	// directory of the root Kconfig file.
	File   string
	Help   string
	Prompt string
	Line   int
	// Node indexes the declaration's own entry in [Tree.Menus].
	Node int
}

// Default is one "default" (or def_bool/def_tristate) property.
type Default struct {
	// Value is the default of a bool or tristate symbol.
	Value *Expr
	// Cond gates the default; nil means always active. It already includes
	// the dependencies of the declaring location.
	Cond *Expr
	// Text is the literal default of a string, int, or hex symbol.
	Text string
	// Ref names the symbol whose value is the default, in place of Text.
	Ref string
}

// Range bounds the value of an int or hex symbol. Low and High are literals
// or symbol names.
type Range struct {
	Cond *Expr
	Low  string
	High string
}

// Symbol is a named, typed configuration unit.
type Symbol struct {
	// Depends is the visibility of the symbol: the OR over all declaring
	// locations of each location's dependencies. Nil means always visible.
	Depends   *Expr
	Name      string
	Defaults  []Default
	Ranges    []Range
	Locations []Location
	Type      Type
	index     int
}

// Index returns the declaration order of s within its tree.
func (s *Symbol) Index() int { return s.index }

// Prompt returns the first prompt given to s, if any.
func (s *Symbol) Prompt() string {
	for _, loc := range s.Locations {
		if loc.Prompt != "" {
			return loc.Prompt
		}
	}

	return ""
}

// Help returns the help text of the first location that has any.
func (s *Symbol) Help() string {
	for _, loc := range s.Locations {
		if loc.Help != "" {
			return loc.Help
		}
	}

	return ""
}

// HelpLines returns the non-blank lines of [Symbol.Help], trimmed.
func (s *Symbol) HelpLines() []string {
	var lines []string

	for line := range strings.SplitSeq(s.Help(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// MenuNode is an entry in the menu hierarchy.
//
// Parent is an index into [Tree.Menus], or -1 at the top level. It is only
// used to walk toward the root; nodes never modify their ancestors.
type MenuNode struct {
	Prompt string
	// Symbol names the declared symbol for config and menuconfig entries.
	Symbol string
	Parent int
	// Grouping is set for menu blocks and menuconfig entries, the nodes
	// whose prompts form menu paths.
	Grouping bool
}
