package kconfig

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// references returns every symbol s depends on for its value: those named
// in its visibility, defaults, and ranges.
func (t *Tree) references(s *Symbol) []string {
	var refs []string

	add := func(x *Expr) { refs = append(refs, x.Refs()...) }
	addName := func(name string) {
		if _, ok := t.byName[name]; ok {
			refs = append(refs, name)
		}
	}

	add(s.Depends)

	for _, d := range s.Defaults {
		add(d.Value)
		add(d.Cond)

		if d.Ref != "" {
			refs = append(refs, d.Ref)
		}
	}

	for _, r := range s.Ranges {
		add(r.Cond)
		addName(r.Low)
		addName(r.High)
	}

	return refs
}

// sortDependencies computes the evaluation order of the tree. Graph nodes
// are declaration indices and ties are broken by declaration order, so the
// result is deterministic. A cycle is reported with the chain of names
// forming it.
func (t *Tree) sortDependencies() error {
	g := simple.NewDirectedGraph()
	for i := range t.Symbols {
		g.AddNode(simple.Node(i))
	}

	for i, s := range t.Symbols {
		for _, ref := range t.references(s) {
			dep, ok := t.byName[ref]
			if !ok {
				return ErrUnresolvedDependency.With(
					slog.String("symbol", s.Name),
					slog.String("reference", ref),
				)
			}

			if dep == s {
				return cycleError([]string{s.Name, s.Name})
			}

			g.SetEdge(simple.Edge{F: simple.Node(dep.Index()), T: simple.Node(i)})
		}
	}

	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		var cycles topo.Unorderable
		if !errors.As(err, &cycles) || len(cycles) == 0 {
			return ErrUnresolvedDependency.Wrap(err)
		}

		return cycleError(t.cycle(cycles))
	}

	order := make([]*Symbol, len(sorted))
	for i, n := range sorted {
		order[i] = t.Symbols[n.ID()]
	}

	t.order = order

	return nil
}

func byID(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
}

// cycle returns a closed chain of names through the strongly connected
// component holding the earliest declared symbol. Each step follows the
// first reference that stays inside the component.
func (t *Tree) cycle(components topo.Unorderable) []string {
	var (
		first graph.Node
		comp  []graph.Node
	)

	for _, c := range components {
		for _, n := range c {
			if first == nil || n.ID() < first.ID() {
				first, comp = n, c
			}
		}
	}

	in := make(map[string]bool, len(comp))
	for _, n := range comp {
		in[t.Symbols[n.ID()].Name] = true
	}

	start := t.Symbols[first.ID()]

	var (
		chain []string
		seen  = map[string]int{}
	)

	for s := start; s != nil; {
		if i, ok := seen[s.Name]; ok {
			return append(chain[i:], s.Name)
		}

		seen[s.Name] = len(chain)
		chain = append(chain, s.Name)

		next := s
		s = nil

		for _, ref := range t.references(next) {
			if in[ref] {
				s = t.byName[ref]

				break
			}
		}
	}

	return chain
}

func cycleError(chain []string) error {
	return ErrUnresolvedDependency.With(
		slog.String("symbol", chain[0]),
		slog.String("cycle", strings.Join(chain, " -> ")),
	)
}
