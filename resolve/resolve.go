// Package resolve computes the value of every symbol in a Kconfig tree from
// its defaults and a stack of override layers, and persists the result in
// the ".config" format that [ReadLayer] reads back.
package resolve

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/pkg"
)

// Option configures the functions of this package.
type Option func(*options)

type options struct {
	logger log.Logger
}

func makeOptions(opts ...Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Resolution is the resolved value of every symbol in a tree.
// It is immutable and safe for concurrent use.
type Resolution struct {
	Tree    *kconfig.Tree
	values  map[string]kconfig.Value
	visible map[string]bool
}

// Value returns the resolved value of the symbol name.
func (r *Resolution) Value(name string) (kconfig.Value, bool) {
	v, ok := r.values[name]

	return v, ok
}

// Visible reports whether the dependencies of the symbol name are met.
func (r *Resolution) Visible(name string) bool { return r.visible[name] }

// Resolve computes the value of every symbol in tree. Layers are applied in
// order so later layers take precedence; declared defaults apply only to
// symbols no layer assigns.
//
// Symbols whose dependencies evaluate to n take their inert value and
// ignore all layers. Layer entries for symbols not in tree are logged and
// ignored. A layer value that does not parse as the symbol's type, or that
// falls outside the symbol's active range, fails with [ErrTypeMismatch].
func Resolve(
	ctx context.Context,
	tree *kconfig.Tree,
	layers []Layer,
	opts ...Option,
) (*Resolution, error) {
	o := makeOptions(opts...)

	for _, layer := range layers {
		for _, name := range slices.Sorted(maps.Keys(layer.Values)) {
			if _, ok := tree.Lookup(name); !ok {
				o.logger.WarnContext(ctx, "ignoring unknown symbol",
					slog.String("layer", layer.Name),
					slog.String("symbol", name),
				)
			}
		}
	}

	env := kconfig.NewEnv()
	for _, s := range tree.Symbols {
		env.Set(s.Name, kconfig.Inert(s.Type))
	}

	res := &Resolution{
		Tree:    tree,
		values:  make(map[string]kconfig.Value, len(tree.Symbols)),
		visible: make(map[string]bool, len(tree.Symbols)),
	}

	for s := range tree.Ordered() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, visible, err := resolveSymbol(s, env, layers)
		if err != nil {
			return nil, err
		}

		env.Set(s.Name, v)
		res.values[s.Name] = v
		res.visible[s.Name] = visible

		o.logger.TraceContext(ctx, "symbol resolved",
			slog.String("symbol", s.Name),
			slog.String("value", v.String()),
			slog.Bool("visible", visible),
		)
	}

	o.logger.DebugContext(ctx, "configuration resolved",
		slog.Int("symbols", len(res.values)),
		slog.Int("layers", len(layers)),
	)

	return res, nil
}

// override returns the value assigned to name by the last layer that
// assigns it.
func override(name string, layers []Layer) (value, layer string, ok bool) {
	for i := len(layers) - 1; i >= 0; i-- {
		if v, found := layers[i].Values[name]; found {
			return v, layers[i].Name, true
		}
	}

	return "", "", false
}

func lookup(env kconfig.Env, name string) kconfig.Value {
	v, _ := env[name].(kconfig.Value)

	return v
}

func resolveSymbol(
	s *kconfig.Symbol,
	env kconfig.Env,
	layers []Layer,
) (kconfig.Value, bool, error) {
	vis := s.Depends.Tri(env)
	if vis == kconfig.Off {
		return kconfig.Inert(s.Type), false, nil
	}

	text, layer, assigned := override(s.Name, layers)

	if s.Type.IsTristate() {
		t := kconfig.Off

		if assigned {
			v, err := kconfig.ParseValue(s.Type, text)
			if err != nil {
				return kconfig.Value{}, true, mismatch(s, text, layer).Wrap(err)
			}

			t = v.Tri
		} else {
			for _, d := range s.Defaults {
				if cond := d.Cond.Tri(env); cond > kconfig.Off {
					t = min(d.Value.Tri(env), cond)

					break
				}
			}
		}

		t = min(t, vis)
		if s.Type == kconfig.TypeBool && t == kconfig.Module {
			t = kconfig.On
		}

		return kconfig.Value{Type: s.Type, Tri: t}, true, nil
	}

	lo, hi, ranged := activeRange(s, env)

	if assigned {
		v, err := kconfig.ParseValue(s.Type, text)
		if err != nil {
			return kconfig.Value{}, true, mismatch(s, text, layer).Wrap(err)
		}

		if n, ok := v.Number(); ok && ranged && (n < lo || n > hi) {
			return kconfig.Value{}, true, mismatch(s, text, layer).With(
				slog.String("range", format(s.Type, lo)+".."+format(s.Type, hi)),
			)
		}

		return v, true, nil
	}

	text = ""

	for _, d := range s.Defaults {
		if d.Cond.Tri(env) == kconfig.Off {
			continue
		}

		text = d.Text
		if d.Ref != "" {
			text = lookup(env, d.Ref).Text
		}

		break
	}

	if text == "" {
		// An unset number with an active positive range starts at its low end.
		if ranged && lo > 0 {
			return kconfig.Value{Type: s.Type, Text: format(s.Type, lo)}, true, nil
		}

		return kconfig.Inert(s.Type), true, nil
	}

	v, err := kconfig.ParseValue(s.Type, text)
	if err != nil {
		return kconfig.Value{}, true, mismatch(s, text, "default").Wrap(err)
	}

	if n, ok := v.Number(); ok && ranged {
		switch {
		case n < lo:
			v.Text = format(s.Type, lo)
		case n > hi:
			v.Text = format(s.Type, hi)
		}
	}

	return v, true, nil
}

// activeRange returns the bounds of the first range of s whose condition
// holds. Bounds name a symbol or give a literal of the symbol's type.
func activeRange(s *kconfig.Symbol, env kconfig.Env) (lo, hi int64, ok bool) {
	bound := func(text string) (int64, bool) {
		if v, found := env[text].(kconfig.Value); found && !v.Type.IsTristate() {
			return v.Number()
		}

		v, err := kconfig.ParseValue(s.Type, text)
		if err != nil {
			return 0, false
		}

		return v.Number()
	}

	for _, r := range s.Ranges {
		if r.Cond.Tri(env) == kconfig.Off {
			continue
		}

		lo, lok := bound(r.Low)
		hi, hok := bound(r.High)

		return lo, hi, lok && hok
	}

	return 0, 0, false
}

func format(t kconfig.Type, n int64) string {
	if t == kconfig.TypeHex {
		return "0x" + strconv.FormatInt(n, 16)
	}

	return strconv.FormatInt(n, 10)
}

func mismatch(s *kconfig.Symbol, value, layer string) *pkg.Error {
	return ErrTypeMismatch.With(
		slog.String("symbol", s.Name),
		slog.String("type", s.Type.String()),
		slog.String("value", value),
		slog.String("layer", layer),
	)
}
