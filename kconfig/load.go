package kconfig

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/pkg"
)

// Option configures [Load] and [LoadFS].
type Option func(*loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l log.Logger) Option {
	return func(ld *loader) { ld.logger = l }
}

// Load reads the Kconfig tree rooted at the file path.
//
// Locations in the returned tree are relative to the directory containing
// path, so the root file itself is recorded as its base name.
func Load(ctx context.Context, path string, opts ...Option) (*Tree, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	t, err := LoadFS(ctx, os.DirFS(dir), name, opts...)
	if err != nil {
		return nil, err
	}

	t.Root = path

	return t, nil
}

// LoadFS reads the Kconfig tree rooted at the file name within fsys.
func LoadFS(ctx context.Context, fsys fs.FS, name string, opts ...Option) (*Tree, error) {
	ld := &loader{
		fsys:   fsys,
		base:   path.Dir(name),
		logger: log.Default(),
		drafts: map[string]*draft{},
		active: map[string]bool{},
		tree:   &Tree{Root: name, byName: map[string]*Symbol{}},
	}

	for _, opt := range opts {
		opt(ld)
	}

	ld.blocks = []*block{{kind: blockRoot, node: -1}}

	if err := ld.parseFile(ctx, name, true); err != nil {
		return nil, err
	}

	if err := ld.finish(); err != nil {
		return nil, err
	}

	ld.logger.DebugContext(ctx, "kconfig loaded",
		slog.String("root", name),
		slog.Int("symbols", len(ld.tree.Symbols)),
		slog.Int("menus", len(ld.tree.Menus)),
	)

	return ld.tree, nil
}

type blockKind int

const (
	blockRoot blockKind = iota
	blockMenu
	blockIf
)

// block is an open menu or if block. The root block holds top-level
// entries.
type block struct {
	cond string
	// auto holds the entries that may still adopt following entries as
	// children, innermost last. Only root and menu blocks use it.
	auto []*entry
	kind blockKind
	node int
	line int
}

type entryKind int

const (
	entryConfig entryKind = iota
	entryMenu
	entryComment
)

// entry is the entry whose attributes are currently being read.
type entry struct {
	sym        *draft
	level      *block
	opens      *block
	file       string
	blockConds []string
	depends    []string
	kind       entryKind
	line       int
	loc        int
	node       int
}

type rawDefault struct {
	value, cond, locDep string
}

type rawRange struct {
	low, high, cond, locDep string
	line                    int
}

// draft accumulates all declarations of one symbol.
type draft struct {
	sym      *Symbol
	vis      []string
	defaults []rawDefault
	ranges   []rawRange
}

type loader struct {
	fsys   fs.FS
	logger log.Logger
	tree   *Tree
	drafts map[string]*draft
	active map[string]bool
	entry  *entry
	base   string
	blocks []*block
}

func (ld *loader) fail(file string, line int, msg string) error {
	return ErrLoad.With(
		slog.String("file", file),
		slog.Int("line", line),
		slog.String("reason", msg),
	)
}

// rel returns name relative to the directory of the root file.
func (ld *loader) rel(name string) string {
	if ld.base == "." {
		return name
	}

	return strings.TrimPrefix(name, ld.base+"/")
}

func (ld *loader) parseFile(ctx context.Context, name string, required bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ld.active[name] {
		return ErrLoad.With(slog.String("file", ld.rel(name)),
			slog.String("reason", "recursive source"))
	}

	data, err := fs.ReadFile(ld.fsys, name)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return ErrLoad.With(slog.String("file", ld.rel(name))).Wrap(err)
	}

	ld.active[name] = true
	defer delete(ld.active, name)

	ld.logger.TraceContext(ctx, "kconfig parse", slog.String("file", ld.rel(name)))

	depth := len(ld.blocks)

	var lines []string

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}

	if err := sc.Err(); err != nil {
		return ErrLoad.With(slog.String("file", ld.rel(name))).Wrap(err)
	}

	file := ld.rel(name)

	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		text := lines[i]

		for strings.HasSuffix(text, "\\") && i+1 < len(lines) {
			i++
			text = strings.TrimSuffix(text, "\\") + " " + lines[i]
		}

		stmt := strings.TrimSpace(stripComment(text))
		if stmt == "" {
			continue
		}

		keyword, rest, _ := strings.Cut(stmt, " ")
		if k, r, ok := strings.Cut(stmt, "\t"); ok && len(k) < len(keyword) {
			keyword, rest = k, r
		}

		rest = strings.TrimSpace(rest)

		if keyword == "help" || keyword == "---help---" {
			if ld.entry == nil || ld.entry.kind != entryConfig {
				return ld.fail(file, lineNo, "help outside of config entry")
			}

			help, consumed := readHelp(lines[i+1:])
			i += consumed
			ld.entry.sym.sym.Locations[ld.entry.loc].Help = help

			continue
		}

		if err := ld.statement(ctx, name, file, lineNo, keyword, rest); err != nil {
			return err
		}
	}

	ld.closeEntry()

	if len(ld.blocks) != depth {
		top := ld.blocks[len(ld.blocks)-1]

		return ld.fail(file, top.line, "unterminated block")
	}

	return nil
}

// readHelp collects a help block: the lines indented at least as far as the
// first non-blank line. It returns the text and the number of lines used.
func readHelp(lines []string) (string, int) {
	indent := -1

	var (
		text []string
		used int
	)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			text = append(text, "")
			used++

			continue
		}

		w := indentWidth(line)
		if indent < 0 {
			if w == 0 {
				break
			}

			indent = w
		}

		if w < indent {
			break
		}

		text = append(text, strings.TrimRight(dropIndent(line, indent), " \t"))
		used++
	}

	// Trailing blank lines belong to whatever follows.
	for len(text) > 0 && text[len(text)-1] == "" {
		text = text[:len(text)-1]
		used--
	}

	return strings.Join(text, "\n"), used
}

func (ld *loader) statement(
	ctx context.Context,
	name, file string,
	line int,
	keyword, rest string,
) error {
	switch keyword {
	case "config", "menuconfig":
		ld.closeEntry()

		return ld.openConfig(file, line, rest, keyword == "menuconfig")

	case "menu":
		ld.closeEntry()

		prompt, _, ok := unquote(rest)
		if !ok {
			return ld.fail(file, line, "menu requires a quoted prompt")
		}

		ld.openMenu(file, line, prompt)

		return nil

	case "endmenu":
		ld.closeEntry()

		return ld.closeBlock(file, line, blockMenu, keyword)

	case "if":
		ld.closeEntry()

		if rest == "" {
			return ld.fail(file, line, "if requires a condition")
		}

		ld.blocks = append(ld.blocks, &block{kind: blockIf, cond: rest, line: line, node: ld.current().node})

		return nil

	case "endif":
		ld.closeEntry()

		return ld.closeBlock(file, line, blockIf, keyword)

	case "comment":
		ld.closeEntry()

		if _, _, ok := unquote(rest); !ok {
			return ld.fail(file, line, "comment requires a quoted prompt")
		}

		ld.entry = &entry{kind: entryComment, file: file, line: line, level: ld.level(), blockConds: ld.conds()}

		return nil

	case "mainmenu":
		ld.closeEntry()

		title, _, ok := unquote(rest)
		if !ok {
			return ld.fail(file, line, "mainmenu requires a quoted prompt")
		}

		ld.tree.Title = title

		return nil

	case "source", "rsource", "osource", "orsource":
		ld.closeEntry()

		return ld.source(ctx, name, file, line, keyword, rest)
	}

	if ld.entry == nil {
		return ld.fail(file, line, "unsupported statement: "+keyword)
	}

	return ld.attribute(file, line, keyword, rest)
}

func (ld *loader) source(
	ctx context.Context,
	name, file string,
	line int,
	keyword, rest string,
) error {
	target, _, ok := unquote(rest)
	if !ok {
		return ld.fail(file, line, keyword+" requires a quoted path")
	}

	relative := strings.HasPrefix(keyword, "r") || strings.HasPrefix(keyword, "or")
	optional := strings.HasPrefix(keyword, "o")

	dir := ld.base
	if relative {
		dir = path.Dir(name)
	}

	target = path.Clean(path.Join(dir, target))

	if !strings.ContainsAny(target, "*?[{") {
		return ld.parseFile(ctx, target, !optional)
	}

	matches, err := doublestar.Glob(ld.fsys, target)
	if err != nil {
		return ld.fail(file, line, "invalid source pattern: "+err.Error())
	}

	if len(matches) == 0 && !optional {
		return ld.fail(file, line, "no files match "+target)
	}

	for _, m := range matches {
		if err := ld.parseFile(ctx, m, true); err != nil {
			return err
		}
	}

	return nil
}

func (ld *loader) current() *block { return ld.blocks[len(ld.blocks)-1] }

// level returns the innermost root or menu block, the block whose children
// are siblings for auto-menu purposes.
func (ld *loader) level() *block {
	for i := len(ld.blocks) - 1; i >= 0; i-- {
		if ld.blocks[i].kind != blockIf {
			return ld.blocks[i]
		}
	}

	return ld.blocks[0]
}

// conds returns the conditions of all open blocks, outermost first.
func (ld *loader) conds() []string {
	var c []string

	for _, b := range ld.blocks {
		if b.cond != "" {
			c = append(c, b.cond)
		}
	}

	return c
}

func (ld *loader) closeBlock(file string, line int, kind blockKind, keyword string) error {
	top := ld.current()
	if top.kind != kind {
		return ld.fail(file, line, keyword+" without matching block")
	}

	ld.blocks = ld.blocks[:len(ld.blocks)-1]

	return nil
}

func (ld *loader) openMenu(file string, line int, prompt string) {
	node := len(ld.tree.Menus)
	ld.tree.Menus = append(ld.tree.Menus, MenuNode{Prompt: prompt, Parent: -1, Grouping: true})

	e := &entry{kind: entryMenu, file: file, line: line, node: node, level: ld.level(), blockConds: ld.conds()}
	e.opens = &block{kind: blockMenu, node: node, line: line}

	ld.blocks = append(ld.blocks, e.opens)
	ld.entry = e
}

func (ld *loader) openConfig(file string, line int, name string, grouping bool) error {
	if len(fields(name)) != 1 || strings.ContainsAny(name, "\"'()=!&|<>") {
		return ld.fail(file, line, "invalid symbol name: "+name)
	}

	d, ok := ld.drafts[name]
	if !ok {
		d = &draft{sym: &Symbol{Name: name, index: len(ld.tree.Symbols)}}
		ld.drafts[name] = d
		ld.tree.Symbols = append(ld.tree.Symbols, d.sym)
		ld.tree.byName[name] = d.sym
	}

	node := len(ld.tree.Menus)
	ld.tree.Menus = append(ld.tree.Menus, MenuNode{Symbol: name, Parent: -1, Grouping: grouping})

	d.sym.Locations = append(d.sym.Locations, Location{File: file, Line: line, Node: node})
	d.vis = append(d.vis, "")

	ld.entry = &entry{
		kind:       entryConfig,
		sym:        d,
		loc:        len(d.sym.Locations) - 1,
		file:       file,
		line:       line,
		node:       node,
		level:      ld.level(),
		blockConds: ld.conds(),
	}

	return nil
}

// closeEntry finalizes the open entry: it computes the location's
// dependencies, attaches the entry to its menu parent, and records the
// entry as a possible auto-menu parent for the entries that follow.
func (ld *loader) closeEntry() {
	e := ld.entry
	if e == nil {
		return
	}

	ld.entry = nil

	conds := append(append([]string(nil), e.blockConds...), e.depends...)
	level := e.level

	var name string
	if e.kind == entryConfig {
		name = e.sym.sym.Name
	}

	for len(level.auto) > 0 {
		top := level.auto[len(level.auto)-1]
		if top.sym.sym.Name != name && dependsOnSymbol(conds, top.sym.sym.Name) {
			break
		}

		level.auto = level.auto[:len(level.auto)-1]
	}

	parent := level.node
	if len(level.auto) > 0 {
		parent = level.auto[len(level.auto)-1].node
	}

	switch e.kind {
	case entryMenu:
		ld.tree.Menus[e.node].Parent = parent
		e.opens.cond = joinAnd(e.depends)

	case entryConfig:
		ld.tree.Menus[e.node].Parent = parent

		loc := &e.sym.sym.Locations[e.loc]
		ld.tree.Menus[e.node].Prompt = loc.Prompt

		locDep := joinAnd(conds)
		for i := range e.sym.defaults {
			if e.sym.defaults[i].locDep == pendingDep {
				e.sym.defaults[i].locDep = locDep
			}
		}

		for i := range e.sym.ranges {
			if e.sym.ranges[i].locDep == pendingDep {
				e.sym.ranges[i].locDep = locDep
			}
		}

		e.sym.vis[e.loc] = andSource(locDep, e.sym.vis[e.loc])

		level.auto = append(level.auto, e)
	}
}

// pendingDep marks defaults and ranges whose location dependencies are not
// known until the entry closes.
const pendingDep = "\x00"

func joinAnd(conds []string) string {
	s := ""
	for _, c := range conds {
		s = andSource(s, c)
	}

	return s
}

func (ld *loader) attribute(file string, line int, keyword, rest string) error {
	e := ld.entry

	switch keyword {
	case "depends":
		cond, ok := strings.CutPrefix(rest, "on")
		if !ok || strings.TrimSpace(cond) == "" {
			return ld.fail(file, line, "expected: depends on <expr>")
		}

		e.depends = append(e.depends, strings.TrimSpace(cond))

		return nil

	case "visible", "select", "imply", "option", "modules", "optional", "transitional", "choice", "endchoice":
		return ld.fail(file, line, "unsupported attribute: "+keyword)
	}

	if e.kind != entryConfig {
		return ld.fail(file, line, keyword+" is only valid in config entries")
	}

	d := e.sym

	switch keyword {
	case "bool", "tristate", "string", "int", "hex":
		typ, _ := ParseType(keyword)
		if err := ld.setType(d, typ, file, line); err != nil {
			return err
		}

		if rest != "" {
			return ld.prompt(e, file, line, rest)
		}

	case "def_bool", "def_tristate":
		typ, _ := ParseType(strings.TrimPrefix(keyword, "def_"))
		if err := ld.setType(d, typ, file, line); err != nil {
			return err
		}

		return ld.addDefault(d, file, line, rest)

	case "prompt":
		return ld.prompt(e, file, line, rest)

	case "default":
		return ld.addDefault(d, file, line, rest)

	case "range":
		head, cond := splitIf(rest)

		bounds := fields(head)
		if len(bounds) != 2 {
			return ld.fail(file, line, "expected: range <low> <high> [if <expr>]")
		}

		d.ranges = append(d.ranges, rawRange{
			low: bounds[0], high: bounds[1], cond: cond,
			locDep: pendingDep, line: line,
		})

	default:
		return ld.fail(file, line, "unsupported attribute: "+keyword)
	}

	return nil
}

func (ld *loader) setType(d *draft, typ Type, file string, line int) error {
	switch d.sym.Type {
	case TypeUnknown:
		d.sym.Type = typ
	case typ:
	default:
		return ErrLoad.With(
			slog.String("file", file),
			slog.Int("line", line),
			slog.String("symbol", d.sym.Name),
			slog.String("type", d.sym.Type.String()),
			slog.String("redefined", typ.String()),
		)
	}

	return nil
}

func (ld *loader) prompt(e *entry, file string, line int, rest string) error {
	text, tail, ok := unquote(rest)
	if !ok {
		return ld.fail(file, line, "prompt must be quoted")
	}

	loc := &e.sym.sym.Locations[e.loc]
	loc.Prompt = text

	if tail == "" {
		return nil
	}

	cond, ok := strings.CutPrefix(tail, "if")
	if !ok || strings.TrimSpace(cond) == "" {
		return ld.fail(file, line, "unexpected text after prompt: "+tail)
	}

	e.sym.vis[e.loc] = andSource(e.sym.vis[e.loc], strings.TrimSpace(cond))

	return nil
}

func (ld *loader) addDefault(d *draft, file string, line int, rest string) error {
	value, cond := splitIf(rest)
	if value == "" {
		return ld.fail(file, line, "default requires a value")
	}

	d.defaults = append(d.defaults, rawDefault{
		value: value, cond: cond, locDep: pendingDep,
	})

	return nil
}

// finish compiles every expression and computes the dependency order.
func (ld *loader) finish() error {
	env := make(map[string]any, len(ld.tree.Symbols)+len(constants))
	for k, v := range NewEnv() {
		env[k] = v
	}

	for _, s := range ld.tree.Symbols {
		env[s.Name] = Inert(s.Type)
	}

	compile := func(src string, s *Symbol) (*Expr, error) {
		if src == "" {
			return nil, nil
		}

		x, err := compileExpr(src, env)
		if err != nil {
			loc := s.Locations[0]

			return nil, pkg.WrapError(err).With(
				slog.String("symbol", s.Name),
				slog.String("file", loc.File),
				slog.Int("line", loc.Line),
			)
		}

		return x, nil
	}

	for _, s := range ld.tree.Symbols {
		d := ld.drafts[s.Name]

		if s.Type == TypeUnknown {
			loc := s.Locations[0]

			return ld.fail(loc.File, loc.Line, "symbol "+s.Name+" has no type")
		}

		vis := d.vis[0]
		for _, v := range d.vis[1:] {
			vis = orSource(vis, v)
		}

		var err error

		if s.Depends, err = compile(vis, s); err != nil {
			return err
		}

		for _, rd := range d.defaults {
			def := Default{}

			if def.Cond, err = compile(andSource(rd.locDep, rd.cond), s); err != nil {
				return err
			}

			if s.Type.IsTristate() {
				if def.Value, err = compile(rd.value, s); err != nil {
					return err
				}
			} else if text, _, ok := unquote(rd.value); ok {
				def.Text = text
			} else if _, ok := ld.tree.byName[rd.value]; ok {
				def.Ref = rd.value
			} else {
				def.Text = rd.value
			}

			s.Defaults = append(s.Defaults, def)
		}

		for _, rr := range d.ranges {
			if s.Type != TypeInt && s.Type != TypeHex {
				return ld.fail(s.Locations[0].File, rr.line, "range on non-numeric symbol "+s.Name)
			}

			r := Range{Low: rr.low, High: rr.high}

			if r.Cond, err = compile(andSource(rr.locDep, rr.cond), s); err != nil {
				return err
			}

			s.Ranges = append(s.Ranges, r)
		}
	}

	return ld.tree.sortDependencies()
}
