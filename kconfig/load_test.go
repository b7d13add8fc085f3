package kconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/ardnew/kconfgen/pkg"
)

const rootKconfig = `mainmenu "Demo Configuration"

config ARCH_ARM
	bool "ARM architecture"
	default y
	help
	  Select ARM.

	  Second paragraph.

menu "Drivers"

menuconfig GPIO
	bool "GPIO support"
	default y

config GPIO_PINS
	int "Pin count"
	depends on GPIO
	range 1 64
	default 32

if GPIO
config GPIO_IRQ
	bool "GPIO interrupts" if ARCH_ARM
endif

config UART
	tristate "UART"
	default m if GPIO

endmenu

config BOARD
	string "Board name"
	default "demo" # trailing comment

config BOARD_ALIAS
	string
	default BOARD

config FIRST
	bool
	default LATER

config LATER
	bool
	default y

rsource "drivers/Kconfig"
source "lib/*/Kconfig"
osource "missing/Kconfig"
`

const driversKconfig = `config UART
	tristate
	depends on ARCH_ARM
	help
	  Second location.
`

const crcKconfig = `config CRC
	def_bool GPIO && \
		ARCH_ARM
`

func demoFS() fstest.MapFS {
	return fstest.MapFS{
		"Kconfig":         {Data: []byte(rootKconfig)},
		"drivers/Kconfig": {Data: []byte(driversKconfig)},
		"lib/crc/Kconfig": {Data: []byte(crcKconfig)},
	}
}

func mustLoad(t *testing.T, fsys fstest.MapFS) *Tree {
	t.Helper()

	tree, err := LoadFS(context.Background(), fsys, "Kconfig")
	if err != nil {
		t.Fatalf("LoadFS() error: %v", err)
	}

	return tree
}

func mustLookup(t *testing.T, tree *Tree, name string) *Symbol {
	t.Helper()

	s, ok := tree.Lookup(name)
	if !ok {
		t.Fatalf("symbol %s not found", name)
	}

	return s
}

func TestLoadFS_Symbols(t *testing.T) {
	tree := mustLoad(t, demoFS())

	if tree.Title != "Demo Configuration" {
		t.Errorf("Title = %q", tree.Title)
	}

	want := []string{
		"ARCH_ARM", "GPIO", "GPIO_PINS", "GPIO_IRQ", "UART",
		"BOARD", "BOARD_ALIAS", "FIRST", "LATER", "CRC",
	}
	if got := tree.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	tests := []struct {
		name    string
		typ     Type
		prompt  string
		depends string
	}{
		{"ARCH_ARM", TypeBool, "ARM architecture", "y"},
		{"GPIO_PINS", TypeInt, "Pin count", "GPIO"},
		{"GPIO_IRQ", TypeBool, "GPIO interrupts", "(GPIO) && (ARCH_ARM)"},
		{"UART", TypeTristate, "UART", "y"},
		{"BOARD_ALIAS", TypeString, "", "y"},
		{"CRC", TypeBool, "", "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustLookup(t, tree, tt.name)

			if s.Type != tt.typ {
				t.Errorf("Type = %v, want %v", s.Type, tt.typ)
			}

			if s.Prompt() != tt.prompt {
				t.Errorf("Prompt() = %q, want %q", s.Prompt(), tt.prompt)
			}

			if s.Depends.String() != tt.depends {
				t.Errorf("Depends = %q, want %q", s.Depends.String(), tt.depends)
			}
		})
	}
}

func TestLoadFS_Properties(t *testing.T) {
	tree := mustLoad(t, demoFS())

	arch := mustLookup(t, tree, "ARCH_ARM")
	if want := "Select ARM.\n\nSecond paragraph."; arch.Help() != want {
		t.Errorf("ARCH_ARM help = %q, want %q", arch.Help(), want)
	}

	if got := arch.HelpLines(); !slices.Equal(got, []string{"Select ARM.", "Second paragraph."}) {
		t.Errorf("ARCH_ARM help lines = %q", got)
	}

	pins := mustLookup(t, tree, "GPIO_PINS")
	if len(pins.Ranges) != 1 || pins.Ranges[0].Low != "1" || pins.Ranges[0].High != "64" {
		t.Fatalf("GPIO_PINS ranges = %+v", pins.Ranges)
	}

	if pins.Ranges[0].Cond.String() != "GPIO" {
		t.Errorf("GPIO_PINS range cond = %q", pins.Ranges[0].Cond.String())
	}

	if len(pins.Defaults) != 1 || pins.Defaults[0].Text != "32" || pins.Defaults[0].Cond.String() != "GPIO" {
		t.Errorf("GPIO_PINS defaults = %+v", pins.Defaults)
	}

	uart := mustLookup(t, tree, "UART")
	if len(uart.Locations) != 2 {
		t.Fatalf("UART locations = %d, want 2", len(uart.Locations))
	}

	if uart.Locations[1].File != "drivers/Kconfig" || uart.Locations[1].Line != 1 {
		t.Errorf("UART second location = %+v", uart.Locations[1])
	}

	if uart.Help() != "Second location." {
		t.Errorf("UART help = %q", uart.Help())
	}

	board := mustLookup(t, tree, "BOARD")
	if board.Defaults[0].Text != "demo" || board.Defaults[0].Ref != "" {
		t.Errorf("BOARD default = %+v", board.Defaults[0])
	}

	alias := mustLookup(t, tree, "BOARD_ALIAS")
	if alias.Defaults[0].Ref != "BOARD" {
		t.Errorf("BOARD_ALIAS default = %+v", alias.Defaults[0])
	}

	crc := mustLookup(t, tree, "CRC")
	if len(crc.Defaults) != 1 || !slices.Equal(crc.Defaults[0].Value.Refs(), []string{"GPIO", "ARCH_ARM"}) {
		t.Errorf("CRC defaults = %+v", crc.Defaults)
	}

	if got := tree.Files(); !slices.Equal(got, []string{"Kconfig", "drivers/Kconfig", "lib/crc/Kconfig"}) {
		t.Errorf("Files() = %v", got)
	}
}

func TestTree_MenuPath(t *testing.T) {
	tree := mustLoad(t, demoFS())

	tests := []struct {
		name string
		want string
	}{
		{"ARCH_ARM", Ungrouped},
		{"GPIO", "Drivers"},
		{"GPIO_PINS", "Drivers/GPIO support"},
		{"GPIO_IRQ", "Drivers/GPIO support"},
		{"UART", "Drivers"},
		{"BOARD", Ungrouped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustLookup(t, tree, tt.name)
			if got := tree.MenuPath(s.Locations[0]); got != tt.want {
				t.Errorf("MenuPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTree_Ordered(t *testing.T) {
	tree := mustLoad(t, demoFS())

	pos := map[string]int{}
	i := 0

	for s := range tree.Ordered() {
		pos[s.Name] = i
		i++
	}

	if i != len(tree.Symbols) {
		t.Fatalf("Ordered() yielded %d symbols, want %d", i, len(tree.Symbols))
	}

	for _, s := range tree.Symbols {
		for _, ref := range tree.references(s) {
			if pos[ref] > pos[s.Name] {
				t.Errorf("%s ordered before its dependency %s", s.Name, ref)
			}
		}
	}

	if pos["LATER"] > pos["FIRST"] {
		t.Error("LATER must precede FIRST")
	}
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"type redefinition", "config A\n\tbool\nconfig A\n\tint\n", ErrLoad},
		{"select unsupported", "config A\n\tbool\n\tselect B\nconfig B\n\tbool\n", ErrLoad},
		{"choice unsupported", "choice\n\tbool \"pick\"\nendchoice\n", ErrLoad},
		{"unterminated menu", "menu \"X\"\nconfig A\n\tbool\n", ErrLoad},
		{"stray endmenu", "endmenu\n", ErrLoad},
		{"stray endif", "menu \"X\"\nendif\n", ErrLoad},
		{"missing type", "config A\n\tprompt \"A\"\n", ErrLoad},
		{"unquoted prompt", "config A\n\tbool A\n", ErrLoad},
		{"help outside entry", "help\n  text\n", ErrLoad},
		{"range on bool", "config A\n\tbool\n\trange 1 2\n", ErrLoad},
		{"missing source", "source \"nope/Kconfig\"\n", ErrLoad},
		{"recursive source", "source \"Kconfig\"\n", ErrLoad},
		{"bad expression", "config A\n\tbool\n\tdepends on B +\nconfig B\n\tbool\n", ErrLoad},
		{"undefined reference", "config A\n\tbool\n\tdepends on NOPE\n", ErrUnresolvedDependency},
		{"cycle", "config A\n\tbool\n\tdefault B\nconfig B\n\tbool\n\tdefault A\n", ErrUnresolvedDependency},
		{"self cycle", "config A\n\tint\n\tdefault 1\n\trange 0 A\n", ErrUnresolvedDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"Kconfig": {Data: []byte(tt.source)}}

			_, err := LoadFS(context.Background(), fsys, "Kconfig")
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadFS() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFS_CycleChain(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"three symbols",
			"config A\n\tbool\n\tdepends on B\nconfig B\n\tbool\n\tdefault C\nconfig C\n\tbool\n\tdefault A\n",
			"A -> B -> C -> A",
		},
		{
			"after acyclic symbols",
			"config X\n\tbool\nconfig A\n\tbool\n\tdepends on X && B\nconfig B\n\tbool\n\tdepends on A\n",
			"A -> B -> A",
		},
		{
			"inner loop",
			"config A\n\tbool\n\tdepends on B\nconfig B\n\tbool\n\tdepends on C\n" +
				"config C\n\tbool\n\tdepends on B && A\n",
			"B -> C -> B",
		},
		{"self", "config A\n\tint\n\tdefault 1\n\trange 0 A\n", "A -> A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"Kconfig": {Data: []byte(tt.source)}}

			_, err := LoadFS(context.Background(), fsys, "Kconfig")
			if !errors.Is(err, ErrUnresolvedDependency) {
				t.Fatalf("LoadFS() error = %v", err)
			}

			var e *pkg.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not a *pkg.Error", err)
			}

			cycle, ok := e.Attr("cycle")
			if !ok || cycle.String() != tt.want {
				t.Errorf("cycle = %v, %v; want %q", cycle, ok, tt.want)
			}
		})
	}
}

func TestLoadFS_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := LoadFS(ctx, demoFS(), "Kconfig"); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadFS() error = %v, want context.Canceled", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	for name, f := range demoFS() {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	root := filepath.Join(dir, "Kconfig")

	tree, err := Load(context.Background(), root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if tree.Root != root {
		t.Errorf("Root = %q, want %q", tree.Root, root)
	}

	crc := mustLookup(t, tree, "CRC")
	if crc.Locations[0].File != "lib/crc/Kconfig" {
		t.Errorf("CRC file = %q", crc.Locations[0].File)
	}
}
