package resolve

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/pkg"
)

const testKconfig = `mainmenu "Test"

config ARCH_ARM
	bool "ARM"
	default y

menu "Drivers"
	depends on ARCH_ARM

menuconfig GPIO
	bool "GPIO"
	default y

config GPIO_PINS
	int "Pins"
	depends on GPIO
	range 1 64
	default 128

config GPIO_BASE
	hex "Base"
	depends on GPIO
	default 2a

endmenu

config UART
	tristate "UART"
	default m

config UART_DMA
	bool "DMA"
	depends on UART

config NAME
	string "Name"
	default "a \"quoted\" name"

config ALIAS
	string
	default NAME

config BUF
	int "Buffer"
	range 16 256 if UART = y

config HIDDEN
	bool "Hidden"
	depends on !ARCH_ARM
	default y
`

var quiet = WithLogger(log.Make(io.Discard))

func loadTree(t *testing.T) *kconfig.Tree {
	t.Helper()

	fsys := fstest.MapFS{"Kconfig": {Data: []byte(testKconfig)}}

	tree, err := kconfig.LoadFS(context.Background(), fsys, "Kconfig",
		kconfig.WithLogger(log.Make(io.Discard)))
	if err != nil {
		t.Fatalf("LoadFS() error: %v", err)
	}

	return tree
}

func mustResolve(t *testing.T, tree *kconfig.Tree, layers ...Layer) *Resolution {
	t.Helper()

	res, err := Resolve(context.Background(), tree, layers, quiet)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	return res
}

type want struct {
	value   string
	visible bool
}

func checkValues(t *testing.T, res *Resolution, wants map[string]want) {
	t.Helper()

	for name, w := range wants {
		v, ok := res.Value(name)
		if !ok {
			t.Errorf("%s: no value", name)

			continue
		}

		if v.String() != w.value || res.Visible(name) != w.visible {
			t.Errorf("%s = %q (visible %v), want %q (visible %v)",
				name, v.String(), res.Visible(name), w.value, w.visible)
		}
	}
}

func TestResolve_Defaults(t *testing.T) {
	res := mustResolve(t, loadTree(t))

	checkValues(t, res, map[string]want{
		"ARCH_ARM":  {"y", true},
		"GPIO":      {"y", true},
		"GPIO_PINS": {"64", true},
		"GPIO_BASE": {"2a", true},
		"UART":      {"m", true},
		"UART_DMA":  {"n", true},
		"NAME":      {`a "quoted" name`, true},
		"ALIAS":     {`a "quoted" name`, true},
		"BUF":       {"", true},
		"HIDDEN":    {"n", false},
	})
}

func TestResolve_Layers(t *testing.T) {
	base := Layer{Name: "base", Values: map[string]string{
		"UART":      "y",
		"GPIO_PINS": "8",
		"HIDDEN":    "y",
		"BOGUS":     "1",
	}}
	top := Layer{Name: "top", Values: map[string]string{
		"GPIO_PINS": "16",
		"UART_DMA":  "y",
		"NAME":      "",
	}}

	res := mustResolve(t, loadTree(t), base, top)

	checkValues(t, res, map[string]want{
		"UART":      {"y", true},
		"GPIO_PINS": {"16", true},
		"HIDDEN":    {"n", false},
		"UART_DMA":  {"y", true},
		"NAME":      {"", true},
		"ALIAS":     {"", true},
		"BUF":       {"16", true},
	})

	if _, ok := res.Value("BOGUS"); ok {
		t.Error("unknown layer symbol was resolved")
	}
}

func TestResolve_VisibilityGating(t *testing.T) {
	tree := loadTree(t)

	tests := []struct {
		name  string
		layer map[string]string
		wants map[string]want
	}{
		{
			name:  "menuconfig off hides children",
			layer: map[string]string{"GPIO": "n", "GPIO_PINS": "12"},
			wants: map[string]want{
				"GPIO":      {"n", true},
				"GPIO_PINS": {"", false},
				"GPIO_BASE": {"", false},
			},
		},
		{
			name:  "menu dependency hides block",
			layer: map[string]string{"ARCH_ARM": "n", "GPIO": "y"},
			wants: map[string]want{
				"GPIO":   {"n", false},
				"HIDDEN": {"y", true},
			},
		},
		{
			name:  "tristate capped by dependency",
			layer: map[string]string{"UART": "m", "UART_DMA": "y"},
			wants: map[string]want{"UART_DMA": {"y", true}},
		},
		{
			name:  "tristate off hides dependent",
			layer: map[string]string{"UART": "n", "UART_DMA": "y"},
			wants: map[string]want{"UART_DMA": {"n", false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustResolve(t, tree, Layer{Name: "test", Values: tt.layer})
			checkValues(t, res, tt.wants)
		})
	}
}

func TestResolve_TypeMismatch(t *testing.T) {
	tree := loadTree(t)

	tests := []struct {
		name  string
		layer map[string]string
	}{
		{"module for bool", map[string]string{"GPIO": "m"}},
		{"word for tristate", map[string]string{"UART": "yes"}},
		{"malformed int", map[string]string{"GPIO_PINS": "twelve"}},
		{"int above range", map[string]string{"GPIO_PINS": "65"}},
		{"int below range", map[string]string{"GPIO_PINS": "0"}},
		{"malformed hex", map[string]string{"GPIO_BASE": "0xZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), tree,
				[]Layer{{Name: "bad.config", Values: tt.layer}}, quiet)
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("Resolve() error = %v, want ErrTypeMismatch", err)
			}

			var e *pkg.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not a *pkg.Error", err)
			}

			if layer, ok := e.Attr("layer"); !ok || layer.String() != "bad.config" {
				t.Errorf("layer attribute = %v, %v", layer, ok)
			}
		})
	}
}

func TestResolve_InvisibleIgnoresInvalid(t *testing.T) {
	res := mustResolve(t, loadTree(t), Layer{Name: "l", Values: map[string]string{"HIDDEN": "bogus"}})

	checkValues(t, res, map[string]want{"HIDDEN": {"n", false}})
}

func TestResolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Resolve(ctx, loadTree(t), nil, quiet); !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestFormatConfig(t *testing.T) {
	got := string(FormatConfig(mustResolve(t, loadTree(t)), DefaultPrefix))

	want := `#
# Automatically generated file; DO NOT EDIT.
# Test
#
CONFIG_ARCH_ARM=y

#
# Drivers
#
CONFIG_GPIO=y

#
# Drivers/GPIO
#
CONFIG_GPIO_PINS=64
CONFIG_GPIO_BASE=2a

CONFIG_UART=m
# CONFIG_UART_DMA is not set
CONFIG_NAME="a \"quoted\" name"
CONFIG_ALIAS="a \"quoted\" name"
`

	if got != want {
		t.Errorf("FormatConfig() =\n%s\nwant\n%s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	tree := loadTree(t)

	tests := []struct {
		name   string
		layers []Layer
	}{
		{"defaults", nil},
		{"overrides", []Layer{{Name: "l", Values: map[string]string{
			"UART": "y", "GPIO_BASE": "0X1F", "NAME": `back\slash`, "BUF": "100",
		}}}},
		{"disabled", []Layer{{Name: "l", Values: map[string]string{
			"GPIO": "n", "UART": "n",
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := mustResolve(t, tree, tt.layers...)

			for _, prefix := range []string{DefaultPrefix, "KC_", ""} {
				data := FormatConfig(first, prefix)

				layer, err := ReadLayer(bytes.NewReader(data), ".config", prefix, quiet)
				if err != nil {
					t.Fatalf("ReadLayer() error: %v", err)
				}

				second := mustResolve(t, tree, layer)

				for _, s := range tree.Symbols {
					a, _ := first.Value(s.Name)
					b, _ := second.Value(s.Name)

					if a != b || first.Visible(s.Name) != second.Visible(s.Name) {
						t.Errorf("prefix %q: %s = %+v after reload, want %+v", prefix, s.Name, b, a)
					}
				}

				if again := FormatConfig(second, prefix); !bytes.Equal(again, data) {
					t.Errorf("prefix %q: persisted configuration changed on reload", prefix)
				}
			}
		})
	}
}
