package artifact

import (
	"context"
	"io"
	"testing"
	"testing/fstest"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/resolve"
)

var firmwareFS = fstest.MapFS{
	"Kconfig": {Data: []byte(`mainmenu "Firmware"

config DEBUG
	bool "Debug build"
	default y
	help
	  Enable debug output.

	  Adds logging.

config VERSION_STRING
	string "Version"
	default "1.0 \"beta\""

rsource "src/boards/Kconfig"
rsource "src/drivers/gpio/Kconfig"
rsource "src/application/Kconfig"
rsource "tools/Kconfig"
`)},
	"src/boards/Kconfig": {Data: []byte(`menu "Board"

config BOARD_HAS_LED1
	bool "LED1"
	default y

config BOARD_HAS_LED2
	bool "LED2"
	default y

config BOARD_HAS_LED3
	bool "LED3"

config BOARD_CLOCK
	hex "Clock base"
	default 2a

endmenu
`)},
	"src/drivers/gpio/Kconfig": {Data: []byte(`menuconfig GPIO
	tristate "GPIO"
	default m

config GPIO_PINS
	int "Pins"
	depends on GPIO
	default 32

config SHARED
	bool "Shared"
	default y
`)},
	"src/application/Kconfig": {Data: []byte(`config APP_NAME
	string "App"
	default "demo"

config SHARED
	bool
`)},
	"tools/Kconfig": {Data: []byte(`config TOOL
	bool "Tool"
	default y
`)},
}

var quiet = log.Make(io.Discard)

func firmware(t *testing.T, layers ...resolve.Layer) *resolve.Resolution {
	t.Helper()

	ctx := context.Background()

	tree, err := kconfig.LoadFS(ctx, firmwareFS, "Kconfig", kconfig.WithLogger(quiet))
	if err != nil {
		t.Fatalf("LoadFS() error: %v", err)
	}

	res, err := resolve.Resolve(ctx, tree, layers, resolve.WithLogger(quiet))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	return res
}

func mustPlan(t *testing.T, res *resolve.Resolution, c Classifier) []Artifact {
	t.Helper()

	plan, err := Plan(res, c)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	return plan
}

func planned(t *testing.T, plan []Artifact, id string) Artifact {
	t.Helper()

	for _, a := range plan {
		if a.Spec.ID == id {
			return a
		}
	}

	t.Fatalf("artifact %s not planned", id)

	return Artifact{}
}

func layer(values map[string]string) resolve.Layer {
	return resolve.Layer{Name: "test", Values: values}
}
