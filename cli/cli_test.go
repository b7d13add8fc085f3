package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "kconfgen-cli-test-*")
	if err != nil {
		panic(err)
	}

	// configDir and cacheDir are computed once per process.
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	code := m.Run()

	os.RemoveAll(home)
	os.Exit(code)
}

const testKconfig = `mainmenu "CLI Test"

config DEBUG
	bool "Debug output"

menu "Drivers"

config UART_BAUD
	int "UART baud rate"
	default 115200

endmenu
`

func run(t *testing.T, args ...string) error {
	t.Helper()

	args = append([]string{"--log-level=error"}, args...)

	return Run(context.Background(), func(code int) {
		t.Fatalf("exit(%d) running %q", code, args)
	}, args...)
}

func TestRun_Pipeline(t *testing.T) {
	dir := t.TempDir()
	kconfig := filepath.Join(dir, "Kconfig")
	defconfig := filepath.Join(dir, "defconfig")
	config := filepath.Join(dir, ".config")
	out := filepath.Join(dir, "build")

	if err := os.WriteFile(kconfig, []byte(testKconfig), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(defconfig, []byte("CONFIG_DEBUG=y\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "generate-config", kconfig, config, defconfig); err != nil {
		t.Fatalf("generate-config error = %v", err)
	}

	if err := run(t, "generate-headers", kconfig, config, out); err != nil {
		t.Fatalf("generate-headers error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "src", "boards", "include", "boards", "system_config.h"))
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"/* Auto-generated by kconfgen for System Configuration - DO NOT EDIT */\n",
		"#define CONFIG_DEBUG 1\n",
		"/* Drivers */\n#define CONFIG_UART_BAUD 115200\n",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("system_config.h missing %q:\n%s", want, data)
		}
	}

	if err := run(t, "generate-headers", kconfig, config+".missing", out); err == nil {
		t.Error("generate-headers with missing config succeeded")
	}
}

func TestRun_ConfigurationFile(t *testing.T) {
	dir := t.TempDir()
	kconfig := filepath.Join(dir, "Kconfig")
	config := filepath.Join(dir, ".config")

	if err := os.WriteFile(kconfig, []byte(testKconfig), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "--prefix=KC_", "init", "--force"); err != nil {
		t.Fatalf("init error = %v", err)
	}

	t.Cleanup(func() { os.Remove(configPath(baseConfig + ".json")) })

	data, err := os.ReadFile(configPath(baseConfig + ".json"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), `"prefix": "KC_"`) {
		t.Errorf("config.json:\n%s", data)
	}

	if err := run(t, "generate-config", kconfig, config); err != nil {
		t.Fatalf("generate-config error = %v", err)
	}

	data, err = os.ReadFile(config)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "KC_UART_BAUD=115200\n") {
		t.Errorf("configuration default prefix not applied:\n%s", data)
	}
}
