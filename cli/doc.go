// Package cli contains the command line interface for kconfgen.
//
// # Usage
//
//	kconfgen generate-config Kconfig .config --search-path=boards --board=stm32
//	kconfgen generate-headers Kconfig .config build
//	kconfgen query Kconfig GPIO_PINS --config=.config
//
// # Global Options
//
//   - --prefix: Prefix of symbol names in configurations and macros
//     (environment CONFIG_, default CONFIG_)
//   - --header: Replacement for the generated header preamble
//     (environment KCONFIG_AUTOHEADER_HEADER)
//
// Defaults for any flag may be stored as JSON in the configuration file,
// $XDG_CONFIG_HOME/kconfgen/config.json, which the init command writes.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o kconfgen .
//
// It is then controlled by two more flags:
//
//   - --pprof-mode: Enable a profile, one of allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, or trace
//   - --pprof-dir: Set the profile output directory
//
// Profiles are written to ~/.cache/kconfgen/pprof unless --pprof-dir says
// otherwise.
package cli
