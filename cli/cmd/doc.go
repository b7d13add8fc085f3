// Package cmd implements the kconfgen subcommands.
//
// Every command loads a Kconfig tree, resolves it against zero or more
// configuration layers, and then writes or reports the result. Commands
// receive the shared [Globals] and a context carrying the [kong.Context]
// the command line was parsed into.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the JSON configuration file holding flag defaults.
	ConfigIdentifier = "config"
)
