package cli

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ardnew/kconfgen/pkg"
)

// baseConfig is the base name of the file holding flag defaults.
const baseConfig = "config"

// defaultDirMode is the permission mode of created runtime directories.
const defaultDirMode os.FileMode = 0o700

// userDir returns the kconfgen subdirectory of the per-user directory
// reported by locate. If locate fails, the directory named fallback under
// the home directory is used, then the working directory.
func userDir(locate func() (string, error), fallback string) string {
	dir, err := locate()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, pkg.Name)
}

// configDir returns the directory of the flag defaults file,
// $XDG_CONFIG_HOME/kconfgen on most systems.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the directory of transient files such as profiles and
// browser history, $XDG_CACHE_HOME/kconfgen on most systems.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem onto [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
