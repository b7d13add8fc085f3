// Package pkg holds project identity shared by every other package along
// with the structured [Error] type used across package boundaries.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version embedded from the VERSION file.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command identifier. It appears in help text,
	// generated file preambles, and default configuration paths.
	Name = "kconfgen"
	// Description is a short summary of the project used in help output.
	Description = "Kconfig symbol resolver and C header generator"
)
