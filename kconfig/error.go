package kconfig

import "github.com/ardnew/kconfgen/pkg"

// Sentinel errors. Errors returned by this package match one of these with
// errors.Is and carry file, line, and symbol attributes where known.
var (
	ErrLoad                 = pkg.NewError("load Kconfig")
	ErrUnresolvedDependency = pkg.NewError("unresolved dependency")
	ErrInvalidValue         = pkg.NewError("invalid value")
)
