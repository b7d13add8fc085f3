package resolve

import "github.com/ardnew/kconfgen/pkg"

// Sentinel errors.
var (
	ErrMissingInput = pkg.NewError("missing input")
	ErrTypeMismatch = pkg.NewError("type mismatch")
	ErrReadLayer    = pkg.NewError("read override layer")
)
