package artifact

import "github.com/ardnew/kconfgen/pkg"

// Sentinel errors.
var (
	ErrLayout          = pkg.NewError("invalid layout")
	ErrUnknownFragment = pkg.NewError("unknown fragment")
	ErrArtifactWrite   = pkg.NewError("write artifact")
)
