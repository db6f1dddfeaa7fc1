package core

import "errors"

// Construction errors
var (
	ErrInvalidRadius          = errors.New("sphere radius must be finite and non-zero")
	ErrInvalidAlbedo          = errors.New("albedo components must be in [0, 1]")
	ErrInvalidFuzz            = errors.New("metal fuzz must be in [0, 1]")
	ErrInvalidRefractiveIndex = errors.New("refractive index must be positive")
	ErrInvalidCamera          = errors.New("invalid camera configuration")
	ErrUnknownMaterial        = errors.New("unknown material")
)

// Numeric errors raised while rendering
var (
	ErrDegenerateVector  = errors.New("degenerate vector")
	ErrDegenerateRay     = errors.New("ray direction is zero or not finite")
	ErrNonFiniteRadiance = errors.New("radiance estimate is not finite")
)
