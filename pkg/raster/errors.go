package raster

import "errors"

// Error kinds shared by every filter package. Callers match them with errors.Is.
var (
	// ErrInvalidParameter reports an unusable window size, bin count or an empty image.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrShapeMismatch reports images or masks whose dimensions disagree.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDomain reports samples that cannot be mapped into the requested domain.
	ErrDomain = errors.New("domain violation")
	// ErrExternal wraps failures raised by library-backed collaborators.
	ErrExternal = errors.New("external collaborator failure")
)
