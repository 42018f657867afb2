// services/hal/halerr/errors.go
package halerr

import "errors"

var (
	// Plan/board validation
	ErrNoI2CPlan    = errors.New("no_i2c_plan")
	ErrInvalidRate  = errors.New("invalid_rate")
	ErrInvalidGeom  = errors.New("invalid_geometry")
	ErrInvalidDwell = errors.New("invalid_dwell")
	ErrMissingAddr  = errors.New("missing_addr")
	ErrPinConflict  = errors.New("pin_conflict")
	ErrUnknownGate  = errors.New("unknown_gate")

	// Generic / pass-through
	ErrUnsupported = errors.New("unsupported")
)
