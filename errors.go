package greenspline

import "errors"

var (
	// ErrConfiguration indicates an invalid kernel, tension, dimension or solver setting.
	ErrConfiguration = errors.New("greenspline: invalid configuration")
	// ErrDuplicateConstraint indicates two value constraints at the same location with
	// different observations. Pre-aggregate the data or solve with a regularizing SVD cutoff.
	ErrDuplicateConstraint = errors.New("greenspline: duplicate constraint with differing observation")
	// ErrSingularSystem indicates Gauss-Jordan elimination met a degenerate pivot.
	ErrSingularSystem = errors.New("greenspline: singular linear system")
	// ErrDimension indicates a kernel, distance mode, record or lattice of the wrong dimension.
	ErrDimension = errors.New("greenspline: dimension mismatch")
	// ErrNoConstraints indicates a fit was requested without any value constraint.
	ErrNoConstraints = errors.New("greenspline: no value constraints")
	// ErrInvalidConstraint indicates a malformed constraint record.
	ErrInvalidConstraint = errors.New("greenspline: invalid constraint")
	// ErrNotFitted indicates an evaluation was requested before Fit.
	ErrNotFitted = errors.New("greenspline: interpolator has not been fitted")
)
