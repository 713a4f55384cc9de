package submission

import "errors"

var (
	// ErrInvalidPath signals an empty key or an empty path segment.
	ErrInvalidPath = errors.New("submission: invalid path")
	// ErrPathConflict signals a path that is both a value and an object.
	ErrPathConflict = errors.New("submission: path conflicts with existing value")
	// ErrInvalidValue signals a value that cannot be coerced to its field kind.
	ErrInvalidValue = errors.New("submission: invalid value")
)
