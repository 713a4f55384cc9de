package openapi

import "errors"

var (
	// ErrNoPostOperation is returned by Locate when no path declares a POST.
	ErrNoPostOperation = errors.New("openapi: no POST operation found")
	// ErrCyclicRef is returned when local $ref pointers loop back on themselves.
	ErrCyclicRef = errors.New("openapi: cyclic $ref")
	// ErrUnresolvedRef is returned when a local $ref points nowhere.
	ErrUnresolvedRef = errors.New("openapi: unresolved $ref")
)
