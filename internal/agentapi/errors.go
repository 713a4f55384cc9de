package agentapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout reports a request deadline or network timeout.
	ErrTimeout = errors.New("agentapi: request timed out")
	// ErrUnauthorized reports a rejected API key.
	ErrUnauthorized = errors.New("agentapi: unauthorized")
	// ErrBadResponse reports a non-success status or an undecodable body.
	ErrBadResponse = errors.New("agentapi: bad response")
	// ErrNoScript reports a creation response without an NTL script or spec.
	ErrNoScript = errors.New("agentapi: no agent script returned")
	// ErrNotConfigured reports a missing endpoint URL.
	ErrNotConfigured = errors.New("agentapi: endpoint not configured")
)

// StatusError carries the HTTP status of a failed call. It unwraps to
// ErrUnauthorized or ErrBadResponse.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agentapi: unexpected status %d", e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return ErrBadResponse
}

func (e *StatusError) retryable() bool {
	return e.Status >= 500
}

// classify maps transport failures onto the typed categories.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
