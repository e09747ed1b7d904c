package moderation

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

var (
	// ErrInvalidTransition is returned when a status change violates the
	// reprimand state machine. No mutation is performed.
	ErrInvalidTransition = errors.New("invalid reprimand status transition")

	// ErrUnknownSubject is returned when the subject of a reprimand cannot
	// be resolved to a tracked member, even after trying to track it.
	ErrUnknownSubject = errors.New("subject is not a tracked member")

	// ErrNotFound is returned when a reprimand id cannot be resolved.
	ErrNotFound = errors.New("reprimand not found")
)

// EnforcementError wraps a failed platform side effect (mute/ban/kick).
// The reprimand record itself was persisted and remains the source of
// truth; enforcement is best effort and independently retryable.
type EnforcementError struct {
	Kind models.ReprimandKind
	Err  error
}

func (e *EnforcementError) Error() string {
	return fmt.Sprintf("enforcement of %s failed: %v", e.Kind, e.Err)
}

func (e *EnforcementError) Unwrap() error { return e.Err }

// AsEnforcement extracts an EnforcementError from an error chain.
func AsEnforcement(err error) (*EnforcementError, bool) {
	var enfErr *EnforcementError
	if errors.As(err, &enfErr) {
		return enfErr, true
	}
	return nil, false
}
