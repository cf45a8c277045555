package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidRequest marks malformed or misaligned slot requests.
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrPolicyViolation marks operations rejected by business policy,
	// e.g. a deposit below the resource minimum.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrExpired marks operations attempted after the payment deadline.
	ErrExpired = errors.New("payment deadline passed")

	// ErrInvalidTransition marks an operation whose source state no longer
	// allows it. Racing operations on one booking resolve through this: the
	// loser observes the already-changed state and fails cleanly.
	ErrInvalidTransition = errors.New("invalid status transition")

	// errStateConflict is the repository-level signal that a conditional
	// status update matched zero rows.
	errStateConflict = errors.New("booking not in expected state")
)
