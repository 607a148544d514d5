package ledger

import "errors"

// Rejection outcomes for AddReferral. A rejected call never changes the ledger.
var (
	// ErrInvalidInput is returned when the referrer or candidate key is empty.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSelfReferral is returned when a user tries to refer themselves.
	ErrSelfReferral = errors.New("self referral")

	// ErrAlreadyReferred is returned when the candidate already has a referrer.
	ErrAlreadyReferred = errors.New("candidate already referred")

	// ErrCycleDetected is returned when the candidate is an ancestor of the
	// referrer, so the new edge would close a cycle.
	ErrCycleDetected = errors.New("referral would create a cycle")

	// ErrCapacityExceeded is returned when the referrer has used up its
	// referral capacity.
	ErrCapacityExceeded = errors.New("referrer capacity exceeded")
)

// Reason maps a rejection error to a stable label used by metrics and the API.
// Unknown errors map to "unknown"; nil maps to "ok".
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrSelfReferral):
		return "self_referral"
	case errors.Is(err, ErrAlreadyReferred):
		return "already_referred"
	case errors.Is(err, ErrCycleDetected):
		return "cycle_detected"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	default:
		return "unknown"
	}
}
