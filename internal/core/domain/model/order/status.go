package order

import (
	"fmt"

	"orders/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct business workflow.
//
// State transitions:
//
//	Draft ──> Confirmed ──> Closed
//
// The machine is monotonic: there is no backward move, no self-transition,
// and Closed is a terminal state. Status is a value object that validates
// state transitions and provides string representations for persistence
// and the event wire format.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Draft is the initial status when an order is first created.
	// Draft orders carry no total yet and are waiting to be confirmed.
	Draft

	// Confirmed indicates the order total has been fixed.
	// Confirmed orders can only move to Closed.
	Confirmed

	// Closed is the final status. No further mutation is allowed.
	Closed
)

// getStatusStrings returns a map of Status values to their string representations.
// The strings double as the persisted column value and the event payload value.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Draft:     "draft",
		Confirmed: "confirmed",
		Closed:    "closed",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Draft:     "draft",
		Confirmed: "confirmed",
		Closed:    "closed",
	}
}

// StatusFromString parses a persisted status string back into a Status.
// Returns an error for any string that is not a valid status, so corrupt
// rows fail loudly during rehydration instead of producing an Unknown order.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Valid statuses are: Draft, Confirmed, Closed.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase name of the status ("draft", "confirmed",
// "closed"). Invalid values render as "unknown". Implements fmt.Stringer and
// is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Confirm transitions the status to Confirmed.
//
// Valid transitions:
//   - Draft -> Confirmed
//
// Any other source status, including Confirmed itself, fails with
// InvalidStateTransitionError carrying the attempted move.
func (s Status) Confirm() (Status, error) {
	if s != Draft {
		return Unknown, errs.NewInvalidStateTransitionError(s.String(), Confirmed.String())
	}

	return Confirmed, nil
}

// Close transitions the status to Closed.
//
// Valid transitions:
//   - Confirmed -> Closed
//
// Draft orders must be confirmed first; closed orders cannot be closed again.
// Any invalid source fails with InvalidStateTransitionError.
func (s Status) Close() (Status, error) {
	if s != Confirmed {
		return Unknown, errs.NewInvalidStateTransitionError(s.String(), Closed.String())
	}

	return Closed, nil
}
