// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// ErrRejected marks an illegal action. State is unchanged and the caller may resubmit.
var ErrRejected = errors.New("action rejected")

// ErrInvariantViolation marks an internal consistency failure. It always indicates a
// bug in the engine and must not be swallowed.
var ErrInvariantViolation = errors.New("invariant violation")

// RejectReason is a machine readable cause for a rejected action.
type RejectReason string

const (
	ReasonGameNotInProgress RejectReason = "game_not_in_progress"
	ReasonChoicePending     RejectReason = "choice_pending"
	ReasonUnknownAction     RejectReason = "unknown_action"
	ReasonUnknownPlayer     RejectReason = "unknown_player"
	ReasonNotYourTurn       RejectReason = "not_your_turn"
	ReasonMarkerUsed        RejectReason = "marker_used"
	ReasonDuplicateCard     RejectReason = "duplicate_card"
	ReasonCardNotInHand     RejectReason = "card_not_in_hand"
	ReasonWrongCardCount    RejectReason = "wrong_card_count"
	ReasonInvalidGrouping   RejectReason = "invalid_grouping"
	ReasonUnknownGeisha     RejectReason = "unknown_geisha"
	ReasonGeishaMismatch    RejectReason = "geisha_mismatch"
	ReasonNoPendingChoice   RejectReason = "no_pending_choice"
	ReasonNotOpponent       RejectReason = "not_opponent"
	ReasonInvalidChoice     RejectReason = "invalid_choice"
	ReasonInvalidName       RejectReason = "invalid_player_name"
)

// RejectedError is returned for every illegal action.
type RejectedError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v (%s): %s", ErrRejected, e.Reason, e.Detail)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

func reject(reason RejectReason, format string, args ...interface{}) *RejectedError {
	return &RejectedError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// InvariantViolation reports broken engine state.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvariantViolation, e.Detail)
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInvariantViolation
}

func violation(format string, args ...interface{}) *InvariantViolation {
	return &InvariantViolation{Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reject reason from err, or "" if err is not a rejection.
func ReasonOf(err error) RejectReason {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
