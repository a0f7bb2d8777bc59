package trade

import (
	"errors"
	"fmt"
)

// Event is one notification produced by a lifecycle step: who receives
// it and what it says. The trade id is supplied by the caller when the
// row is written.
type Event struct {
	UserID  uint64
	Message string
}

var (
	// ErrIllegalTransition signals a move the state machine forbids,
	// including any move out of a terminal status. Maps to 409.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrNotAllowed signals that the caller is a participant with the
	// wrong role for the requested change. Maps to 403.
	ErrNotAllowed = errors.New("caller may not change this trade")
)

// Participants identifies the two sides of a trade plus the book titles
// used in notification messages.
type Participants struct {
	RequesterID   uint64
	TargetOwnerID uint64
	OfferedTitle  string
	TargetTitle   string
}

// ProposalEvents is the fan-out for a newly proposed trade: an
// acknowledgement to the requester and an announcement to the owner of
// the target book.
func ProposalEvents(p Participants) []Event {
	return []Event{
		{
			UserID:  p.RequesterID,
			Message: fmt.Sprintf("Your proposal to trade %q for %q was submitted.", p.OfferedTitle, p.TargetTitle),
		},
		{
			UserID:  p.TargetOwnerID,
			Message: fmt.Sprintf("New trade proposal: %q offered for your book %q.", p.OfferedTitle, p.TargetTitle),
		},
	}
}

// Transition validates that callerID may move a trade from one status
// to another and that the move is legal, then returns the notifications
// to persist alongside the status update. Authorization depends on the
// target status: only the target book's owner accepts or rejects, only
// the requester cancels or completes. Authorization is checked before
// legality, matching the error precedence handlers expect (403 before
// 409).
func Transition(from, to Status, callerID uint64, p Participants) ([]Event, error) {
	switch to {
	case StatusAccepted, StatusRejected:
		if callerID != p.TargetOwnerID {
			return nil, ErrNotAllowed
		}
	case StatusCancelled, StatusCompleted:
		if callerID != p.RequesterID {
			return nil, ErrNotAllowed
		}
	default:
		return nil, ErrUnknownStatus
	}
	if !CanTransition(from, to) {
		return nil, ErrIllegalTransition
	}

	switch to {
	case StatusAccepted:
		return []Event{
			{
				UserID:  p.RequesterID,
				Message: fmt.Sprintf("Your trade for %q was accepted. Both books are now reserved.", p.TargetTitle),
			},
			{
				UserID:  p.TargetOwnerID,
				Message: fmt.Sprintf("You accepted the trade of %q for %q.", p.OfferedTitle, p.TargetTitle),
			},
		}, nil
	case StatusRejected:
		return []Event{{
			UserID:  p.RequesterID,
			Message: fmt.Sprintf("Your trade proposal for %q was rejected.", p.TargetTitle),
		}}, nil
	case StatusCancelled:
		return []Event{{
			UserID:  p.RequesterID,
			Message: fmt.Sprintf("Your trade proposal for %q was cancelled.", p.TargetTitle),
		}}, nil
	case StatusCompleted:
		msg := fmt.Sprintf("Trade of %q for %q completed. Share contact details to arrange the exchange.", p.OfferedTitle, p.TargetTitle)
		return []Event{
			{UserID: p.RequesterID, Message: msg},
			{UserID: p.TargetOwnerID, Message: msg},
		}, nil
	}
	return nil, ErrIllegalTransition
}
