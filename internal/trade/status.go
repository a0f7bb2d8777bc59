// Package trade implements the trade lifecycle state machine. It is
// pure logic: legality of status transitions, who may trigger them, and
// the notification fan-out each one produces. Persistence of the
// resulting rows is the handler's job, inside one transaction, so the
// state machine stays testable without a database.
package trade

import (
	"errors"
	"strings"
)

// Status enumerates the lifecycle states of a trade.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ErrUnknownStatus is returned by ParseStatus for values outside the
// enumeration. Handlers translate it to 400.
var ErrUnknownStatus = errors.New("unknown trade status")

// ParseStatus converts client input into a Status, case-insensitively.
// Only the canonical "CANCELLED" spelling is accepted.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusAccepted:
		return StatusAccepted, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", ErrUnknownStatus
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving a
// trade from one status to another:
//
//	PENDING  -> ACCEPTED | REJECTED | CANCELLED
//	ACCEPTED -> COMPLETED
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusRejected || to == StatusCancelled
	case StatusAccepted:
		return to == StatusCompleted
	}
	return false
}
