// Package repository implements persistence over raw SQL. Sentinel
// errors defined here are shared across repositories so handlers can
// translate failure scenarios to HTTP statuses without inspecting SQL
// errors themselves. Entity-specific sentinels (ErrEmailExists,
// ErrTitleExists, ...) live next to the repository that raises them.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as a concurrent status change winning the
// race. Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// isDuplicate detects a MySQL duplicate-key violation (error 1062),
// used to map unique-index hits on email, (owner,title) and
// (trade,evaluator) to their sentinels.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
