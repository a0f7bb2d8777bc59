package model

import "time"

// Notification is a per-user message tied to a trade event. Rows are
// written exclusively by the trade lifecycle, inside the same
// transaction as the triggering status change; there is no endpoint
// that creates one directly.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id (recipient)
	TradeID   uint64    // notifications.trade_id
	Message   string    // notifications.message
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
