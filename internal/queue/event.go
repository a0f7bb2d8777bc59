// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// TradeEvent is published whenever a trade is proposed or changes
// status. It carries enough context for downstream consumers to log or
// notify without querying the primary database. Publishing is
// best-effort: the database transaction is the source of truth and has
// already committed when the event goes out.
type TradeEvent struct {
	TradeID       uint64 `json:"trade_id"`
	Status        string `json:"status"`
	RequesterID   uint64 `json:"requester_id"`
	TargetOwnerID uint64 `json:"target_owner_id"`
	OfferedBookID uint64 `json:"offered_book_id"`
	TargetBookID  uint64 `json:"target_book_id"`
	OfferedTitle  string `json:"offered_title"`
	TargetTitle   string `json:"target_title"`
	OccurredAt    string `json:"occurred_at"`
}
