package model

import "time"

// Trade records a proposed one-for-one exchange between two books. The
// requester is always the owner of the offered book. Status values and
// their transitions live in the trade package; the model only stores
// the current value as text.
//
// Fields:
//  ID            – primary key identifier.
//  OfferedBookID – book put up by the requester.
//  TargetBookID  – book the requester wants in return.
//  RequesterID   – user who proposed the trade.
//  Status        – current lifecycle status (PENDING, ACCEPTED, ...).
//  CreatedAt     – when the trade was proposed.
//  UpdatedAt     – last detail or status change (null until touched).
//  ContactEmail  – contact email shared after completion (nullable).
//  ContactPhone  – contact phone shared after completion (nullable).
type Trade struct {
	ID            uint64     // trades.id
	OfferedBookID uint64     // trades.offered_book_id
	TargetBookID  uint64     // trades.target_book_id
	RequesterID   uint64     // trades.requester_id
	Status        string     // trades.status
	CreatedAt     time.Time  // trades.created_at
	UpdatedAt     *time.Time // trades.updated_at (nullable)
	ContactEmail  *string    // trades.contact_email (nullable)
	ContactPhone  *string    // trades.contact_phone (nullable)
}
