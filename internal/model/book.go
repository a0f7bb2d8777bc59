package model

import "time"

// Book represents a listing in the `books` table. Every book belongs to
// exactly one user; the (owner, title) pair is unique so the same user
// cannot list duplicate titles. Availability starts true and is flipped
// to false by the trade lifecycle when a trade over the book is
// accepted.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user who listed the book.
//  Title         – book title.
//  Author        – author name.
//  Genre         – free-text genre, matched accent/case-insensitively.
//  Publisher     – publisher name.
//  Pages         – page count.
//  Year          – publication year.
//  Synopsis      – optional synopsis text.
//  CoverImageURL – optional relative URL of the uploaded cover.
//  CreatedAt     – when the listing was registered.
//  IsAvailable   – whether the book can take part in a new trade.
type Book struct {
	ID            uint64    // books.id
	OwnerID       uint64    // books.owner_id
	Title         string    // books.title
	Author        string    // books.author
	Genre         string    // books.genre
	Publisher     string    // books.publisher
	Pages         int       // books.pages
	Year          int       // books.year
	Synopsis      *string   // books.synopsis (nullable)
	CoverImageURL *string   // books.cover_image_url (nullable)
	CreatedAt     time.Time // books.created_at
	IsAvailable   bool      // books.is_available
}
