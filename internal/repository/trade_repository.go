package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lucascassio/trocalivros/internal/model"
)

// TradeRepo provides persistence for trades. Status changes go through
// UpdateStatusTx, a compare-and-swap keyed on the expected current
// status, so two concurrent transitions can never both apply.
type TradeRepo struct{ DB *sql.DB }

func NewTradeRepo(db *sql.DB) *TradeRepo { return &TradeRepo{DB: db} }

// TradeBook is the nested book summary embedded in trade responses.
type TradeBook struct {
	ID            uint64  `json:"book_id"`
	OwnerID       uint64  `json:"owner_id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Publisher     string  `json:"publisher"`
	Pages         int     `json:"pages"`
	Year          int     `json:"year"`
	Synopsis      *string `json:"synopsis,omitempty"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
	IsAvailable   bool    `json:"is_available"`
}

// TradeUser is the nested requester summary embedded in trade
// responses. It intentionally omits the email-adjacent fields that the
// contact-info exchange covers after completion.
type TradeUser struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Course   string `json:"course"`
	IsActive bool   `json:"is_active"`
}

// TradeDetail is a trade expanded with both book summaries and the
// requester, the shape every trade endpoint returns.
type TradeDetail struct {
	ID            uint64     `json:"trade_id"`
	RequesterID   uint64     `json:"requester_id"`
	OfferedBookID uint64     `json:"offered_book_id"`
	TargetBookID  uint64     `json:"target_book_id"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	ContactEmail  *string    `json:"contact_email,omitempty"`
	ContactPhone  *string    `json:"contact_phone,omitempty"`
	OfferedBook   TradeBook  `json:"offered_book"`
	TargetBook    TradeBook  `json:"target_book"`
	Requester     TradeUser  `json:"requester"`
}

const tradeDetailQuery = `SELECT t.id, t.requester_id, t.offered_book_id, t.target_book_id, t.status,
       t.created_at, t.updated_at, t.contact_email, t.contact_phone,
       ob.id, ob.owner_id, ob.title, ob.author, ob.genre, ob.publisher, ob.pages, ob.year, ob.synopsis, ob.cover_image_url, ob.is_available,
       tb.id, tb.owner_id, tb.title, tb.author, tb.genre, tb.publisher, tb.pages, tb.year, tb.synopsis, tb.cover_image_url, tb.is_available,
       u.id, u.name, u.course, u.is_active
FROM trades t
JOIN books ob ON ob.id = t.offered_book_id
JOIN books tb ON tb.id = t.target_book_id
JOIN users u  ON u.id  = t.requester_id`

func scanTradeDetail(scan func(dest ...interface{}) error) (TradeDetail, error) {
	var (
		d                        TradeDetail
		updatedAt                sql.NullTime
		contactEmail             sql.NullString
		contactPhone             sql.NullString
		obSynopsis, obCover      sql.NullString
		tbSynopsis, tbCover      sql.NullString
	)
	err := scan(
		&d.ID, &d.RequesterID, &d.OfferedBookID, &d.TargetBookID, &d.Status,
		&d.CreatedAt, &updatedAt, &contactEmail, &contactPhone,
		&d.OfferedBook.ID, &d.OfferedBook.OwnerID, &d.OfferedBook.Title, &d.OfferedBook.Author,
		&d.OfferedBook.Genre, &d.OfferedBook.Publisher, &d.OfferedBook.Pages, &d.OfferedBook.Year,
		&obSynopsis, &obCover, &d.OfferedBook.IsAvailable,
		&d.TargetBook.ID, &d.TargetBook.OwnerID, &d.TargetBook.Title, &d.TargetBook.Author,
		&d.TargetBook.Genre, &d.TargetBook.Publisher, &d.TargetBook.Pages, &d.TargetBook.Year,
		&tbSynopsis, &tbCover, &d.TargetBook.IsAvailable,
		&d.Requester.ID, &d.Requester.Name, &d.Requester.Course, &d.Requester.IsActive,
	)
	if err != nil {
		return TradeDetail{}, err
	}
	if updatedAt.Valid {
		ts := updatedAt.Time
		d.UpdatedAt = &ts
	}
	if contactEmail.Valid {
		v := contactEmail.String
		d.ContactEmail = &v
	}
	if contactPhone.Valid {
		v := contactPhone.String
		d.ContactPhone = &v
	}
	if obSynopsis.Valid {
		v := obSynopsis.String
		d.OfferedBook.Synopsis = &v
	}
	if obCover.Valid {
		v := obCover.String
		d.OfferedBook.CoverImageURL = &v
	}
	if tbSynopsis.Valid {
		v := tbSynopsis.String
		d.TargetBook.Synopsis = &v
	}
	if tbCover.Valid {
		v := tbCover.String
		d.TargetBook.CoverImageURL = &v
	}
	return d, nil
}

// CreateTx inserts a trade within an existing transaction and
// populates the generated id. The caller commits or rolls back.
func (r *TradeRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Trade) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO trades (offered_book_id, target_book_id, requester_id, status) VALUES (?,?,?,?)",
		t.OfferedBookID, t.TargetBookID, t.RequesterID, t.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches the bare trade row.
func (r *TradeRepo) GetByID(ctx context.Context, id uint64) (model.Trade, error) {
	var (
		t            model.Trade
		updatedAt    sql.NullTime
		contactEmail sql.NullString
		contactPhone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, offered_book_id, target_book_id, requester_id, status, created_at, updated_at, contact_email, contact_phone FROM trades WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.OfferedBookID, &t.TargetBookID, &t.RequesterID, &t.Status,
		&t.CreatedAt, &updatedAt, &contactEmail, &contactPhone)
	if err != nil {
		return model.Trade{}, err
	}
	if updatedAt.Valid {
		ts := updatedAt.Time
		t.UpdatedAt = &ts
	}
	if contactEmail.Valid {
		v := contactEmail.String
		t.ContactEmail = &v
	}
	if contactPhone.Valid {
		v := contactPhone.String
		t.ContactPhone = &v
	}
	return t, nil
}

// GetDetail fetches a trade expanded with books and requester.
func (r *TradeRepo) GetDetail(ctx context.Context, id uint64) (*TradeDetail, error) {
	row := r.DB.QueryRowContext(ctx, tradeDetailQuery+" WHERE t.id=? LIMIT 1", id)
	d, err := scanTradeDetail(row.Scan)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *TradeRepo) listDetail(ctx context.Context, where string, arg uint64) ([]TradeDetail, error) {
	rows, err := r.DB.QueryContext(ctx, tradeDetailQuery+" WHERE "+where+" ORDER BY t.created_at DESC, t.id DESC", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trades := []TradeDetail{}
	for rows.Next() {
		d, err := scanTradeDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		trades = append(trades, d)
	}
	return trades, rows.Err()
}

// ListByRequester returns trades the user proposed. Empty result is a
// valid state, not an error.
func (r *TradeRepo) ListByRequester(ctx context.Context, userID uint64) ([]TradeDetail, error) {
	return r.listDetail(ctx, "t.requester_id=?", userID)
}

// ListReceived returns trades targeting one of the user's books.
func (r *TradeRepo) ListReceived(ctx context.Context, userID uint64) ([]TradeDetail, error) {
	return r.listDetail(ctx, "tb.owner_id=?", userID)
}

// UpdateBooks swaps the book references of a pending trade and bumps
// updated_at. The pending guard lives in the handler; the WHERE clause
// repeats it so a racing status change cannot interleave.
func (r *TradeRepo) UpdateBooks(ctx context.Context, id, offeredID, targetID uint64, pending string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE trades SET offered_book_id=?, target_book_id=?, updated_at=NOW() WHERE id=? AND status=?",
		offeredID, targetID, id, pending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatusTx applies a status change as a compare-and-swap: the row
// is only written if it still holds the expected current status.
// Returns false when another transaction won the race.
func (r *TradeRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE trades SET status=?, updated_at=NOW() WHERE id=? AND status=?",
		to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetContactInfo stores the post-completion contact fields.
func (r *TradeRepo) SetContactInfo(ctx context.Context, id uint64, email, phone *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE trades SET contact_email=?, contact_phone=?, updated_at=NOW() WHERE id=?",
		email, phone, id)
	return err
}
