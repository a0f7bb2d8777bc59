package repository

import (
	"context"
	"database/sql"

	"github.com/lucascassio/trocalivros/internal/model"
)

// NotificationRepo persists per-user notifications. Rows are only ever
// created by the trade lifecycle (CreateTx runs inside the transition's
// transaction); reads and mutations are always scoped to the recipient.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// CreateTx inserts one notification within an existing transaction. A
// failure here rolls back the trade transition that produced it.
func (r *NotificationRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID, tradeID uint64, message string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO notifications (user_id, trade_id, message) VALUES (?,?,?)",
		userID, tradeID, message)
	return err
}

// ListByUser returns one page of the recipient's notifications, newest
// first. Page numbers start at 1.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]model.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, trade_id, message, is_read, created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notes := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TradeID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// GetForUser fetches a notification only if it belongs to the given
// recipient; sql.ErrNoRows covers both absence and foreign ownership so
// callers cannot probe other users' ids.
func (r *NotificationRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Notification, error) {
	var n model.Notification
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, trade_id, message, is_read, created_at FROM notifications WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&n.ID, &n.UserID, &n.TradeID, &n.Message, &n.IsRead, &n.CreatedAt)
	return n, err
}

// MarkRead flips the read flag. Marking an already-read notification is
// a no-op, so retries and double-clicks succeed.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	n, err := r.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	return err
}

// Delete removes a notification owned by the recipient.
func (r *NotificationRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM notifications WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
