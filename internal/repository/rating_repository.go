package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lucascassio/trocalivros/internal/model"
)

// RatingRepo persists post-trade reputation scores.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// ErrDuplicateRating is raised when an evaluator rates the same trade
// twice, backed by the unique (trade_id, evaluator_id) index.
var ErrDuplicateRating = errors.New("trade already rated by this user")

// RatingDetail is a rating expanded with both participant names.
type RatingDetail struct {
	ID            uint64    `json:"rating_id"`
	TradeID       uint64    `json:"trade_id"`
	EvaluatorID   uint64    `json:"evaluator_id"`
	EvaluatorName string    `json:"evaluator_name"`
	EvaluatedID   uint64    `json:"evaluated_id"`
	EvaluatedName string    `json:"evaluated_name"`
	Score         int       `json:"score"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

const ratingDetailQuery = `SELECT r.id, r.trade_id, r.evaluator_id, ev.name, r.evaluated_id, ed.name, r.score, r.comment, r.created_at
FROM ratings r
JOIN users ev ON ev.id = r.evaluator_id
JOIN users ed ON ed.id = r.evaluated_id`

// Create inserts a rating and populates its generated id.
func (r *RatingRepo) Create(ctx context.Context, rec *model.Rating) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO ratings (trade_id, evaluator_id, evaluated_id, score, comment) VALUES (?,?,?,?,?)",
		rec.TradeID, rec.EvaluatorID, rec.EvaluatedID, rec.Score, rec.Comment)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateRating
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// GetByID fetches the bare rating row, used for author checks before
// update/delete.
func (r *RatingRepo) GetByID(ctx context.Context, id uint64) (model.Rating, error) {
	var rec model.Rating
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, trade_id, evaluator_id, evaluated_id, score, comment, created_at FROM ratings WHERE id=? LIMIT 1",
		id).Scan(&rec.ID, &rec.TradeID, &rec.EvaluatorID, &rec.EvaluatedID, &rec.Score, &rec.Comment, &rec.CreatedAt)
	return rec, err
}

// GetDetail fetches a rating with participant names.
func (r *RatingRepo) GetDetail(ctx context.Context, id uint64) (*RatingDetail, error) {
	row := r.DB.QueryRowContext(ctx, ratingDetailQuery+" WHERE r.id=? LIMIT 1", id)
	var d RatingDetail
	err := row.Scan(&d.ID, &d.TradeID, &d.EvaluatorID, &d.EvaluatorName, &d.EvaluatedID, &d.EvaluatedName, &d.Score, &d.Comment, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RatingRepo) listDetail(ctx context.Context, where string, arg uint64) ([]RatingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, ratingDetailQuery+" WHERE "+where+" ORDER BY r.created_at DESC, r.id DESC", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := []RatingDetail{}
	for rows.Next() {
		var d RatingDetail
		if err := rows.Scan(&d.ID, &d.TradeID, &d.EvaluatorID, &d.EvaluatorName, &d.EvaluatedID, &d.EvaluatedName, &d.Score, &d.Comment, &d.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, d)
	}
	return ratings, rows.Err()
}

// ListForUser returns ratings received by a user.
func (r *RatingRepo) ListForUser(ctx context.Context, evaluatedID uint64) ([]RatingDetail, error) {
	return r.listDetail(ctx, "r.evaluated_id=?", evaluatedID)
}

// ListByEvaluator returns ratings the user authored.
func (r *RatingRepo) ListByEvaluator(ctx context.Context, evaluatorID uint64) ([]RatingDetail, error) {
	return r.listDetail(ctx, "r.evaluator_id=?", evaluatorID)
}

// Update replaces score and comment.
func (r *RatingRepo) Update(ctx context.Context, id uint64, score int, comment string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE ratings SET score=?, comment=? WHERE id=?", score, comment, id)
	return err
}

// Delete removes a rating.
func (r *RatingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM ratings WHERE id=?", id)
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
