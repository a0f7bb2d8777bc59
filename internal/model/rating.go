package model

import "time"

// Rating is a post-trade reputation score. At most one rating exists
// per (trade, evaluator) pair, enforced by a unique key; both evaluator
// and evaluated must be participants of the completed trade.
type Rating struct {
	ID          uint64    // ratings.id
	TradeID     uint64    // ratings.trade_id
	EvaluatorID uint64    // ratings.evaluator_id
	EvaluatedID uint64    // ratings.evaluated_id
	Score       int       // ratings.score (1..5)
	Comment     string    // ratings.comment
	CreatedAt   time.Time // ratings.created_at
}
