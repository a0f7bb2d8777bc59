package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/model"
	"github.com/lucascassio/trocalivros/internal/repository"
	"github.com/lucascassio/trocalivros/internal/trade"
)

// RatingHandler serves the reputation endpoints. A rating can only be
// written by a participant of a completed trade, about the other
// participant, and only once per trade.
type RatingHandler struct {
	Ratings *repository.RatingRepo
	Trades  *repository.TradeRepo
	Users   *repository.UserRepo
}

func NewRatingHandler(r *repository.RatingRepo, t *repository.TradeRepo, u *repository.UserRepo) *RatingHandler {
	return &RatingHandler{Ratings: r, Trades: t, Users: u}
}

type createRatingReq struct {
	TradeID uint64 `json:"trade_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type updateRatingReq struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Create records a rating. The evaluated user is derived from the
// trade: whichever participant the caller is not.
func (h *RatingHandler) Create(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	var req createRatingReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	if req.TradeID == 0 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "trade_id is required")
	}
	if !validScore(req.Score) {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "score must be between 1 and 5")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Trades.GetDetail(ctx, req.TradeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "trade not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if caller != detail.RequesterID && caller != detail.TargetBook.OwnerID {
		return jsonError(c, http.StatusForbidden, kindForbidden, "only trade participants can rate")
	}
	if detail.Status != string(trade.StatusCompleted) {
		return jsonError(c, http.StatusConflict, kindConflict, "only completed trades can be rated")
	}

	evaluated := detail.RequesterID
	if caller == detail.RequesterID {
		evaluated = detail.TargetBook.OwnerID
	}

	rec := model.Rating{
		TradeID:     req.TradeID,
		EvaluatorID: caller,
		EvaluatedID: evaluated,
		Score:       req.Score,
		Comment:     strings.TrimSpace(req.Comment),
	}
	if err := h.Ratings.Create(ctx, &rec); err != nil {
		if err == repository.ErrDuplicateRating {
			return jsonError(c, http.StatusConflict, kindConflict, "you already rated this trade")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "create rating failed")
	}

	d, err := h.Ratings.GetDetail(ctx, rec.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load rating failed")
	}
	return c.JSON(http.StatusCreated, d)
}

// Get returns one rating with participant names.
func (h *RatingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid rating id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Ratings.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "rating not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, d)
}

// ListForUser returns the ratings a user has received, with the average
// alongside so a profile view costs one request.
func (h *RatingHandler) ListForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid user id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	ratings, err := h.Ratings.ListForUser(ctx, userID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}

	var avg float64
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Score
		}
		avg = float64(sum) / float64(len(ratings))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":       userID,
		"average_score": avg,
		"count":         len(ratings),
		"ratings":       ratings,
	})
}

// ListMine returns the ratings the caller has authored.
func (h *RatingHandler) ListMine(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ratings, err := h.Ratings.ListByEvaluator(ctx, caller)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, ratings)
}

// Update lets the author revise score and comment.
func (h *RatingHandler) Update(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid rating id")
	}
	var req updateRatingReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	if !validScore(req.Score) {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "score must be between 1 and 5")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Ratings.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "rating not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if rec.EvaluatorID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only edit your own ratings")
	}
	if err := h.Ratings.Update(ctx, id, req.Score, strings.TrimSpace(req.Comment)); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	d, err := h.Ratings.GetDetail(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load rating failed")
	}
	return c.JSON(http.StatusOK, d)
}

// Delete removes a rating the caller authored.
func (h *RatingHandler) Delete(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid rating id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Ratings.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "rating not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if rec.EvaluatorID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only delete your own ratings")
	}
	if err := h.Ratings.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "rating not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
