package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/model"
	"github.com/lucascassio/trocalivros/internal/queue"
	"github.com/lucascassio/trocalivros/internal/repository"
	queuepub "github.com/lucascassio/trocalivros/internal/service"
	"github.com/lucascassio/trocalivros/internal/trade"
)

// TradeHandler drives the trade lifecycle. Every status change runs as
// a single transaction: the compare-and-swap status update, any book
// reservations, and the notification fan-out commit together or not at
// all. Broker events go out only after commit and are best-effort.
type TradeHandler struct {
	DB            *sql.DB
	Trades        *repository.TradeRepo
	Books         *repository.BookRepo
	Notifications *repository.NotificationRepo
}

func NewTradeHandler(db *sql.DB, t *repository.TradeRepo, b *repository.BookRepo, n *repository.NotificationRepo) *TradeHandler {
	return &TradeHandler{DB: db, Trades: t, Books: b, Notifications: n}
}

type proposeTradeReq struct {
	OfferedBookID uint64 `json:"offered_book_id"`
	TargetBookID  uint64 `json:"target_book_id"`
}

type changeStatusReq struct {
	Status string `json:"status"`
}

type updateTradeReq struct {
	OfferedBookID uint64 `json:"offered_book_id"`
	TargetBookID  uint64 `json:"target_book_id"`
}

type contactInfoReq struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Propose creates a PENDING trade. The caller must own the offered
// book and must not own the target book; both books must be available.
func (h *TradeHandler) Propose(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	var req proposeTradeReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	if req.OfferedBookID == 0 || req.TargetBookID == 0 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "offered_book_id and target_book_id are required")
	}
	if req.OfferedBookID == req.TargetBookID {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "a book cannot be traded for itself")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "begin transaction failed")
	}
	defer func() { _ = tx.Rollback() }()

	offered, err := h.Books.GetByIDTx(ctx, tx, req.OfferedBookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "offered book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	target, err := h.Books.GetByIDTx(ctx, tx, req.TargetBookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "target book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if offered.OwnerID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only offer a book you own")
	}
	if target.OwnerID == caller {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "you cannot request your own book")
	}
	if !offered.IsAvailable || !target.IsAvailable {
		return jsonError(c, http.StatusConflict, kindConflict, "both books must be available")
	}

	t := model.Trade{
		OfferedBookID: offered.ID,
		TargetBookID:  target.ID,
		RequesterID:   caller,
		Status:        string(trade.StatusPending),
	}
	if err := h.Trades.CreateTx(ctx, tx, &t); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "create trade failed")
	}

	p := trade.Participants{
		RequesterID:   caller,
		TargetOwnerID: target.OwnerID,
		OfferedTitle:  offered.Title,
		TargetTitle:   target.Title,
	}
	for _, ev := range trade.ProposalEvents(p) {
		if err := h.Notifications.CreateTx(ctx, tx, ev.UserID, t.ID, ev.Message); err != nil {
			return jsonError(c, http.StatusInternalServerError, kindInternal, "create notification failed")
		}
	}

	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "commit failed")
	}

	h.publishEvent(t.ID, string(trade.StatusPending), p, offered.ID, target.ID)

	detail, err := h.Trades.GetDetail(ctx, t.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load trade failed")
	}
	return c.JSON(http.StatusCreated, detail)
}

// ChangeStatus moves a trade through its lifecycle. The state machine
// decides legality and authorization and yields the notifications; this
// handler supplies the transaction, the compare-and-swap write, and the
// book reservation on acceptance.
func (h *TradeHandler) ChangeStatus(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid trade id")
	}
	var req changeStatusReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	to, err := trade.ParseStatus(req.Status)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "unknown status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Trades.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "trade not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}

	from := trade.Status(detail.Status)
	p := trade.Participants{
		RequesterID:   detail.RequesterID,
		TargetOwnerID: detail.TargetBook.OwnerID,
		OfferedTitle:  detail.OfferedBook.Title,
		TargetTitle:   detail.TargetBook.Title,
	}
	events, err := trade.Transition(from, to, caller, p)
	if err != nil {
		switch err {
		case trade.ErrNotAllowed:
			return jsonError(c, http.StatusForbidden, kindForbidden, "you may not apply this change")
		case trade.ErrIllegalTransition:
			return jsonError(c, http.StatusConflict, kindConflict, "transition not allowed from "+detail.Status)
		default:
			return jsonError(c, http.StatusBadRequest, kindInvalid, "unknown status")
		}
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "begin transaction failed")
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := h.Trades.UpdateStatusTx(ctx, tx, id, string(from), string(to))
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	if !ok {
		// Another request changed the status between read and write.
		return jsonError(c, http.StatusConflict, kindConflict, "trade status changed concurrently")
	}

	if to == trade.StatusAccepted {
		n, err := h.Books.MarkUnavailableTx(ctx, tx, detail.OfferedBookID, detail.TargetBookID)
		if err != nil {
			return jsonError(c, http.StatusInternalServerError, kindInternal, "reserve books failed")
		}
		if n != 2 {
			return jsonError(c, http.StatusConflict, kindConflict, "one of the books is no longer available")
		}
	}

	for _, ev := range events {
		if err := h.Notifications.CreateTx(ctx, tx, ev.UserID, id, ev.Message); err != nil {
			return jsonError(c, http.StatusInternalServerError, kindInternal, "create notification failed")
		}
	}

	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "commit failed")
	}

	h.publishEvent(id, string(to), p, detail.OfferedBookID, detail.TargetBookID)

	updated, err := h.Trades.GetDetail(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load trade failed")
	}
	return c.JSON(http.StatusOK, updated)
}

// Get returns one trade with its expanded books and requester. Only the
// two participants may see it.
func (h *TradeHandler) Get(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid trade id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	detail, err := h.Trades.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "trade not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if caller != detail.RequesterID && caller != detail.TargetBook.OwnerID {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you are not part of this trade")
	}
	return c.JSON(http.StatusOK, detail)
}

// ListMine returns trades the caller proposed.
func (h *TradeHandler) ListMine(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	trades, err := h.Trades.ListByRequester(ctx, caller)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, trades)
}

// ListReceived returns trades targeting one of the caller's books.
func (h *TradeHandler) ListReceived(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	trades, err := h.Trades.ListReceived(ctx, caller)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, trades)
}

// UpdateDetails swaps the books of a still-pending trade. Only the
// requester may do it, the replacement pair obeys the same rules as
// Propose, and once the trade left PENDING the edit is refused.
func (h *TradeHandler) UpdateDetails(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid trade id")
	}
	var req updateTradeReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	if req.OfferedBookID == 0 && req.TargetBookID == 0 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "offered_book_id or target_book_id is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Trades.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "trade not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if t.RequesterID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "only the requester can edit a trade")
	}
	if t.Status != string(trade.StatusPending) {
		return jsonError(c, http.StatusConflict, kindConflict, "only pending trades can be edited")
	}

	// Omitted ids keep the current books; only the resulting pair is
	// validated.
	if req.OfferedBookID == 0 {
		req.OfferedBookID = t.OfferedBookID
	}
	if req.TargetBookID == 0 {
		req.TargetBookID = t.TargetBookID
	}
	if req.OfferedBookID == req.TargetBookID {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "a book cannot be traded for itself")
	}

	offered, err := h.Books.GetByID(ctx, req.OfferedBookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "offered book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	target, err := h.Books.GetByID(ctx, req.TargetBookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "target book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if offered.OwnerID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only offer a book you own")
	}
	if target.OwnerID == caller {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "you cannot request your own book")
	}
	if !offered.IsAvailable || !target.IsAvailable {
		return jsonError(c, http.StatusConflict, kindConflict, "both books must be available")
	}

	if err := h.Trades.UpdateBooks(ctx, id, offered.ID, target.ID, string(trade.StatusPending)); err != nil {
		if err == repository.ErrConflict {
			return jsonError(c, http.StatusConflict, kindConflict, "trade status changed concurrently")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}

	detail, err := h.Trades.GetDetail(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load trade failed")
	}
	return c.JSON(http.StatusOK, detail)
}

// ContactInfo stores contact details on a completed trade so the two
// parties can arrange the physical exchange.
func (h *TradeHandler) ContactInfo(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid trade id")
	}
	var req contactInfoReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "email or phone is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Trades.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "trade not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if t.RequesterID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "only the requester can share contact details")
	}
	if t.Status != string(trade.StatusCompleted) {
		return jsonError(c, http.StatusConflict, kindConflict, "contact details can only be shared on completed trades")
	}

	var emailPtr, phonePtr *string
	if email != "" {
		emailPtr = &email
	}
	if phone != "" {
		phonePtr = &phone
	}
	if err := h.Trades.SetContactInfo(ctx, id, emailPtr, phonePtr); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}

	detail, err := h.Trades.GetDetail(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load trade failed")
	}
	return c.JSON(http.StatusOK, detail)
}

// publishEvent fires the broker event for a committed lifecycle step in
// the background. Failures are logged inside the publisher and ignored
// here; the database already holds the truth.
func (h *TradeHandler) publishEvent(tradeID uint64, status string, p trade.Participants, offeredID, targetID uint64) {
	ev := queue.TradeEvent{
		TradeID:       tradeID,
		Status:        status,
		RequesterID:   p.RequesterID,
		TargetOwnerID: p.TargetOwnerID,
		OfferedBookID: offeredID,
		TargetBookID:  targetID,
		OfferedTitle:  p.OfferedTitle,
		TargetTitle:   p.TargetTitle,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queuepub.PublishTradeEvent(ctx, ev)
	}()
}
