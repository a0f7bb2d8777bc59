package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/model"
	"github.com/lucascassio/trocalivros/internal/repository"
)

// NotificationHandler serves the recipient-scoped notification
// endpoints. Every operation carries the caller's id down to the
// repository, so one user can never touch another's rows.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

type notificationResp struct {
	ID        uint64 `json:"id"`
	TradeID   uint64 `json:"trade_id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationResp(n model.Notification) notificationResp {
	return notificationResp{
		ID:        n.ID,
		TradeID:   n.TradeID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List returns one page of the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	page, size := parsePage(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	notes, err := h.Notifications.ListByUser(ctx, caller, page, size)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	out := make([]notificationResp, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNotificationResp(n))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":          page,
		"page_size":     size,
		"notifications": out,
	})
}

// MarkRead flips a notification to read. Repeating the call on an
// already-read notification succeeds without touching the row.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid notification id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, caller); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "notification not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	n, err := h.Notifications.GetForUser(ctx, id, caller)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toNotificationResp(n))
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid notification id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.Delete(ctx, id, caller); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "notification not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
