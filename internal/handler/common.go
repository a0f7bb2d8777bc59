// Package handler contains the echo handlers for every API resource.
// Handlers assume JWT authentication already ran for protected routes
// and read the caller's identity from the request context; every
// ownership or role decision below takes that explicit id, never
// ambient state.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Stable machine-readable error kinds carried next to the
// human-readable message in every error body.
const (
	kindNotFound     = "not_found"
	kindForbidden    = "forbidden"
	kindUnauthorized = "unauthorized"
	kindConflict     = "conflict"
	kindInvalid      = "invalid_argument"
	kindInternal     = "internal"
)

func jsonError(c echo.Context, status int, kind, msg string) error {
	return c.JSON(status, echo.Map{"error": msg, "kind": kind})
}

// getUserID extracts the authenticated user id stored by the JWT
// middleware. The type switch tolerates the numeric representations a
// context value can arrive as.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// reqCtx caps every DB-bound operation at five seconds.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// parsePage reads ?page= and ?page_size= with defaults 1 and 10. The
// size is capped so a client cannot request an unbounded page.
func parsePage(c echo.Context) (page, size int) {
	page, size = 1, 10
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		size = v
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// validScore reports whether a rating score is in the 1..5 range.
func validScore(s int) bool { return s >= 1 && s <= 5 }

// Health is the liveness endpoint.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
