package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/config"
	"github.com/lucascassio/trocalivros/internal/model"
	"github.com/lucascassio/trocalivros/internal/repository"
	"github.com/lucascassio/trocalivros/internal/utils"
)

// UserHandler bundles dependencies for account and session endpoints.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Course   string `json:"course"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserReq struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Course string `json:"course"`
}

type resetPasswordReq struct {
	Email              string `json:"email"`
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

type userResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

func toUserResp(u model.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Course: u.Course, CreatedAt: u.CreatedAt, IsActive: u.IsActive}
}

// Authenticate verifies email+password and issues a bearer token whose
// jti can later be denylisted by Logout. Unknown email and wrong
// password produce the same response.
func (h *UserHandler) Authenticate(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "email/password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "issue token failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   access.Token,
		"expires": access.Exp,
		"user":    toUserResp(u),
	})
}

// Logout denylists the current token's jti. The token remains
// syntactically valid until expiry but every middleware check will now
// reject it.
func (h *UserHandler) Logout(c echo.Context) error {
	jti, ok := c.Get("jti").(string)
	if !ok || jti == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "token has no jti")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.Revoke(ctx, jti); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "revoke failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Register creates an account.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || strings.TrimSpace(req.Course) == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "name, email and course are required")
	}
	if len(req.Password) < 6 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "password must have at least 6 characters")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Course, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return jsonError(c, http.StatusConflict, kindConflict, "email already in use")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "create user failed")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "load user failed")
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// List returns every account.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one account by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid user id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update replaces the caller's own profile fields.
func (h *UserHandler) Update(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid user id")
	}
	if id != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only update your own profile")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || strings.TrimSpace(req.Course) == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "name, email and course are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if err := h.Users.Update(ctx, id, req.Name, req.Email, req.Course); err != nil {
		if err == repository.ErrEmailExists {
			return jsonError(c, http.StatusConflict, kindConflict, "email already in use")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword replaces a password after proving knowledge of the
// current one. No bearer token is required; the proof is the
// credential.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "email, current and new password are required")
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "passwords do not match")
	}
	if len(req.NewPassword) < 6 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "password must have at least 6 characters")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "current password is incorrect")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes the caller's own account; books, trades and dependent
// rows cascade away at the storage layer.
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid user id")
	}
	if id != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only delete your own account")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
