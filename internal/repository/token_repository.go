package repository

import (
	"context"
	"database/sql"
)

// TokenRepo persists the jti denylist backing logout. Access tokens
// stay valid until expiry unless their jti appears here; the JWT
// middleware checks the denylist on every authenticated request.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records a token id. Revoking the same jti twice is a no-op so
// repeated logouts with the same token succeed.
func (r *TokenRepo) Revoke(ctx context.Context, jti string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO revoked_tokens (jti) VALUES (?)", jti)
	return err
}

// IsRevoked reports whether the token id is on the denylist.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM revoked_tokens WHERE jti=? LIMIT 1", jti).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
