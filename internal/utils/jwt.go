package utils // token creation, parsing and related helpers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken bundles a signed JWT with the pieces the server keeps a
// reference to: the token id (jti) that lands on the denylist when the
// user logs out, and the expiry returned to the client.
type AccessToken struct {
	Token string
	JTI   string
	Exp   time.Time
}

// TokenClaims carries the verified subject and token id of a parsed
// access token.
type TokenClaims struct {
	UserID uint64
	JTI    string
}

// ErrInvalidToken is returned for any token that fails signature,
// expiry or claim-shape validation. Callers should not distinguish the
// cases; all of them translate to 401.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. Claims:
// subject (sub) = user id, a random token id (jti), expiration (exp)
// and issued-at (iat).
func NewAccessToken(secret string, userID uint64, ttlMin int) (AccessToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return AccessToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseAccessToken validates signature and expiry and extracts the
// subject and jti claims.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	uid, ok := subjectID(mc["sub"])
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	jti, ok := mc["jti"].(string)
	if !ok || jti == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return TokenClaims{UserID: uid, JTI: jti}, nil
}

// subjectID converts the sub claim into a user id. The claim is written
// as a number but comes back as float64 after JSON decoding; string is
// accepted for tokens minted by older revisions.
func subjectID(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case uint64:
		return t, true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
