// Package utils provides helper functions for password hashing, token
// signing and one-time code generation.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by the Parse functions for any token
// that fails signature, expiry or claim-shape checks.  Callers get a
// single class on purpose; the reason is not distinguishable.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims is the typed payload of an access token.  Access tokens
// are stateless: everything per-request authorization needs (user,
// role, device) travels inside the token and no store lookup happens
// on verification.
type AccessClaims struct {
	UserID   uint64 `json:"uid"`
	RoleID   uint8  `json:"rid"`
	DeviceID uint64 `json:"did"`
	RoleName string `json:"rol"`
	jwt.RegisteredClaims
}

// RefreshClaims is the typed payload of a refresh token.  It carries
// only the owning user; everything else is resolved from the token's
// store row, which must still exist for the token to be spendable.
type RefreshClaims struct {
	UserID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// SignedToken pairs a serialized JWT with its expiry so callers can
// persist or report the expiration without re-parsing the token.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken builds and signs an HS256 JWT carrying the user's
// identity, role and device for the given TTL in minutes.
func NewAccessToken(secret string, userID uint64, roleID uint8, deviceID uint64, roleName string, ttlMin int) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := AccessClaims{
		UserID:   userID,
		RoleID:   roleID,
		DeviceID: deviceID,
		RoleName: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT for the refresh
// lineage.  The uuid jti makes every issued token unique even when two
// tokens for the same user are signed within one second, so the
// SHA-256 store key never collides.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and recovers the
// typed access claims.  Purely cryptographic; no store is consulted.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseInto(secret, raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies signature and expiry and recovers the
// typed refresh claims.  Row presence in the token store is a separate
// check owned by the auth service.
func ParseRefreshToken(secret, raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseInto(secret, raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseInto(secret, raw string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC before touching
		// the secret.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

// HashRefreshRaw returns the SHA-256 hash of a signed refresh token as
// a hex string.  Only the hash is stored, so a leaked database cannot
// be used to replay sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
