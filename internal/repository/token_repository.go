package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/marketcore/auth-service/internal/model"
)

// TokenRepo persists refresh tokens (single 'token_hash' column, the
// SHA-256 of the signed token).  A row exists exactly while the token
// is spendable: rotation and logout remove it, so presence here is the
// authoritative validity check on top of the JWT signature.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row.
func (r *TokenRepo) Store(ctx context.Context, userID, deviceID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token_hash, user_id, device_id, expires_at) VALUES (?,?,?,?)",
		tokenHash, userID, deviceID, exp)
	return err
}

// GetByHash looks up a refresh token row.  ErrNotFound means the token
// was never issued here or has already been consumed.
func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_hash, user_id, device_id, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.TokenHash, &t.UserID, &t.DeviceID, &t.ExpiresAt, &t.CreatedAt)
	return t, mapNoRows(err)
}

// Consume deletes a refresh token row if it still exists.  The single
// DELETE statement is the atomic arbiter for token rotation: of two
// concurrent attempts to spend the same token, exactly one sees
// RowsAffected==1; the other gets ErrNotFound.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForUser removes every refresh token owned by a user,
// ending all of their sessions.  Used after a password reset.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
