package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/marketcore/auth-service/internal/model"
)

// VerificationCodeRepo stores the single outstanding one-time code per
// email address.  The table's unique key on email plus the upsert below
// guarantee that issuing a new code atomically invalidates the old one,
// even under concurrent requests for the same address.
type VerificationCodeRepo struct{ DB *sql.DB }

func NewVerificationCodeRepo(db *sql.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{DB: db}
}

// Upsert writes the current code for an email in one atomic statement.
// An existing row for the address is overwritten regardless of its
// purpose; the previous code stops validating immediately.
func (r *VerificationCodeRepo) Upsert(ctx context.Context, email, code, purpose string, expiresAt time.Time) error {
	email = NormalizeEmail(email)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO verification_codes (email, code, type, expires_at, created_at)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE code=VALUES(code), type=VALUES(type), expires_at=VALUES(expires_at), created_at=VALUES(created_at)`,
		email, code, purpose, expiresAt, time.Now().UTC())
	return err
}

// Find returns the row matching the exact (email, code, purpose)
// triple, or ErrNotFound.
func (r *VerificationCodeRepo) Find(ctx context.Context, email, code, purpose string) (model.VerificationCode, error) {
	email = NormalizeEmail(email)
	var vc model.VerificationCode
	err := r.DB.QueryRowContext(ctx,
		"SELECT email, code, type, expires_at, created_at FROM verification_codes WHERE email=? AND code=? AND type=? LIMIT 1",
		email, code, purpose).Scan(&vc.Email, &vc.Code, &vc.Type, &vc.ExpiresAt, &vc.CreatedAt)
	return vc, mapNoRows(err)
}

// Consume deletes the row for the triple.  RowsAffected==0 maps to
// ErrNotFound so that two concurrent validations of the same code
// cannot both succeed.
func (r *VerificationCodeRepo) Consume(ctx context.Context, email, code, purpose string) error {
	email = NormalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM verification_codes WHERE email=? AND code=? AND type=?",
		email, code, purpose)
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
