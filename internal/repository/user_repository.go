package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/marketcore/auth-service/internal/model"
)

// UserRepo manages persistence for users.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, name, phone_number, password_hash, role_id, totp_secret, avatar, status, deleted_at, created_at, updated_at`

// scanUser reads one user row in userColumns order.
func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.PasswordHash,
		&u.RoleID, &u.TOTPSecret, &u.Avatar, &u.Status, &u.DeletedAt,
		&u.CreatedAt, &u.UpdatedAt)
	return u, mapNoRows(err)
}

// Create inserts a user with an already-hashed password and returns its ID.
// A uniqueness conflict on the email column is reported as
// ErrDuplicateEmail; the insert itself is the race-free existence check.
func (r *UserRepo) Create(ctx context.Context, email, name, phone, passwordHash string, roleID uint8) (uint64, error) {
	email = NormalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, phone_number, password_hash, role_id, status) VALUES (?,?,?,?,?,?)",
		email, name, phone, passwordHash, roleID, model.UserStatusActive)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a live (not soft-deleted) user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = NormalizeEmail(email)
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a live user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=? AND deleted_at IS NULL",
		passwordHash, time.Now().UTC(), id)
	return err
}

// UpdateTOTPSecret stores a new TOTP secret for the user, or clears it
// when secret is nil (2FA disable).
func (r *UserRepo) UpdateTOTPSecret(ctx context.Context, id uint64, secret *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET totp_secret=?, updated_at=? WHERE id=? AND deleted_at IS NULL",
		secret, time.Now().UTC(), id)
	return err
}

// NormalizeEmail lowercases and trims an address so that lookups and
// the unique index agree on a canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
