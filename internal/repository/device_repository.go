package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/marketcore/auth-service/internal/model"
)

// DeviceRepo tracks login contexts (IP + user agent) per user.  Rows
// are audit markers, not identities: every login inserts a new row and
// nothing deduplicates by fingerprint.
type DeviceRepo struct{ DB *sql.DB }

func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{DB: db} }

// Create inserts a new active device row with last_active set to now
// and returns the populated model.
func (r *DeviceRepo) Create(ctx context.Context, userID uint64, ip, userAgent string) (model.Device, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO devices (user_id, ip, user_agent, last_active, is_active) VALUES (?,?,?,?,?)",
		userID, ip, userAgent, now, true)
	if err != nil {
		return model.Device{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Device{}, err
	}
	return model.Device{
		ID:         uint64(id),
		UserID:     userID,
		IP:         ip,
		UserAgent:  userAgent,
		LastActive: now,
		IsActive:   true,
		CreatedAt:  now,
	}, nil
}

// Touch refreshes a device's activity metadata and reactivates it.
// Used on token refresh as session freshness evidence.
func (r *DeviceRepo) Touch(ctx context.Context, id uint64, ip, userAgent string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET ip=?, user_agent=?, last_active=?, is_active=1 WHERE id=?",
		ip, userAgent, time.Now().UTC(), id)
	return err
}

// Deactivate marks a device inactive on logout.  The row is retained
// for audit history.
func (r *DeviceRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET is_active=0 WHERE id=?", id)
	return err
}
