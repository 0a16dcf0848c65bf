package model

import "time"

// Device records the client context (IP address + user agent) under
// which a session's tokens were issued.  A new row is created on every
// login; refresh reactivates the row and updates its metadata, logout
// marks it inactive.  Rows are never deleted so the table doubles as a
// session audit trail.  Devices are not deduplicated by fingerprint:
// one user/browser pair may accumulate several rows over time.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the session.
//  IP         – client IP address at last activity.
//  UserAgent  – client user-agent string at last activity.
//  LastActive – timestamp of the most recent login or refresh.
//  IsActive   – false once the session has been logged out.
//  CreatedAt  – timestamp of creation.
type Device struct {
	ID         uint64    // devices.id
	UserID     uint64    // devices.user_id
	IP         string    // devices.ip
	UserAgent  string    // devices.user_agent
	LastActive time.Time // devices.last_active
	IsActive   bool      // devices.is_active
	CreatedAt  time.Time // devices.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// row represents one still-spendable refresh token; rotation and
// logout delete the row, so row presence is the sole source of truth
// for token validity alongside the JWT signature check.  The signed
// token itself is not stored, only its SHA-256 hash.
//
// Fields:
//  TokenHash – SHA-256 hex digest of the signed refresh token.
//  UserID    – owner of the token.
//  DeviceID  – device/session the token was issued under.
//  ExpiresAt – expiration timestamp copied from the JWT exp claim.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	TokenHash string    // refresh_tokens.token_hash
	UserID    uint64    // refresh_tokens.user_id
	DeviceID  uint64    // refresh_tokens.device_id
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
