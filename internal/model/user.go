package model

import "time"

// User status values stored in users.status.  BLOCKED accounts keep
// their data but can no longer authenticate.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
	UserStatusBlocked  = "BLOCKED"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.  Users are
// never hard-deleted: DeletedAt carries the soft-delete timestamp
// and queries filter on it being NULL.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Name         – display name.
//  PhoneNumber  – contact phone number.
//  PasswordHash – bcrypt hashed password.
//  RoleID       – foreign key into the roles table.
//  TOTPSecret   – base32 TOTP secret; nil when 2FA is not enrolled.
//  Avatar       – optional avatar URL.
//  Status       – account status (ACTIVE, INACTIVE, BLOCKED).
//  DeletedAt    – soft-delete timestamp (nil while the account lives).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	Name         string     // users.name
	PhoneNumber  string     // users.phone_number
	PasswordHash string     // users.password_hash
	RoleID       uint8      // users.role_id (references roles.id)
	TOTPSecret   *string    // users.totp_secret (nullable)
	Avatar       *string    // users.avatar (nullable)
	Status       string     // users.status
	DeletedAt    *time.Time // users.deleted_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// TwoFactorEnabled reports whether the user has an enrolled TOTP secret.
func (u *User) TwoFactorEnabled() bool {
	return u.TOTPSecret != nil && *u.TOTPSecret != ""
}

// Role represents a row in the `roles` table.  It maps a small
// integer ID to a role name.  Roles are seeded by migration and
// immutable at runtime; users reference this table via RoleID.
//
// Fields:
//  ID   – numeric identifier of the role.
//  Name – unique role name (ADMIN, SELLER, CLIENT).
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name
}

// Seeded role names.  New registrations always resolve RoleClient.
const (
	RoleAdmin  = "ADMIN"
	RoleSeller = "SELLER"
	RoleClient = "CLIENT"
)
