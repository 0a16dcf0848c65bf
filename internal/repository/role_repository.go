package repository

import (
	"context"
	"database/sql"

	"github.com/marketcore/auth-service/internal/model"
)

// RoleRepo reads the seeded roles table.  Roles are immutable at
// runtime so only lookups are provided.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByName resolves a role by its unique name (e.g. CLIENT).
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE name=? LIMIT 1", name).
		Scan(&role.ID, &role.Name)
	return role, mapNoRows(err)
}

// GetByID resolves a role by primary key.
func (r *RoleRepo) GetByID(ctx context.Context, id uint8) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE id=? LIMIT 1", id).
		Scan(&role.ID, &role.Name)
	return role, mapNoRows(err)
}
