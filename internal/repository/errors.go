// Package repository contains data access logic for the auth domain.
// This file defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// the auth service to distinguish between different failure
// scenarios without inspecting driver errors: ErrNotFound maps a
// missing row into a typed outcome, and ErrDuplicateEmail surfaces
// the users.email uniqueness conflict so registration can detect a
// taken address at insert time rather than via a racy pre-check.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row, or when a
// delete-if-exists affected zero rows.  Callers decide what a missing
// row means for their flow (e.g. an unknown email vs a spent token).
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when an insert violates the unique
// email constraint on the users table.
var ErrDuplicateEmail = errors.New("email already exists")

// mysqlDuplicateEntry is the MySQL error number for a unique key
// violation (ER_DUP_ENTRY).
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL unique constraint
// violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// mapNoRows converts the driver's sql.ErrNoRows into ErrNotFound and
// passes every other error through unchanged.
func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
