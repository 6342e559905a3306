// Package repository implements the domain store interfaces on SQLite.
package repository

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"itemvault/internal/domain"
)

// mapDBError translates driver-level failures into the domain error taxonomy.
// sql.ErrNoRows callers usually produce their own NotFound message; this is
// the fallback for everything else.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("resource not found")
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			return domain.ErrConflict("constraint violation: %v", sqliteErr)
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen:
			return domain.ErrUnavailable("store unavailable: %v", sqliteErr)
		}
	}
	return err
}
