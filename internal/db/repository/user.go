package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itemvault/internal/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo implements domain.UserRepository using SQLite.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = "id, email, username, full_name, is_admin, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var u domain.User
	var isAdmin int64
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &isAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	return &u, nil
}

// Upsert provisions the user record for an identity, keyed by email.
// On first sight it creates the row; afterwards it refreshes the mutable
// identity fields. The single statement keeps provisioning atomic.
func (r *UserRepo) Upsert(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, username, full_name, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			username = excluded.username,
			full_name = excluded.full_name,
			updated_at = excluded.updated_at
		RETURNING `+userColumns,
		domain.NewID(), identity.Email, identity.Username, identity.FullName, now, now)

	u, err := scanUser(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return u, nil
}

// GetByID returns the user with the given id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("user %q not found", id)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	return u, nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("user %q not found", email)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	return u, nil
}

// GetByIDs returns the users matching ids in arbitrary order. Absent ids are
// omitted; one missing user never fails the lookup of its siblings.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE id IN (%s)`, userColumns, placeholders), args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapDBError(err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetAdmin updates the admin flag of a user.
func (r *UserRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	flag := 0
	if isAdmin {
		flag = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`,
		flag, time.Now().UTC(), id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %q not found", id)
	}
	return nil
}
