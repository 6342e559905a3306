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

var _ domain.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implements domain.ItemRepository using SQLite. Mutations run in
// short-lived transactions bound to the request context, so a cancelled
// request aborts before commit and never leaves a partial row.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = "id, title, description, owner_id, created_at, updated_at"

func scanItem(row interface{ Scan(...interface{}) error }) (*domain.Item, error) {
	var it domain.Item
	if err := row.Scan(&it.ID, &it.Title, &it.Description, &it.OwnerID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persists a new item with server-assigned id and timestamps.
func (r *ItemRepo) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	item.ID = domain.NewID()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, title, description, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Description, item.OwnerID, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapDBError(err)
	}
	return item, nil
}

// GetByID returns the item with the given id.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("item %q not found", id)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	return it, nil
}

// Update persists changed title/description. OwnerID is never written.
func (r *ItemRepo) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	item.UpdatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE items SET title = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		item.Title, item.Description, item.UpdatedAt, item.ID)
	if err != nil {
		return nil, mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound("item %q not found", item.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapDBError(err)
	}
	return item, nil
}

// Delete removes the item with the given id.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("item %q not found", id)
	}

	return mapDBError(tx.Commit())
}

// List returns a page of items plus the total count matching the query.
func (r *ItemRepo) List(ctx context.Context, q domain.ListItemsQuery) ([]domain.Item, int64, error) {
	where := ""
	var args []interface{}
	if q.Search != "" {
		where = ` WHERE LOWER(title) LIKE ?`
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	order := orderClause(q)
	listArgs := append(args, q.Page.Limit(), q.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items`+where+order+` LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, mapDBError(err)
		}
		items = append(items, *it)
	}
	return items, total, rows.Err()
}

// ListByOwnerIDs returns the items of all listed owners in one query,
// ordered by owner then creation time so callers can group deterministically.
func (r *ItemRepo) ListByOwnerIDs(ctx context.Context, ownerIDs []string) ([]domain.Item, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ownerIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ownerIDs))
	for i, id := range ownerIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id IN (`+placeholders+`)
		 ORDER BY owner_id, created_at, id`, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapDBError(err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// Count returns the number of items matching an optional title search.
func (r *ItemRepo) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	var err error
	if search == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM items WHERE LOWER(title) LIKE ?`,
			"%"+strings.ToLower(search)+"%").Scan(&total)
	}
	if err != nil {
		return 0, mapDBError(err)
	}
	return total, nil
}

// orderClause builds the ORDER BY for a validated list query.
func orderClause(q domain.ListItemsQuery) string {
	col := q.SortBy
	switch col {
	case domain.SortByTitle, domain.SortByCreatedAt, domain.SortByUpdatedAt:
	default:
		col = domain.SortByCreatedAt
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}
