package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "itemvault/internal/db"
	"itemvault/internal/domain"
)

func setupUserTest(t *testing.T) *UserRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewUserRepo(writeDB)
}

func TestUserRepo_UpsertCreatesOnFirstSight(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, domain.Identity{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice A.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.IsAdmin)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUserRepo_UpsertIsStableAcrossSightings(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, domain.Identity{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	// Same email again with a changed display name: same row, updated fields.
	second, err := repo.Upsert(ctx, domain.Identity{
		Username: "bobby",
		Email:    "bob@example.com",
		FullName: "Bob B.",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "bobby", second.Username)
	assert.Equal(t, "Bob B.", second.FullName)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestUserRepo_UpsertPreservesAdminFlag(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, domain.Identity{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)
	require.NoError(t, repo.SetAdmin(ctx, u.ID, true))

	again, err := repo.Upsert(ctx, domain.Identity{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)
	assert.True(t, again.IsAdmin, "re-provisioning must not strip admin")
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	repo := setupUserTest(t)

	_, err := repo.GetByID(context.Background(), "missing")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUserRepo_GetByIDs(t *testing.T) {
	repo := setupUserTest(t)
	ctx := context.Background()

	a, err := repo.Upsert(ctx, domain.Identity{Username: "a", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := repo.Upsert(ctx, domain.Identity{Username: "b", Email: "b@example.com"})
	require.NoError(t, err)

	// One absent id mixed in: present ids still resolve, no error.
	users, err := repo.GetByIDs(ctx, []string{a.ID, "no-such-user", b.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)

	got := map[string]bool{}
	for _, u := range users {
		got[u.ID] = true
	}
	assert.True(t, got[a.ID])
	assert.True(t, got[b.ID])
}

func TestUserRepo_GetByIDs_Empty(t *testing.T) {
	repo := setupUserTest(t)

	users, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepo_SetAdmin_NotFound(t *testing.T) {
	repo := setupUserTest(t)

	err := repo.SetAdmin(context.Background(), "missing", true)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
