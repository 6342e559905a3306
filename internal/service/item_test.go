package service

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "itemvault/internal/db"
	"itemvault/internal/db/repository"
	"itemvault/internal/domain"
)

func setupItemService(t *testing.T) (*ItemService, *UserService) {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewItemService(repository.NewItemRepo(writeDB)),
		NewUserService(repository.NewUserRepo(writeDB))
}

func principalFor(t *testing.T, users *UserService, email string, admin bool) domain.Principal {
	t.Helper()
	ctx := context.Background()
	u, err := users.ResolveOrProvision(ctx, domain.Identity{Username: email, Email: email})
	require.NoError(t, err)
	if admin {
		require.NoError(t, users.SetAdmin(ctx, u.ID, true))
	}
	return domain.Principal{UserID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: admin}
}

func TestItemService_CreateForcesOwnership(t *testing.T) {
	items, users := setupItemService(t)
	ctx := context.Background()
	alice := principalFor(t, users, "alice@example.com", false)

	created, err := items.Create(ctx, alice, domain.CreateItemRequest{Title: "Kayak"})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, created.OwnerID)
}

func TestItemService_CreateValidation(t *testing.T) {
	items, users := setupItemService(t)
	alice := principalFor(t, users, "alice@example.com", false)

	_, err := items.Create(context.Background(), alice, domain.CreateItemRequest{Title: "   "})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestItemService_UpdateAuthorization(t *testing.T) {
	items, users := setupItemService(t)
	ctx := context.Background()
	alice := principalFor(t, users, "alice@example.com", false)
	bob := principalFor(t, users, "bob@example.com", false)
	admin := principalFor(t, users, "root@example.com", true)

	created, err := items.Create(ctx, alice, domain.CreateItemRequest{Title: "Paddle"})
	require.NoError(t, err)

	newTitle := "Carbon paddle"

	// Non-owner non-admin: denied, no change persisted.
	_, err = items.Update(ctx, bob, created.ID, domain.UpdateItemRequest{Title: &newTitle})
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	unchanged, err := items.Get(ctx, bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paddle", unchanged.Title)

	// Owner: allowed.
	updated, err := items.Update(ctx, alice, created.ID, domain.UpdateItemRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Carbon paddle", updated.Title)

	// Admin: allowed on someone else's item.
	adminTitle := "Renamed by admin"
	updated, err = items.Update(ctx, admin, created.ID, domain.UpdateItemRequest{Title: &adminTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed by admin", updated.Title)
	assert.Equal(t, alice.UserID, updated.OwnerID, "ownership never reassigned")
}

func TestItemService_ReadNeverDenied(t *testing.T) {
	items, users := setupItemService(t)
	ctx := context.Background()
	alice := principalFor(t, users, "alice@example.com", false)
	bob := principalFor(t, users, "bob@example.com", false)

	created, err := items.Create(ctx, alice, domain.CreateItemRequest{Title: "Map"})
	require.NoError(t, err)

	got, err := items.Get(ctx, bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestItemService_DeleteAuthorizationAndIdempotence(t *testing.T) {
	items, users := setupItemService(t)
	ctx := context.Background()
	alice := principalFor(t, users, "alice@example.com", false)
	bob := principalFor(t, users, "bob@example.com", false)

	created, err := items.Create(ctx, alice, domain.CreateItemRequest{Title: "Compass"})
	require.NoError(t, err)

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, items.Delete(ctx, bob, created.ID), &denied)

	require.NoError(t, items.Delete(ctx, alice, created.ID))

	var notFound *domain.NotFoundError
	require.ErrorAs(t, items.Delete(ctx, alice, created.ID), &notFound)
}

func TestItemService_ListValidatesSortKey(t *testing.T) {
	items, users := setupItemService(t)
	alice := principalFor(t, users, "alice@example.com", false)

	_, _, err := items.List(context.Background(), alice, domain.ListItemsQuery{SortBy: "owner_id"})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
