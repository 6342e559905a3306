package app

import (
	"context"
	"errors"
	"fmt"

	"itemvault/internal/domain"
)

// SeedDemo populates the store with demo users and items. Idempotent — it
// checks whether the admin user already exists before writing anything.
func SeedDemo(ctx context.Context, users domain.UserRepository, items domain.ItemRepository) error {
	if existing, err := users.GetByEmail(ctx, "admin@example.com"); err == nil && existing != nil {
		return nil // already seeded
	} else if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("check seed state: %w", err)
		}
	}

	admin, err := users.Upsert(ctx, domain.Identity{
		Username: "admin",
		Email:    "admin@example.com",
		FullName: "Demo Admin",
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if err := users.SetAdmin(ctx, admin.ID, true); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}

	alice, err := users.Upsert(ctx, domain.Identity{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
	})
	if err != nil {
		return fmt.Errorf("create alice: %w", err)
	}

	bob, err := users.Upsert(ctx, domain.Identity{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob Example",
	})
	if err != nil {
		return fmt.Errorf("create bob: %w", err)
	}

	demoItems := []domain.Item{
		{Title: "Welcome note", Description: "First item in the vault", OwnerID: alice.ID},
		{Title: "Shopping list", Description: "Milk, eggs, coffee", OwnerID: alice.ID},
		{Title: "Project plan", Description: "Q4 roadmap draft", OwnerID: bob.ID},
	}
	for _, it := range demoItems {
		item := it
		if _, err := items.Create(ctx, &item); err != nil {
			return fmt.Errorf("create item %q: %w", it.Title, err)
		}
	}
	return nil
}
