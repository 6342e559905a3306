package domain

import (
	"context"
	"net/http"
)

// UserRepository is the durable store for users.
type UserRepository interface {
	Upsert(ctx context.Context, identity Identity) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByIDs returns the users matching ids in arbitrary order. Absent ids
	// are simply omitted from the result; they never fail the call.
	GetByIDs(ctx context.Context, ids []string) ([]*User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

// ItemRepository is the durable store for items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListItemsQuery) ([]Item, int64, error)
	Count(ctx context.Context, search string) (int64, error)
	// ListByOwnerIDs returns the items of every listed owner in one call.
	// Owners without items contribute nothing to the result.
	ListByOwnerIDs(ctx context.Context, ownerIDs []string) ([]Item, error)
}

// IdentitySource resolves the caller's identity from an inbound request.
// Implementations decide what to trust: forwarded headers from an
// authenticating proxy, a bearer token, or a fixed development identity.
type IdentitySource interface {
	Resolve(ctx context.Context, r *http.Request) (Identity, error)
}

// UserProvisioner resolves an identity to its durable user record,
// creating the record on first sight.
type UserProvisioner interface {
	ResolveOrProvision(ctx context.Context, identity Identity) (*User, error)
}
