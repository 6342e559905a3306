// Package graph implements the GraphQL read surface: schema, per-request
// batch loading, and static query cost guarding.
package graph

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"itemvault/internal/domain"
)

// UserBatchGetter is the slice of the user store the loader needs.
type UserBatchGetter interface {
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}

// ItemBatchGetter is the slice of the item store the loader needs.
type ItemBatchGetter interface {
	ListByOwnerIDs(ctx context.Context, ownerIDs []string) ([]domain.Item, error)
}

// Loaders bundles the per-request dataloaders. A Loaders value lives for
// exactly one request: it is built at the graph endpoint, carried through
// resolution in the context, and dropped when the request ends. Reusing one
// across requests would leak stale and cross-principal data.
type Loaders struct {
	Users        *dataloader.Loader[string, *domain.User]
	ItemsByOwner *dataloader.Loader[string, []domain.Item]
}

// batchWait is how long the loader collects sibling keys before dispatching
// one batched lookup. Resolvers return thunks, so all sibling loads are
// issued before any of them blocks; the wait only pads goroutine scheduling.
const batchWait = 2 * time.Millisecond

// NewLoaders builds the dataloaders for one request.
func NewLoaders(users UserBatchGetter, items ItemBatchGetter) *Loaders {
	return &Loaders{
		Users: dataloader.NewBatchedLoader(
			userBatchFn(users),
			dataloader.WithWait[string, *domain.User](batchWait),
			dataloader.WithBatchCapacity[string, *domain.User](200),
		),
		ItemsByOwner: dataloader.NewBatchedLoader(
			itemsByOwnerBatchFn(items),
			dataloader.WithWait[string, []domain.Item](batchWait),
			dataloader.WithBatchCapacity[string, []domain.Item](200),
		),
	}
}

// userBatchFn resolves one deduplicated key set with a single store call.
// Results are returned in key order; a key absent from the store yields a
// per-key NotFound without failing its siblings.
func userBatchFn(users UserBatchGetter) dataloader.BatchFunc[string, *domain.User] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[*domain.User] {
		results := make([]*dataloader.Result[*domain.User], len(keys))

		found, err := users.GetByIDs(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[*domain.User]{Error: err}
			}
			return results
		}

		byID := make(map[string]*domain.User, len(found))
		for _, u := range found {
			byID[u.ID] = u
		}
		for i, key := range keys {
			if u, ok := byID[key]; ok {
				results[i] = &dataloader.Result[*domain.User]{Data: u}
			} else {
				results[i] = &dataloader.Result[*domain.User]{Error: domain.ErrNotFound("user %q not found", key)}
			}
		}
		return results
	}
}

// itemsByOwnerBatchFn resolves the items of every requested owner with one
// store call, grouping the rows by owner afterwards. An owner without items
// gets an empty slice, not an error.
func itemsByOwnerBatchFn(items ItemBatchGetter) dataloader.BatchFunc[string, []domain.Item] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[[]domain.Item] {
		results := make([]*dataloader.Result[[]domain.Item], len(keys))

		rows, err := items.ListByOwnerIDs(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[[]domain.Item]{Error: err}
			}
			return results
		}

		byOwner := make(map[string][]domain.Item, len(keys))
		for _, it := range rows {
			byOwner[it.OwnerID] = append(byOwner[it.OwnerID], it)
		}
		for i, key := range keys {
			results[i] = &dataloader.Result[[]domain.Item]{Data: byOwner[key]}
		}
		return results
	}
}

type loadersKey struct{}

// WithLoaders attaches a request's loaders to the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, l)
}

// LoadersFromContext extracts the request's loaders from the context.
func LoadersFromContext(ctx context.Context) (*Loaders, bool) {
	l, ok := ctx.Value(loadersKey{}).(*Loaders)
	return l, ok
}
