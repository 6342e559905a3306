package service

import (
	"context"

	"itemvault/internal/domain"
	"itemvault/internal/policy"
)

// ItemService provides item CRUD with uniform authorization. Every mutation
// goes through policy.Authorize before the store is touched, so a denied
// request has no partial effect.
type ItemService struct {
	items domain.ItemRepository
}

// NewItemService creates a new ItemService.
func NewItemService(items domain.ItemRepository) *ItemService {
	return &ItemService{items: items}
}

// Create validates the payload and persists a new item owned by the caller.
// Ownership is forced to the principal: a client-supplied owner id has no
// field to live in, which closes owner spoofing by construction.
func (s *ItemService) Create(ctx context.Context, p domain.Principal, req domain.CreateItemRequest) (*domain.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionCreate, ""); err != nil {
		return nil, err
	}
	return s.items.Create(ctx, &domain.Item{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     p.UserID,
	})
}

// Get returns an item by id. Reads are allowed for every principal.
func (s *ItemService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionRead, item.OwnerID); err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies a partial update after the owner-or-admin check.
func (s *ItemService) Update(ctx context.Context, p domain.Principal, id string, req domain.UpdateItemRequest) (*domain.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionUpdate, item.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	return s.items.Update(ctx, item)
}

// Delete removes an item after the owner-or-admin check. Deleting an absent
// item yields NotFound, so a repeated delete is never a server error.
func (s *ItemService) Delete(ctx context.Context, p domain.Principal, id string) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.ActionDelete, item.OwnerID); err != nil {
		return err
	}
	return s.items.Delete(ctx, item.ID)
}

// List returns a page of items plus the total count. Listing is universally
// allowed; only the query parameters scope the result.
func (s *ItemService) List(ctx context.Context, p domain.Principal, q domain.ListItemsQuery) ([]domain.Item, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	if err := policy.Authorize(p, policy.ActionRead, ""); err != nil {
		return nil, 0, err
	}
	return s.items.List(ctx, q)
}
