// Package service implements the business operations of the item platform.
package service

import (
	"context"

	"itemvault/internal/domain"
)

var _ domain.UserProvisioner = (*UserService)(nil)

// UserService provides user resolution and JIT provisioning.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// ResolveOrProvision returns the durable user record for an identity,
// creating it on first sight. Identity fields are refreshed on every call so
// the record tracks what the upstream proxy last asserted.
func (s *UserService) ResolveOrProvision(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return s.users.Upsert(ctx, identity)
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// SetAdmin flips the admin flag of a user. Used by the seed command.
func (s *UserService) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	return s.users.SetAdmin(ctx, id, isAdmin)
}
