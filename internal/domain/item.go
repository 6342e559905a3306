package domain

import (
	"strings"
	"time"
)

// MaxTitleLength bounds item titles.
const MaxTitleLength = 255

// MaxDescriptionLength bounds item descriptions.
const MaxDescriptionLength = 4000

// Item is a user-owned resource. OwnerID is set once at creation and never
// reassigned.
type Item struct {
	ID          string
	Title       string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateItemRequest holds parameters for creating a new item. Any
// client-supplied owner is ignored; ownership is forced to the caller.
type CreateItemRequest struct {
	Title       string
	Description string
}

// Validate checks that the request is well-formed.
func (r *CreateItemRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return ErrValidation("item title is required")
	}
	if len(r.Title) > MaxTitleLength {
		return ErrValidation("item title must be at most %d characters", MaxTitleLength)
	}
	if len(r.Description) > MaxDescriptionLength {
		return ErrValidation("item description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// UpdateItemRequest holds a partial update. Nil fields are left unchanged.
type UpdateItemRequest struct {
	Title       *string
	Description *string
}

// Validate checks that the request is well-formed.
func (r *UpdateItemRequest) Validate() error {
	if r.Title == nil && r.Description == nil {
		return ErrValidation("update must change at least one field")
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return ErrValidation("item title must not be empty")
		}
		if len(t) > MaxTitleLength {
			return ErrValidation("item title must be at most %d characters", MaxTitleLength)
		}
		r.Title = &t
	}
	if r.Description != nil && len(*r.Description) > MaxDescriptionLength {
		return ErrValidation("item description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// Item sort keys accepted by list operations.
const (
	SortByTitle     = "title"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
)

// ListItemsQuery holds filters for listing items.
type ListItemsQuery struct {
	Page   PageRequest
	Search string // case-insensitive substring match on title
	SortBy string // one of the SortBy* constants; defaults to created_at
	Desc   bool
}

// Validate checks that the query is well-formed.
func (q *ListItemsQuery) Validate() error {
	switch q.SortBy {
	case "", SortByTitle, SortByCreatedAt, SortByUpdatedAt:
		return nil
	default:
		return ErrValidation("unknown sort key %q", q.SortBy)
	}
}
