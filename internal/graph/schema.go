package graph

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"itemvault/internal/domain"
	"itemvault/internal/policy"
)

// Resolver holds the store dependencies of the graph schema. Root fields hit
// the stores directly (they are entry points, not repeated relations);
// relation fields go through the request's loaders.
type Resolver struct {
	items domain.ItemRepository
	users domain.UserRepository
}

// NewSchema builds the executable read schema.
func NewSchema(items domain.ItemRepository, users domain.UserRepository) (graphql.Schema, error) {
	r := &Resolver{items: items, users: users}

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.ID),
				Resolve: userField(func(u *domain.User) interface{} { return u.ID }),
			},
			"email": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: userField(func(u *domain.User) interface{} { return u.Email }),
			},
			"username": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: userField(func(u *domain.User) interface{} { return u.Username }),
			},
			"fullName": &graphql.Field{
				Type:    graphql.String,
				Resolve: userField(func(u *domain.User) interface{} { return u.FullName }),
			},
			"isAdmin": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Resolve: userField(func(u *domain.User) interface{} { return u.IsAdmin }),
			},
		},
	})

	itemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Item",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.ID),
				Resolve: itemField(func(it *domain.Item) interface{} { return it.ID }),
			},
			"title": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: itemField(func(it *domain.Item) interface{} { return it.Title }),
			},
			"description": &graphql.Field{
				Type:    graphql.String,
				Resolve: itemField(func(it *domain.Item) interface{} { return it.Description }),
			},
			"createdAt": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.DateTime),
				Resolve: itemField(func(it *domain.Item) interface{} { return it.CreatedAt }),
			},
			"updatedAt": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.DateTime),
				Resolve: itemField(func(it *domain.Item) interface{} { return it.UpdatedAt }),
			},
			"owner": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveItemOwner,
			},
		},
	})

	// User.items closes the item→owner→items cycle; the guard's depth limit
	// is what keeps that cycle bounded.
	userType.AddFieldConfig("items", &graphql.Field{
		Type:    graphql.NewList(graphql.NewNonNull(itemType)),
		Resolve: r.resolveUserItems,
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"items": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(itemType)),
				Args: graphql.FieldConfigArgument{
					"skip":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultMaxResults},
					"search": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveItems,
			},
			"itemsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveItemsCount,
			},
			"item": &graphql.Field{
				Type: itemType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveItem,
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveMe,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// GuardListFields returns the guard configuration matching the schema: the
// fields that fan out into lists and their assumed page size.
func GuardListFields() map[string]int {
	return map[string]int{"items": domain.DefaultMaxResults}
}

// --- root resolvers ---

func (r *Resolver) resolveItems(p graphql.ResolveParams) (interface{}, error) {
	principal, err := requirePrincipal(p)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(principal, policy.ActionRead, ""); err != nil {
		return nil, err
	}

	q := domain.ListItemsQuery{
		Page: domain.PageRequest{
			MaxResults: intArg(p, "limit", domain.DefaultMaxResults),
			PageToken:  domain.EncodePageToken(intArg(p, "skip", 0)),
		},
	}
	if s, ok := p.Args["search"].(string); ok {
		q.Search = s
	}

	items, _, err := r.items.List(p.Context, q)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resolver) resolveItemsCount(p graphql.ResolveParams) (interface{}, error) {
	principal, err := requirePrincipal(p)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(principal, policy.ActionRead, ""); err != nil {
		return nil, err
	}

	search := ""
	if s, ok := p.Args["search"].(string); ok {
		search = s
	}
	return r.items.Count(p.Context, search)
}

func (r *Resolver) resolveItem(p graphql.ResolveParams) (interface{}, error) {
	principal, err := requirePrincipal(p)
	if err != nil {
		return nil, err
	}

	id, _ := p.Args["id"].(string)
	item, err := r.items.GetByID(p.Context, id)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := policy.Authorize(principal, policy.ActionRead, item.OwnerID); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Resolver) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	principal, err := requirePrincipal(p)
	if err != nil {
		return nil, err
	}
	return r.users.GetByID(p.Context, principal.UserID)
}

// --- relation resolvers ---

// resolveItemOwner loads the owning user through the request's batch loader.
// It returns a thunk so every sibling item registers its key before the
// first lookup blocks; the loader then issues one deduplicated batch.
// A dangling owner reference degrades to null instead of failing the read.
func (r *Resolver) resolveItemOwner(p graphql.ResolveParams) (interface{}, error) {
	item, err := itemFromSource(p.Source)
	if err != nil {
		return nil, err
	}
	loaders, ok := LoadersFromContext(p.Context)
	if !ok {
		return nil, fmt.Errorf("no loaders in request scope")
	}

	thunk := loaders.Users.Load(p.Context, item.OwnerID)
	return func() (interface{}, error) {
		u, err := thunk()
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return nil, nil
			}
			return nil, err
		}
		return u, nil
	}, nil
}

// resolveUserItems loads a user's items through the batch loader keyed by
// owner id. A user without items resolves to an empty list.
func (r *Resolver) resolveUserItems(p graphql.ResolveParams) (interface{}, error) {
	user, err := userFromSource(p.Source)
	if err != nil {
		return nil, err
	}
	loaders, ok := LoadersFromContext(p.Context)
	if !ok {
		return nil, fmt.Errorf("no loaders in request scope")
	}

	thunk := loaders.ItemsByOwner.Load(p.Context, user.ID)
	return func() (interface{}, error) {
		items, err := thunk()
		if err != nil {
			return nil, err
		}
		return items, nil
	}, nil
}

// --- source coercion ---

func itemFromSource(src interface{}) (*domain.Item, error) {
	switch it := src.(type) {
	case *domain.Item:
		return it, nil
	case domain.Item:
		return &it, nil
	default:
		return nil, fmt.Errorf("unexpected item source %T", src)
	}
}

func userFromSource(src interface{}) (*domain.User, error) {
	switch u := src.(type) {
	case *domain.User:
		return u, nil
	case domain.User:
		return &u, nil
	default:
		return nil, fmt.Errorf("unexpected user source %T", src)
	}
}

func itemField(get func(*domain.Item) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		it, err := itemFromSource(p.Source)
		if err != nil {
			return nil, err
		}
		return get(it), nil
	}
}

func userField(get func(*domain.User) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		u, err := userFromSource(p.Source)
		if err != nil {
			return nil, err
		}
		return get(u), nil
	}
}

func intArg(p graphql.ResolveParams, name string, fallback int) int {
	if v, ok := p.Args[name].(int); ok && v >= 0 {
		return v
	}
	return fallback
}

func requirePrincipal(p graphql.ResolveParams) (domain.Principal, error) {
	principal, ok := domain.PrincipalFromContext(p.Context)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated("no identity in request scope")
	}
	return principal, nil
}
