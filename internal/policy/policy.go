// Package policy decides whether a principal may act on a resource.
//
// The decision is a pure function of (principal, action, resource owner):
// no I/O, no hidden state. Both the REST handlers and the graph resolvers
// call the same function so enforcement cannot diverge between API styles.
package policy

import "itemvault/internal/domain"

// Action is a policy-checked operation on an owned resource.
type Action string

// Actions with defined outcomes. Anything else fails closed.
const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize returns nil when principal p may perform action on a resource
// owned by ownerID, and an AccessDeniedError otherwise.
//
//   - read: always allowed; collection visibility is the caller's concern.
//   - create: allowed for any authenticated principal. Ownership of the
//     created resource is forced to the principal by the service layer, so
//     ownerID is not consulted here.
//   - update/delete: allowed for the owner or an admin.
//   - unknown actions: denied.
func Authorize(p domain.Principal, action Action, ownerID string) error {
	switch action {
	case ActionRead:
		return nil
	case ActionCreate:
		return nil
	case ActionUpdate, ActionDelete:
		if p.IsAdmin || p.UserID == ownerID {
			return nil
		}
		return domain.ErrAccessDenied("user %q may not %s a resource owned by %q", p.Username, action, ownerID)
	default:
		return domain.ErrAccessDenied("action %q is not permitted", action)
	}
}
