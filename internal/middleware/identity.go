// Package middleware provides HTTP middleware: identity resolution,
// request IDs, and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"itemvault/internal/domain"
)

// Forwarded identity headers. Only an upstream authenticating proxy may set
// these; the service must never be reachable from an untrusted network path
// when TrustedHeaderSource is active.
const (
	HeaderForwardedUser   = "X-Forwarded-User"
	HeaderForwardedEmail  = "X-Forwarded-Email"
	HeaderForwardedGroups = "X-Forwarded-Groups"
)

// TrustedHeaderSource resolves identity from proxy-injected headers.
type TrustedHeaderSource struct{}

// NewTrustedHeaderSource creates a TrustedHeaderSource.
func NewTrustedHeaderSource() *TrustedHeaderSource {
	return &TrustedHeaderSource{}
}

// Resolve reads the forwarded identity headers. User and email are required;
// groups are optional (comma-separated).
func (s *TrustedHeaderSource) Resolve(_ context.Context, r *http.Request) (domain.Identity, error) {
	id := domain.Identity{
		Username: strings.TrimSpace(r.Header.Get(HeaderForwardedUser)),
		Email:    strings.TrimSpace(r.Header.Get(HeaderForwardedEmail)),
	}
	if err := id.Validate(); err != nil {
		return domain.Identity{}, err
	}
	if raw := r.Header.Get(HeaderForwardedGroups); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				id.Groups = append(id.Groups, g)
			}
		}
	}
	return id, nil
}

// DevSource returns a fixed development identity for every request.
// Config validation refuses it in production.
type DevSource struct {
	identity domain.Identity
}

// NewDevSource creates a DevSource with the default development identity.
func NewDevSource() *DevSource {
	return &DevSource{identity: domain.Identity{
		Username: "devuser",
		Email:    "devuser@example.com",
		FullName: "Development User",
	}}
}

// Resolve returns the fixed development identity.
func (s *DevSource) Resolve(context.Context, *http.Request) (domain.Identity, error) {
	return s.identity, nil
}

// BearerTokenSource resolves identity from an HS256-signed bearer token.
// It exists for local tooling that talks to the service without the proxy.
type BearerTokenSource struct {
	validator JWTValidator
}

// NewBearerTokenSource creates a BearerTokenSource using the given validator.
func NewBearerTokenSource(validator JWTValidator) *BearerTokenSource {
	return &BearerTokenSource{validator: validator}
}

// Resolve validates the Authorization bearer token and maps its claims.
func (s *BearerTokenSource) Resolve(ctx context.Context, r *http.Request) (domain.Identity, error) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return domain.Identity{}, domain.ErrUnauthenticated("missing bearer token")
	}
	claims, err := s.validator.Validate(ctx, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthenticated("invalid bearer token: %v", err)
	}
	id := domain.Identity{
		Username: claims.Subject,
		Groups:   claims.Groups,
	}
	if claims.Email != nil {
		id.Email = *claims.Email
	}
	if claims.Name != nil {
		id.FullName = *claims.Name
	}
	if err := id.Validate(); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Identity returns middleware that resolves the caller's identity via the
// configured source, provisions the durable user record on first sight, and
// attaches the resulting Principal to the request context. Resolution or
// provisioning failure short-circuits with a JSON error; the wrapped handler
// never runs without a Principal.
//
// adminGroup, when non-empty, grants admin to identities whose forwarded
// groups contain it, in addition to users flagged in the store.
func Identity(source domain.IdentitySource, provisioner domain.UserProvisioner, adminGroup string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := source.Resolve(r.Context(), r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err)
				return
			}

			user, err := provisioner.ResolveOrProvision(r.Context(), identity)
			if err != nil {
				logger.Error("user provisioning failed", "email", identity.Email, "error", err)
				writeAuthError(w, http.StatusServiceUnavailable, domain.ErrUnavailable("identity store unavailable"))
				return
			}

			principal := domain.Principal{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
				IsAdmin:  user.IsAdmin || inGroup(identity.Groups, adminGroup),
				Groups:   identity.Groups,
			}

			ctx := domain.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func inGroup(groups []string, group string) bool {
	if group == "" {
		return false
	}
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}

func writeAuthError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": err.Error(),
	})
}
