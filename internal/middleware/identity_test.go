package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemvault/internal/domain"
)

// === Test Provisioner ===

type stubProvisioner struct {
	user   *domain.User
	err    error
	called bool
}

func (s *stubProvisioner) ResolveOrProvision(_ context.Context, identity domain.Identity) (*domain.User, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	if s.user != nil {
		return s.user, nil
	}
	return &domain.User{
		ID:       "u-" + identity.Username,
		Email:    identity.Email,
		Username: identity.Username,
		FullName: identity.FullName,
	}, nil
}

// nextHandler records whether it ran and which principal it saw.
func nextHandler() (http.Handler, func() (domain.Principal, bool)) {
	var p domain.Principal
	var found bool
	h := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		p, found = domain.PrincipalFromContext(r.Context())
	})
	return h, func() (domain.Principal, bool) { return p, found }
}

func TestIdentity_TrustedHeaders(t *testing.T) {
	handler, getPrincipal := nextHandler()
	provisioner := &stubProvisioner{}
	mw := Identity(NewTrustedHeaderSource(), provisioner, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderForwardedUser, "alice")
	req.Header.Set(HeaderForwardedEmail, "alice@example.com")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, provisioner.called)
	p, ok := getPrincipal()
	require.True(t, ok)
	assert.Equal(t, "u-alice", p.UserID)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.False(t, p.IsAdmin)
}

func TestIdentity_MissingHeadersIs401AndHandlerNeverRuns(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no headers", nil},
		{"missing email", map[string]string{HeaderForwardedUser: "alice"}},
		{"missing user", map[string]string{HeaderForwardedEmail: "alice@example.com"}},
		{"blank user", map[string]string{HeaderForwardedUser: "  ", HeaderForwardedEmail: "alice@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, getPrincipal := nextHandler()
			provisioner := &stubProvisioner{}
			mw := Identity(NewTrustedHeaderSource(), provisioner, "", nil)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			mw(handler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			assert.False(t, provisioner.called, "provisioner must not run without identity")
			_, ok := getPrincipal()
			assert.False(t, ok, "handler must not run without identity")
		})
	}
}

func TestIdentity_ForwardedGroupsGrantAdmin(t *testing.T) {
	handler, getPrincipal := nextHandler()
	mw := Identity(NewTrustedHeaderSource(), &stubProvisioner{}, "platform-admins", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderForwardedUser, "alice")
	req.Header.Set(HeaderForwardedEmail, "alice@example.com")
	req.Header.Set(HeaderForwardedGroups, "eng, platform-admins")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	p, ok := getPrincipal()
	require.True(t, ok)
	assert.True(t, p.IsAdmin)
	assert.Equal(t, []string{"eng", "platform-admins"}, p.Groups)
}

func TestIdentity_StoreAdminFlagWins(t *testing.T) {
	handler, getPrincipal := nextHandler()
	provisioner := &stubProvisioner{user: &domain.User{
		ID: "u1", Email: "root@example.com", Username: "root", IsAdmin: true,
	}}
	mw := Identity(NewTrustedHeaderSource(), provisioner, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderForwardedUser, "root")
	req.Header.Set(HeaderForwardedEmail, "root@example.com")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	p, ok := getPrincipal()
	require.True(t, ok)
	assert.True(t, p.IsAdmin)
}

func TestIdentity_DevSource(t *testing.T) {
	handler, getPrincipal := nextHandler()
	mw := Identity(NewDevSource(), &stubProvisioner{}, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	p, ok := getPrincipal()
	require.True(t, ok)
	assert.Equal(t, "devuser@example.com", p.Email)
	assert.False(t, p.IsAdmin, "dev identity is deliberately non-admin")
}

func TestIdentity_ProvisionerFailureIs503(t *testing.T) {
	handler, getPrincipal := nextHandler()
	provisioner := &stubProvisioner{err: domain.ErrUnavailable("store down")}
	mw := Identity(NewTrustedHeaderSource(), provisioner, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderForwardedUser, "alice")
	req.Header.Set(HeaderForwardedEmail, "alice@example.com")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	_, ok := getPrincipal()
	assert.False(t, ok)
}
