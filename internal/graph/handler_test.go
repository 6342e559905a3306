package graph

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemvault/internal/domain"
)

func setupGraphHandler(t *testing.T, items *fakeItemRepo, users *countingUserStore) *Handler {
	t.Helper()
	schema, err := NewSchema(items, fixedUserStore{users: users.users})
	require.NoError(t, err)

	guard := NewGuard(GuardConfig{
		MaxDepth:   4,
		MaxCost:    5000,
		ListFields: GuardListFields(),
	})
	return NewHandler(schema, guard, users, items, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postGraph(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/graphql", strings.NewReader(body))
	req = req.WithContext(domain.WithPrincipal(req.Context(), domain.Principal{
		UserID: "u1", Username: "alice", Email: "alice@example.com",
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGraphHandlerExecutesQuery(t *testing.T) {
	items := &fakeItemRepo{items: []domain.Item{{ID: "i1", Title: "first", OwnerID: "u1"}}}
	users := &countingUserStore{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "alice@example.com", Username: "alice"},
	}}
	h := setupGraphHandler(t, items, users)

	rec := postGraph(t, h, `{"query": "{ items { id owner { email } } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Items []struct {
				ID    string `json:"id"`
				Owner struct {
					Email string `json:"email"`
				} `json:"owner"`
			} `json:"items"`
		} `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Errors)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "alice@example.com", resp.Data.Items[0].Owner.Email)
}

func TestGraphHandlerRejectsDeepQueryBeforeStores(t *testing.T) {
	items := &fakeItemRepo{}
	users := &countingUserStore{users: map[string]*domain.User{}}
	h := setupGraphHandler(t, items, users)

	deep := `{"query": "{ items { owner { items { owner { items { id } } } } } }"}`
	rec := postGraph(t, h, deep)

	// Guard rejections are GraphQL errors, not transport errors.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Errors []struct {
			Message    string            `json:"message"`
			Extensions map[string]string `json:"extensions"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "QUERY_TOO_EXPENSIVE", resp.Errors[0].Extensions["code"])

	// The rejection happened before resolution: no store was touched.
	items.mu.Lock()
	assert.Zero(t, items.listCalls)
	items.mu.Unlock()
	users.mu.Lock()
	assert.Zero(t, users.calls)
	users.mu.Unlock()
}

func TestGraphHandlerRejectsExpensiveQuery(t *testing.T) {
	items := &fakeItemRepo{}
	users := &countingUserStore{users: map[string]*domain.User{}}
	h := setupGraphHandler(t, items, users)

	wide := `{"query": "{ items(limit: 1000) { owner { items(limit: 1000) { id } } } }"}`
	rec := postGraph(t, h, wide)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "QUERY_TOO_EXPENSIVE")

	items.mu.Lock()
	assert.Zero(t, items.listCalls)
	items.mu.Unlock()
}

func TestGraphHandlerParseFailure(t *testing.T) {
	h := setupGraphHandler(t, &fakeItemRepo{}, &countingUserStore{users: map[string]*domain.User{}})

	rec := postGraph(t, h, `{"query": "{ items { id "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GRAPHQL_PARSE_FAILED")
}

func TestGraphHandlerMalformedBody(t *testing.T) {
	h := setupGraphHandler(t, &fakeItemRepo{}, &countingUserStore{users: map[string]*domain.User{}})

	rec := postGraph(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postGraph(t, h, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing query")
}
