// Package api provides HTTP handlers for the item platform REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"itemvault/internal/domain"
	"itemvault/internal/service"
)

// Handler implements the REST surface. Every route assumes the identity
// middleware already placed a Principal in the request context; the health
// check is the one route mounted outside it.
type Handler struct {
	items  *service.ItemService
	users  *service.UserService
	health *service.HealthService
	logger *slog.Logger
}

// NewHandler creates a Handler with its service dependencies.
func NewHandler(items *service.ItemService, users *service.UserService, health *service.HealthService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{items: items, users: users, health: health, logger: logger}
}

// --- wire types ---

// APIItem is the JSON shape of an item.
type APIItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// APIUser is the JSON shape of a user.
type APIUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// APIItemPage is the JSON shape of an item listing.
type APIItemPage struct {
	Items         []APIItem `json:"items"`
	Total         int64     `json:"total"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

func itemToAPI(it *domain.Item) APIItem {
	return APIItem{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		OwnerID:     it.OwnerID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func userToAPI(u *domain.User) APIUser {
	return APIUser{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		IsAdmin:  u.IsAdmin,
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := httpStatusFromDomainError(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, code, map[string]interface{}{
		"code":    code,
		"message": msg,
	})
}

// decodeBody parses a JSON request body into dst, mapping failures to 400.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &malformedBodyError{cause: err}
	}
	return nil
}

// malformedBodyError marks an unparseable request body (400, not 422).
type malformedBodyError struct {
	cause error
}

func (e *malformedBodyError) Error() string { return "malformed request body: " + e.cause.Error() }

func (h *Handler) writeBodyError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"code":    http.StatusBadRequest,
		"message": err.Error(),
	})
}

// principalOr401 extracts the context principal, answering 401 when absent.
// The identity middleware makes absence unreachable in production wiring;
// this guards routes exercised directly in tests.
func (h *Handler) principalOr401(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, domain.ErrUnauthenticated("no identity in request scope"))
	}
	return p, ok
}
