package api

import (
	"net/http"
)

// GetCurrentUser handles GET /users/me. It returns the durable record behind
// the request's Principal.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalOr401(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(user))
}
