package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"itemvault/internal/domain"
)

// CreateItemBody is the JSON payload for item creation. There is no owner
// field: ownership always goes to the caller.
type CreateItemBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateItemBody is the JSON payload for a partial item update.
type UpdateItemBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ListItems handles GET /items/.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalOr401(w, r)
	if !ok {
		return
	}

	q := domain.ListItemsQuery{
		Search: r.URL.Query().Get("search"),
		SortBy: r.URL.Query().Get("sort_by"),
		Desc:   r.URL.Query().Get("order") == "desc",
		Page: domain.PageRequest{
			PageToken: r.URL.Query().Get("page_token"),
		},
	}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeBodyError(w, &malformedBodyError{cause: err})
			return
		}
		q.Page.MaxResults = n
	}

	items, total, err := h.items.List(r.Context(), principal, q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	page := APIItemPage{
		Items:         make([]APIItem, 0, len(items)),
		Total:         total,
		NextPageToken: domain.NextPageToken(q.Page.Offset(), q.Page.Limit(), total),
	}
	for i := range items {
		page.Items = append(page.Items, itemToAPI(&items[i]))
	}
	writeJSON(w, http.StatusOK, page)
}

// GetItem handles GET /items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalOr401(w, r)
	if !ok {
		return
	}

	item, err := h.items.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToAPI(item))
}

// CreateItem handles POST /items/.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalOr401(w, r)
	if !ok {
		return
	}

	var body CreateItemBody
	if err := decodeBody(r, &body); err != nil {
		h.writeBodyError(w, err)
		return
	}

	item, err := h.items.Create(r.Context(), principal, domain.CreateItemRequest{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToAPI(item))
}

// UpdateItem handles PUT /items/{id}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalOr401(w, r)
	if !ok {
		return
	}

	var body UpdateItemBody
	if err := decodeBody(r, &body); err != nil {
		h.writeBodyError(w, err)
		return
	}

	item, err := h.items.Update(r.Context(), principal, chi.URLParam(r, "id"), domain.UpdateItemRequest{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToAPI(item))
}

// DeleteItem handles DELETE /items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalOr401(w, r)
	if !ok {
		return
	}

	if err := h.items.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
