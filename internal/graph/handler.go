package graph

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"

	"itemvault/internal/domain"
)

// Handler serves POST /graphql. Every request passes the static guard before
// any resolver runs, then gets a fresh set of batch loaders for its lifetime.
type Handler struct {
	schema graphql.Schema
	guard  *Guard
	users  UserBatchGetter
	items  ItemBatchGetter
	logger *slog.Logger
}

// NewHandler wires the graph endpoint.
func NewHandler(schema graphql.Schema, guard *Guard, users UserBatchGetter, items ItemBatchGetter, logger *slog.Logger) *Handler {
	return &Handler{
		schema: schema,
		guard:  guard,
		users:  users,
		items:  items,
		logger: logger.With("component", "graph"),
	}
}

type graphRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type graphError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

type graphErrorResponse struct {
	Errors []graphError `json:"errors"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		writeGraphJSON(w, http.StatusBadRequest, graphErrorResponse{
			Errors: []graphError{{Message: "malformed request body"}},
		})
		return
	}
	if req.Query == "" {
		writeGraphJSON(w, http.StatusBadRequest, graphErrorResponse{
			Errors: []graphError{{Message: "missing query"}},
		})
		return
	}

	// The guard runs on the raw document. A rejected query never reaches a
	// resolver, so it causes no store access at all.
	if err := h.guard.Check(req.Query); err != nil {
		var tooExpensive *domain.QueryTooExpensiveError
		if errors.As(err, &tooExpensive) {
			h.logger.Warn("query rejected by guard", "reason", tooExpensive.Message)
			writeGraphJSON(w, http.StatusOK, graphErrorResponse{
				Errors: []graphError{{
					Message:    tooExpensive.Message,
					Extensions: map[string]interface{}{"code": "QUERY_TOO_EXPENSIVE"},
				}},
			})
			return
		}
		var invalid *domain.ValidationError
		if errors.As(err, &invalid) {
			writeGraphJSON(w, http.StatusOK, graphErrorResponse{
				Errors: []graphError{{
					Message:    invalid.Message,
					Extensions: map[string]interface{}{"code": "GRAPHQL_PARSE_FAILED"},
				}},
			})
			return
		}
		h.logger.Error("guard check failed", "error", err)
		writeGraphJSON(w, http.StatusInternalServerError, graphErrorResponse{
			Errors: []graphError{{Message: "internal error"}},
		})
		return
	}

	ctx := WithLoaders(r.Context(), NewLoaders(h.users, h.items))
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})

	writeGraphJSON(w, http.StatusOK, result)
}

func writeGraphJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
