package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/service"
)

type ListPageResp[T any] struct {
	Page  []T `json:"page"`
	Total int `json:"total"`
}

// ErrorResp is the uniform error body. Details carries field-scoped
// violations when validation blocked the request.
type ErrorResp struct {
	Error   string            `json:"error"`
	Details []model.Violation `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResp{Error: msg})
}

func writeViolations(w http.ResponseWriter, vs []model.Violation) {
	writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "validation failed", Details: model.Fatal(vs)})
}

// writeServiceError maps domain errors to HTTP statuses. Remote rejections
// keep their original status and message; nothing is retried or rephrased.
func writeServiceError(w http.ResponseWriter, err error) {
	var re *marktplaats.RemoteError

	switch {
	case errors.Is(err, model.ErrDraftNotFound), errors.Is(err, model.ErrListingNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrLimitExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())

	case errors.Is(err, model.ErrImageSetFull),
		errors.Is(err, model.ErrImageTooLarge),
		errors.Is(err, model.ErrNotAnImage),
		errors.Is(err, service.ErrCategoryMatch):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &re):
		status := re.StatusCode
		if status < 400 || status > 499 {
			status = http.StatusBadGateway
		}
		writeError(w, status, re.Message)

	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// userID extracts the opaque user token every authenticated call carries as
// a query parameter. It writes the 400 itself when missing.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("user_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return "", false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return false
	}

	return true
}
