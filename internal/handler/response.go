package handler

import (
	"encoding/json"
	"net/http"

	"carcompare-api/internal/model"
)

const (
	errInvalidRequest = "invalid_request"
	errNotFound       = "not_found"
	errStore          = "store_error"
	errSearch         = "search_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// decodeJSON reads the request body into v, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}
