package twin

import (
	"encoding/json"
	"errors"
	"net/http"
)

// statusError is a store failure that maps to an HTTP status.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func errNotFound(what string) error {
	return &statusError{status: http.StatusNotFound, message: what + " not found"}
}

func errConflict(msg string) error {
	return &statusError{status: http.StatusConflict, message: msg}
}

func errBadRequest(msg string) error {
	return &statusError{status: http.StatusBadRequest, message: msg}
}

// Error bodies follow the backend: role and lookup failures answer
// {"error": msg}, request validation answers {"detail": msg}.
type errorBody struct {
	Error string `json:"error"`
}

type detailBody struct {
	Detail string `json:"detail"`
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		writeJSON(w, status, detailBody{Detail: message})
		return
	}
	writeJSON(w, status, errorBody{Error: message})
}

// writeStoreError maps a store error to its status; anything unknown is a 500.
func writeStoreError(w http.ResponseWriter, err error) {
	var se *statusError
	if errors.As(err, &se) {
		writeError(w, se.status, se.message)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
