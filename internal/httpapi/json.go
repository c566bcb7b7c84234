package httpapi

import (
    "encoding/json"
    "errors"
    "net/http"

    "github.com/tinoosan/groupledger/internal/errs"
)

type errorResponse struct {
    Error string `json:"error"`
    Code  string `json:"code"`
}

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

// writeErr maps a service error onto a status and a stable code.
// Storage details never reach the client.
func writeErr(w http.ResponseWriter, err error) {
    code := errs.Outcome(err)
    switch {
    case errors.Is(err, errs.ErrValidation):
        toJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: code})
    case errors.Is(err, errs.ErrStorageUnavailable):
        toJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable", Code: code})
    default:
        toJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: code})
    }
}
