package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Labels used in the error envelope.
const (
	labelUnauthorized = "Unauthorized"
	labelForbidden    = "Forbidden"
	labelNotFound     = "Not found"
	labelBadRequest   = "Bad request"
	labelInternal     = "Internal error"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the failure envelope every error response shares.
func writeError(w http.ResponseWriter, code int, label, message string) {
	writeJSON(w, code, map[string]string{
		"error":   label,
		"message": message,
	})
}

// decodeJSON decodes a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
