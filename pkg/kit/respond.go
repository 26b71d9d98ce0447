package kit

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse wraps every error payload in a "detail" field. The detail is
// either a plain message string or a structured object; API clients and the
// storefront rely on the envelope staying stable.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, detail any) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}
