// Package httpx holds the JSON helpers shared by the HTTP handlers.
package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/diewo77/invoice-desk/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Decode reads a JSON request body into dst. An empty or malformed body is
// reported as a validation error on "body", or on the offending field when
// the decoder can name it.
func Decode(r io.Reader, dst any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return apperr.InvalidField("body", "Unreadable request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.InvalidField("body", "Request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		field := "body"
		if te, ok := err.(*json.UnmarshalTypeError); ok && te.Field != "" {
			field = te.Field
		}
		return apperr.InvalidField(field, "Malformed JSON")
	}
	return nil
}
