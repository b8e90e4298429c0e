package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies decoded through DecodeJSON.
const MaxBodyBytes = 1 << 20

// Envelope is the body shape of every JSON response:
//
//	{"success": true, "message": "...", "data": {...}}
//	{"success": false, "code": "token_expired", "message": "..."}
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`

	// Detail carries internal error text and is only set in development.
	Detail string `json:"detail,omitempty"`
}

// WriteJSON writes v with the given status and no-store caching headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope.
func WriteData(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{Success: true, Message: message, Data: data})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Every response from this service may carry tokens or identity data.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ErrBadBody is returned by DecodeJSON for anything that is not a single
// well-formed JSON object.
var ErrBadBody = errors.New("httpx: malformed JSON body")

// DecodeJSON reads one JSON object from r into v. Unknown fields are
// ignored, trailing data is rejected.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrBadBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrBadBody)
	}
	return nil
}
