// Package json contains utilities for handling JSON.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Decode decodes a single JSON value from r into dst and rejects
// trailing tokens after it.
func Decode(dst any, r io.Reader) error {
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	// Ensure no extra tokens after decoding
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("unexpected token after JSON object: %w", err)
	}
	return nil
}

// Encode writes src as a JSON response body.
func Encode(w http.ResponseWriter, status int, src any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(src); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
