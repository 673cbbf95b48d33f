// Package bind decodes a JSON request body into a struct and runs the
// struct's validate tags over it. Controllers call it for the bodies
// large enough to be worth capping, like order placement.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/validate"
)

const defaultLimit = 4 << 20 // 4 MB

// limit reads MAX_BODY_BYTES, falling back to 4 MB on absence or garbage.
func limit() int64 {
	raw := config.Get("MAX_BODY_BYTES", "")
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return n
}

// JSON decodes the capped request body into dest and validates it.
// Rule failures come back as a field-to-message map with a nil error;
// malformed or oversized bodies come back as a non-nil error.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, limit())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("bind: body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("bind: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
