package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/boardbank/internal/api/apierr"
)

// MaxBodyBytes caps the size of a JSON request body
const MaxBodyBytes = 64 << 10

// Decode reads a single JSON value from the request body into dst. Any
// failure is returned as an INVALID_REQUEST error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apierr.NewInvalidRequestError("request body too large")
		case errors.Is(err, io.EOF):
			return apierr.NewInvalidRequestError("request body is empty")
		default:
			return apierr.NewInvalidRequestError("invalid request body")
		}
	}
	if dec.More() {
		return apierr.NewInvalidRequestError("request body must contain a single JSON value")
	}
	return nil
}
