package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeBody decodes a JSON request body into dst, reporting malformed input
// as a validation error.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ValidationError("Invalid request body").WithCause(err)
	}
	return nil
}
