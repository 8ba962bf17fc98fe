package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ahsanfayaz52/hopperhelps/internal/ai"
	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string          `json:"error"`
	Message string          `json:"message,omitempty"`
	Details []ai.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeInvalid(w http.ResponseWriter, details ...ai.FieldError) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request data", Details: details})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// writeServiceError maps journal and store errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	var verr *journal.ValidationError
	switch {
	case errors.As(err, &verr):
		writeInvalid(w, ai.FieldError{Path: verr.Field, Message: verr.Message})
	case errors.Is(err, common.ErrInvalidInput):
		writeInvalid(w, ai.FieldError{Message: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict, please retry")
	default:
		log.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "An error occurred.")
	}
}
