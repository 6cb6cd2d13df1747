package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/oficina/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps a domain error to its status code. Anything unexpected is
// logged and reported as fallback.
func storeError(w http.ResponseWriter, err error, fallback string) {
	var (
		verr     *model.ValidationError
		conflict *model.ConflictError
		notFound *model.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &conflict):
		jsonError(w, http.StatusConflict, conflict.Message)
	case errors.As(err, &notFound):
		jsonError(w, http.StatusNotFound, notFound.Resource+" not found")
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
