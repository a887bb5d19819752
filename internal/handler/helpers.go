package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"artisan/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError maps store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", notFound.Error())
		return
	}
	var denied *model.AccessDeniedError
	if errors.As(err, &denied) {
		writeError(w, http.StatusForbidden, "E_FORBIDDEN", denied.Error())
		return
	}
	var conflict *model.ConflictError
	if errors.As(err, &conflict) {
		writeError(w, http.StatusConflict, "E_CONFLICT", conflict.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
}
