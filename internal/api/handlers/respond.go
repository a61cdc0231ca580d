package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/targets"
)

const msgNotFound = "Not found."

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, dto.OK(data))
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.Err(message))
}

func respondValidation(w http.ResponseWriter, errs map[string]string) bool {
	if len(errs) == 0 {
		return false
	}
	respondError(w, http.StatusBadRequest, dto.JoinErrors(errs))
	return true
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// urlID parses a numeric path parameter.
func urlID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// respondTargetError maps target resolution failures to 400 or 404.
func respondTargetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, targets.ErrUnsupportedTarget):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, targets.ErrTargetNotFound):
		respondError(w, http.StatusNotFound, msgNotFound)
	default:
		respondError(w, http.StatusInternalServerError, "Failed to resolve target")
	}
}
