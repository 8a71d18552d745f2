package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kalambet/readmepro/internal/github"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/publish"
	"github.com/kalambet/readmepro/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// errNotFound marks a request naming an id that is not in the profile.
var errNotFound = errors.New("not found")

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// writeErr maps domain errors onto the JSON error envelope.
func writeErr(w http.ResponseWriter, err error) {
	var se *github.StatusError
	switch {
	case errors.Is(err, profile.ErrInvalid),
		errors.Is(err, github.ErrInvalidGistURL),
		errors.Is(err, publish.ErrNoUsername),
		errors.Is(err, publish.ErrNoToken):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, errNotFound),
		errors.Is(err, profile.ErrUnknownTemplate),
		errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.As(err, &se), errors.Is(err, publish.ErrPublishFailed):
		httpError(w, http.StatusBadGateway, "api_error", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// decodeBody reads a size-limited JSON body into v, writing a 400 on
// failure. It reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
