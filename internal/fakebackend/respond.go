// ABOUTME: JSON response and request helpers for the fake backend
// ABOUTME: Error bodies follow the Django REST framework shapes

package fakebackend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeDetail writes the {"detail", "code"} body used for auth failures.
func writeDetail(w http.ResponseWriter, code int, detail, errCode string) {
	body := map[string]string{"detail": detail}
	if errCode != "" {
		body["code"] = errCode
	}
	writeJSON(w, code, body)
}

// writeFieldErrors writes a validation error keyed by field. Errors not tied
// to a field go under non_field_errors.
func writeFieldErrors(w http.ResponseWriter, field, message string) {
	if field == "" {
		field = "non_field_errors"
	}
	writeJSON(w, http.StatusBadRequest, map[string][]string{field: {message}})
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decodeJSON decodes the request body into v, answering 400 on failure.
// An empty body decodes as the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error(), "parse_error")
		return false
	}
	return true
}

// intParam reads a numeric path parameter, answering 404 when malformed.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.", "")
		return 0, false
	}
	return n, true
}

// queryInt reads a positive integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
