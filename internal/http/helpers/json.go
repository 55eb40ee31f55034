package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	"github.com/digipraman/loantrack/internal/store/core"
)

// MaxBodyBytes bounds request bodies; overridable from config at wiring time.
var MaxBodyBytes int64 = 1 << 20

// ReadJSON decodes the body, rejecting non-JSON content types and unknown
// fields (a typo in a PATCH silently dropping a field is worse than a 400).
// Returns false if it already wrote the error response.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("Content-Type must be application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail(err.Error()))
		return false
	}
	return true
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Pagination parses skip/limit query params with defaults and a ceiling.
func Pagination(r *http.Request, defaultLimit, maxLimit int) (core.Page, error) {
	p := core.Page{Skip: 0, Limit: defaultLimit}
	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, httperrors.ErrInvalidParameter.WithDetail("skip must be a non-negative integer")
		}
		p.Skip = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, httperrors.ErrInvalidParameter.WithDetail("limit must be a positive integer")
		}
		p.Limit = n
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p, nil
}
