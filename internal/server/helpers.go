package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/finlight/draftgen/internal/common"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorDetails writes a JSON error response with diagnostic details.
func WriteErrorDetails(w http.ResponseWriter, statusCode int, message, details string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}

// WriteTypedError maps an error onto the taxonomy status code and writes it.
func WriteTypedError(w http.ResponseWriter, err error) {
	status, details := StatusForError(err)
	if details != "" {
		WriteErrorDetails(w, status, err.Error(), details)
		return
	}
	WriteError(w, status, err.Error())
}

// StatusForError maps the error taxonomy onto HTTP status codes:
// validation/extraction 400, missing credentials 500, upstream API
// passthrough-or-502, timeout 504, exhausted models 500.
func StatusForError(err error) (status int, details string) {
	var (
		validation  *common.ValidationError
		extraction  *common.ExtractionError
		auth        *common.UpstreamAuthError
		upstream    *common.UpstreamAPIError
		timeout     *common.TimeoutError
		unavailable *common.ModelUnavailableError
		noText      *common.NoTextError
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &extraction):
		return http.StatusBadRequest, ""
	case errors.As(err, &auth):
		return http.StatusInternalServerError, ""
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout, ""
	case errors.As(err, &noText):
		return http.StatusBadGateway, ""
	case errors.As(err, &unavailable):
		return http.StatusInternalServerError, strings.Join(unavailable.Tried, ", ")
	case errors.As(err, &upstream):
		if upstream.StatusCode >= 400 {
			return upstream.StatusCode, upstream.Body
		}
		return http.StatusBadGateway, upstream.Body
	default:
		return http.StatusInternalServerError, ""
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	// Generous cap: base64-encoded attachments inflate payloads by ~4/3.
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/registry/company/{number}/filings, calling
// PathParam(r, "/api/registry/company/", "/filings") extracts {number}.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
