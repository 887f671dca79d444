package server

import (
	"net/http"
	"strconv"
	"strings"
)

// handleCompanyProfile serves GET /api/registry/company/{number}.
func (s *Server) handleCompanyProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	number := PathParam(r, "/api/registry/company/", "")
	if number == "" {
		WriteError(w, http.StatusBadRequest, "company number is required")
		return
	}

	profile, err := s.app.Registry.GetCompanyProfile(r.Context(), number)
	if err != nil {
		s.logger.Warn().Err(err).Str("company", number).Msg("Company profile lookup failed")
		WriteTypedError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// handleCompanySearch serves GET /api/registry/search?q=.
func (s *Server) handleCompanySearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	matches, err := s.app.Registry.SearchCompanies(r.Context(), query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Company search failed")
		WriteTypedError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": matches})
}

// handleFilingHistory serves GET /api/registry/company/{number}/filings.
// Accepts an optional items_per_page query parameter.
func (s *Server) handleFilingHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	number := PathParam(r, "/api/registry/company/", "/filings")
	if number == "" {
		WriteError(w, http.StatusBadRequest, "company number is required")
		return
	}

	pageSize := 0
	if raw := r.URL.Query().Get("items_per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = n
		}
	}

	filings, err := s.app.Registry.GetFilingHistory(r.Context(), number, pageSize)
	if err != nil {
		s.logger.Warn().Err(err).Str("company", number).Msg("Filing history fetch failed")
		WriteTypedError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": filings})
}
