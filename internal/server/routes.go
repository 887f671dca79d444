package server

import (
	"net/http"
	"strings"

	"github.com/finlight/draftgen/internal/common"
)

// registerRoutes wires all REST endpoints onto the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	mux.HandleFunc("/api/draft", s.handleDraft)
	mux.HandleFunc("/api/draft/upload", s.handleDraftUpload)
	mux.HandleFunc("/api/extract", s.handleExtract)

	mux.HandleFunc("/api/registry/search", s.handleCompanySearch)
	mux.HandleFunc("/api/registry/company/", s.handleCompanyRouter)
}

// handleCompanyRouter dispatches /api/registry/company/{number} and
// /api/registry/company/{number}/filings.
func (s *Server) handleCompanyRouter(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/filings") {
		s.handleFilingHistory(w, r)
		return
	}
	s.handleCompanyProfile(w, r)
}

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to GET/HEAD /api/version with version info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
