package server

import (
	"net/http"
	"strings"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/models"
	"github.com/finlight/draftgen/internal/services/extract"
)

// draftWireRequest is the JSON wire shape for POST /api/draft.
type draftWireRequest struct {
	Framework   string          `json:"framework"`
	CompanyName string          `json:"companyName"`
	Notes       string          `json:"notes"`
	PriorText   string          `json:"priorText"`
	TBParsed    models.TBParsed `json:"tbParsed"`
	Files       []wireFile      `json:"files"`
}

// handleDraft runs the drafting pipeline from a JSON request body.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var wire draftWireRequest
	if !DecodeJSON(w, r, &wire) {
		return
	}

	files, err := decodeWireFiles(wire.Files)
	if err != nil {
		WriteTypedError(w, err)
		return
	}

	req := &models.DraftRequest{
		Framework:   wire.Framework,
		CompanyName: wire.CompanyName,
		Notes:       wire.Notes,
		PriorText:   wire.PriorText,
		TBParsed:    wire.TBParsed.Normalize(),
		Files:       files,
	}

	result, err := s.app.Draft.Draft(r.Context(), req)
	if err != nil {
		s.logger.Warn().Err(err).Str("company", req.CompanyName).Msg("Draft request failed")
		WriteTypedError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleDraftUpload runs the drafting pipeline from a multipart upload.
// Form fields framework/companyName/notes/priorText accompany the files.
func (s *Server) handleDraftUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	form, err := decodeUploads(r)
	if err != nil {
		WriteTypedError(w, err)
		return
	}

	req := &models.DraftRequest{
		Framework:   form.Values["framework"],
		CompanyName: form.Values["companyName"],
		Notes:       form.Values["notes"],
		PriorText:   form.Values["priorText"],
		Files:       form.Files,
	}

	result, err := s.app.Draft.Draft(r.Context(), req)
	if err != nil {
		s.logger.Warn().Err(err).Str("company", req.CompanyName).Msg("Draft upload failed")
		WriteTypedError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// extractResult is one per-file extraction outcome.
type extractResult struct {
	Name         string                 `json:"name"`
	Kind         string                 `json:"kind"`
	Text         string                 `json:"text,omitempty"`
	TrialBalance models.TrialBalanceSet `json:"trialBalance,omitempty"`
}

// handleExtract converts uploaded files into extracted text or trial
// balances without invoking the generative model.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	form, err := decodeUploads(r)
	if err != nil {
		WriteTypedError(w, err)
		return
	}
	if len(form.Files) == 0 {
		WriteError(w, http.StatusBadRequest, "no files provided")
		return
	}

	results := make([]extractResult, 0, len(form.Files))
	for _, f := range form.Files {
		res, err := s.extractOne(f)
		if err != nil {
			WriteTypedError(w, err)
			return
		}
		results = append(results, res)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) extractOne(f models.UploadedFile) (extractResult, error) {
	kind := extract.DetectKind(f.MimeType, f.Name)
	res := extractResult{Name: f.Name, Kind: kind.String()}

	switch kind {
	case extract.KindPDF:
		text, err := s.app.Extractor.ExtractText(f.Bytes)
		if err != nil {
			return res, err
		}
		res.Text = strings.TrimSpace(text)
		return res, nil

	case extract.KindSpreadsheet, extract.KindText:
		tb, err := s.app.Extractor.ExtractTrialBalance(f.Bytes, f.Name)
		if err != nil {
			return res, err
		}
		res.TrialBalance = tb
		return res, nil

	default:
		return res, common.Validationf(
			"unsupported file type %q for %s (accepted: %s)",
			f.MimeType, f.Name, strings.Join(extract.AcceptedTypes(), ", "))
	}
}
