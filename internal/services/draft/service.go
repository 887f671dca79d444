// Package draft assembles generative requests for financial-statement
// drafting and runs them through the Gemini client.
package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/interfaces"
	"github.com/finlight/draftgen/internal/models"
	"github.com/finlight/draftgen/internal/services/extract"
)

// Service implements the DraftService interface
type Service struct {
	gemini    interfaces.GenerativeClient
	extractor interfaces.Extractor
	logger    *common.Logger

	defaultFramework   string
	maxAttachmentBytes int64
	promptTextLimit    int
	dryRun             bool

	// reference is an optional document loaded once at process start and
	// reused across requests. Nil when absent; the pipeline tolerates that.
	reference *models.UploadedFile
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDryRun skips the external generative call and echoes received inputs
func WithDryRun(dryRun bool) ServiceOption {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// WithReferenceDocument sets the preloaded reference document
func WithReferenceDocument(ref *models.UploadedFile) ServiceOption {
	return func(s *Service) {
		s.reference = ref
	}
}

// WithLimits overrides the attachment ceiling and prompt text limit
func WithLimits(maxAttachmentBytes int64, promptTextLimit int) ServiceOption {
	return func(s *Service) {
		if maxAttachmentBytes > 0 {
			s.maxAttachmentBytes = maxAttachmentBytes
		}
		if promptTextLimit > 0 {
			s.promptTextLimit = promptTextLimit
		}
	}
}

// WithDefaultFramework sets the reporting framework used when the request
// does not name one
func WithDefaultFramework(framework string) ServiceOption {
	return func(s *Service) {
		if framework != "" {
			s.defaultFramework = framework
		}
	}
}

// NewService creates a new drafting service. The gemini client may be nil
// when credentials are absent; drafting then fails with an auth error
// unless dry-run is enabled.
func NewService(gemini interfaces.GenerativeClient, extractor interfaces.Extractor, opts ...ServiceOption) *Service {
	s := &Service{
		gemini:             gemini,
		extractor:          extractor,
		logger:             common.NewSilentLogger(),
		defaultFramework:   "IFRS",
		maxAttachmentBytes: 10 * 1024 * 1024,
		promptTextLimit:    16000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft runs the full pipeline: build the instruction prompt, dispatch
// attachments by kind, and negotiate the generation across the candidate
// model list.
func (s *Service) Draft(ctx context.Context, req *models.DraftRequest) (*models.DraftResult, error) {
	if req == nil || req.IsEmpty() {
		return nil, common.Validationf("drafting request carries no trial balance, prior text, notes, or files")
	}

	framework := strings.TrimSpace(req.Framework)
	if framework == "" {
		framework = s.defaultFramework
	}

	parts := []models.PromptPart{
		models.TextPart(BuildPrompt(framework, req.CompanyName, req.Notes, req.PriorText, req.TBParsed, s.promptTextLimit)),
	}

	if s.reference != nil {
		parts = append(parts, models.BinaryPart(s.reference.MimeType, s.reference.Bytes))
	}

	attachments, err := s.buildAttachmentParts(req.Files)
	if err != nil {
		return nil, err
	}
	parts = append(parts, attachments...)

	if s.dryRun {
		return s.dryRunResult(req, parts), nil
	}

	if s.gemini == nil {
		return nil, &common.UpstreamAuthError{Service: "gemini"}
	}

	s.logger.Info().
		Str("framework", framework).
		Str("company", req.CompanyName).
		Int("parts", len(parts)).
		Msg("Drafting financial statements")

	return s.gemini.Generate(ctx, parts, nil)
}

// buildAttachmentParts dispatches uploads by detected kind: PDFs and
// images pass through as inline binary for the model to read; spreadsheets
// are extracted to labeled CSV text; text payloads are labeled and
// decoded. The running byte total is checked per file so the first file
// that crosses the ceiling is the one named in the error.
func (s *Service) buildAttachmentParts(files []models.UploadedFile) ([]models.PromptPart, error) {
	var parts []models.PromptPart
	var total int64

	for _, f := range files {
		total += int64(len(f.Bytes))
		if total > s.maxAttachmentBytes {
			return nil, common.Validationf(
				"attachment %s pushes total upload size to %d bytes, above the %d byte limit",
				f.Name, total, s.maxAttachmentBytes)
		}

		switch extract.DetectKind(f.MimeType, f.Name) {
		case extract.KindPDF, extract.KindImage:
			parts = append(parts, models.BinaryPart(f.MimeType, f.Bytes))

		case extract.KindSpreadsheet:
			tb, err := s.extractor.ExtractTrialBalance(f.Bytes, f.Name)
			if err != nil {
				return nil, err
			}
			var sb strings.Builder
			sb.WriteString(fmt.Sprintf("Trial balance extracted from %s:\n\n", f.Name))
			writeTrialBalance(&sb, tb)
			parts = append(parts, models.TextPart(sb.String()))

		case extract.KindText:
			parts = append(parts, models.TextPart(
				fmt.Sprintf("Contents of %s:\n\n%s", f.Name, string(f.Bytes))))

		default:
			return nil, common.Validationf(
				"unsupported attachment type %q for %s (accepted: %s)",
				f.MimeType, f.Name, strings.Join(extract.AcceptedTypes(), ", "))
		}
	}

	return parts, nil
}

// dryRunResult echoes the assembled request instead of calling the model.
func (s *Service) dryRunResult(req *models.DraftRequest, parts []models.PromptPart) *models.DraftResult {
	var sb strings.Builder
	sb.WriteString("DRY RUN: no generative call made.\n\n")
	sb.WriteString(fmt.Sprintf("Prompt parts: %d\n", len(parts)))
	sb.WriteString(fmt.Sprintf("Files: %d\n", len(req.Files)))
	for _, f := range req.Files {
		sb.WriteString(fmt.Sprintf("- %s (%s, %d bytes)\n", f.Name, f.MimeType, len(f.Bytes)))
	}
	sb.WriteString(fmt.Sprintf("Current TB accounts: %d, prior TB accounts: %d\n",
		len(req.TBParsed.Current), len(req.TBParsed.Prior)))
	sb.WriteString("\n--- Instruction ---\n")
	sb.WriteString(parts[0].Text)

	return &models.DraftResult{Output: sb.String(), Model: "dry-run"}
}

// Ensure Service implements DraftService
var _ interfaces.DraftService = (*Service)(nil)
