package interfaces

import (
	"context"

	"github.com/finlight/draftgen/internal/models"
)

// Extractor converts uploaded document payloads into text or trial balances.
type Extractor interface {
	// ExtractText extracts plain text from a PDF payload.
	ExtractText(pdfBytes []byte) (string, error)

	// ExtractTrialBalance parses a spreadsheet or CSV payload into an
	// account-name -> amount mapping. The filename hint selects the parser.
	ExtractTrialBalance(data []byte, filenameHint string) (models.TrialBalanceSet, error)
}

// DraftService runs the statement-drafting pipeline.
type DraftService interface {
	Draft(ctx context.Context, req *models.DraftRequest) (*models.DraftResult, error)
}
