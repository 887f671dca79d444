// Package interfaces defines client and service contracts for draftgen.
package interfaces

import (
	"context"

	"github.com/finlight/draftgen/internal/models"
)

// RegistryClient fetches company data from a companies-registry API.
type RegistryClient interface {
	// GetCompanyProfile fetches the profile for a company number.
	GetCompanyProfile(ctx context.Context, companyNumber string) (*models.CompanyProfile, error)

	// SearchCompanies searches the registry by free-text query.
	SearchCompanies(ctx context.Context, query string) ([]models.CompanyMatch, error)

	// GetFilingHistory returns accounts filings for a company, newest first,
	// truncated to pageSize (client default when pageSize <= 0). Documents
	// that cannot be resolved to a direct PDF are included with a viewer-URL
	// fallback rather than dropped.
	GetFilingHistory(ctx context.Context, companyNumber string, pageSize int) ([]models.FilingRecord, error)
}

// GenerativeClient sends assembled prompt parts to a generative-language API.
type GenerativeClient interface {
	// Generate walks the candidate model list in order and returns the first
	// non-empty result. An empty candidates slice uses the configured defaults.
	Generate(ctx context.Context, parts []models.PromptPart, candidates []string) (*models.DraftResult, error)

	// ListModels enumerates models available to the configured credentials.
	ListModels(ctx context.Context) ([]string, error)
}
