// Package app wires configuration, clients, and services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finlight/draftgen/internal/clients/gemini"
	"github.com/finlight/draftgen/internal/clients/registry"
	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/interfaces"
	"github.com/finlight/draftgen/internal/models"
	"github.com/finlight/draftgen/internal/services/draft"
	"github.com/finlight/draftgen/internal/services/extract"
)

// App holds all initialized application components.
type App struct {
	Config    *common.Config
	Logger    *common.Logger
	Registry  interfaces.RegistryClient
	Extractor interfaces.Extractor
	Draft     interfaces.DraftService
}

// NewApp initializes the application from an optional config path.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level, config.Logging.Format)

	registryClient := registry.NewClient(config.Clients.Registry.APIKey,
		registry.WithBaseURL(config.Clients.Registry.BaseURL),
		registry.WithDocumentURL(config.Clients.Registry.DocumentURL),
		registry.WithViewerBaseURL(config.Clients.Registry.ViewerBaseURL),
		registry.WithPageSize(config.Clients.Registry.PageSize),
		registry.WithRateLimit(config.Clients.Registry.RateLimit),
		registry.WithTimeout(config.Clients.Registry.GetTimeout()),
		registry.WithLogger(logger),
	)

	extractor := extract.NewService(extract.WithLogger(logger))

	// The Gemini client is optional at startup: without credentials the
	// drafting endpoints fail per-request with an auth error, but the
	// registry and extraction endpoints keep working.
	var geminiClient interfaces.GenerativeClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithCandidateModels(config.Clients.Gemini.CandidateModels()),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		geminiClient = client
	} else {
		logger.Warn().Msg("No Gemini API key configured; drafting requires dry-run mode")
	}

	draftOpts := []draft.ServiceOption{
		draft.WithLogger(logger),
		draft.WithDefaultFramework(config.Drafting.DefaultFramework),
		draft.WithLimits(config.Drafting.MaxAttachmentBytes, config.Drafting.PromptTextLimit),
		draft.WithDryRun(config.Drafting.DryRun),
	}

	if ref := loadReferenceDocument(config, logger); ref != nil {
		draftOpts = append(draftOpts, draft.WithReferenceDocument(ref))
	}

	draftService := draft.NewService(geminiClient, extractor, draftOpts...)

	return &App{
		Config:    config,
		Logger:    logger,
		Registry:  registryClient,
		Extractor: extractor,
		Draft:     draftService,
	}, nil
}

// loadReferenceDocument performs the one-time reference-document preload.
// A failed load is logged and the service proceeds with no reference,
// since the drafting pipeline tolerates its absence.
func loadReferenceDocument(config *common.Config, logger *common.Logger) *models.UploadedFile {
	path := config.Drafting.ReferencePDF
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to load reference document, proceeding without it")
		return nil
	}

	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Loaded reference document")
	return &models.UploadedFile{
		Name:     filepath.Base(path),
		MimeType: "application/pdf",
		Bytes:    data,
	}
}
