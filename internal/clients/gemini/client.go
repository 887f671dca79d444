// Package gemini provides a client for the Google Gemini API with
// model-candidate fallback negotiation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/interfaces"
	"github.com/finlight/draftgen/internal/models"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 20 * time.Second
)

// Client implements the GenerativeClient interface
type Client struct {
	client  *genai.Client
	models  []string
	timeout time.Duration
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithCandidateModels sets the default model candidates, tried in order
func WithCandidateModels(candidates []string) ClientOption {
	return func(c *Client) {
		if len(candidates) > 0 {
			c.models = candidates
		}
	}
}

// WithTimeout sets the per-generation deadline
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, &common.UpstreamAuthError{Service: "gemini"}
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:  genaiClient,
		models:  []string{DefaultModel},
		timeout: DefaultTimeout,
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate sends the assembled prompt parts to the first candidate model
// that yields a non-empty response. An empty candidates slice falls back
// to the configured defaults.
func (c *Client) Generate(ctx context.Context, parts []models.PromptPart, candidates []string) (*models.DraftResult, error) {
	if len(candidates) == 0 {
		candidates = c.models
	}
	if len(parts) == 0 {
		return nil, common.Validationf("generation request has no prompt parts")
	}

	contents := toContents(parts)

	call := func(ctx context.Context, model string) (string, error) {
		c.logger.Debug().Str("model", model).Int("parts", len(parts)).Msg("Generating content")
		result, err := c.client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", err
		}
		return extractTextFromResponse(model, result)
	}

	result, tried, err := generateWithFallback(ctx, candidates, c.timeout, call, c.logger)
	if err != nil {
		var exhausted *exhaustedError
		if asExhausted(err, &exhausted) {
			// Secondary diagnostic: enumerate what this key can actually see.
			available, listErr := c.ListModels(ctx)
			if listErr != nil {
				c.logger.Debug().Err(listErr).Msg("Model enumeration for diagnostics failed")
			}
			return nil, &common.ModelUnavailableError{Tried: tried, Available: available}
		}
		return nil, wrapTerminal(err)
	}

	return result, nil
}

// wrapTerminal maps raw SDK failures onto the upstream-API error type so
// the server can classify them. Already-typed errors pass through.
func wrapTerminal(err error) error {
	var (
		noText   *common.NoTextError
		timeout  *common.TimeoutError
		badInput *common.ValidationError
	)
	if errors.As(err, &noText) || errors.As(err, &timeout) || errors.As(err, &badInput) {
		return err
	}
	return &common.UpstreamAPIError{Service: "gemini", Body: err.Error()}
}

// ListModels enumerates models available to the configured credentials.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		names = append(names, m.Name)
	}
	return names, nil
}

// toContents converts prompt parts into genai content. The first part is
// the instruction text; attachments follow in upload order.
func toContents(parts []models.PromptPart) []*genai.Content {
	genaiParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsText() {
			genaiParts = append(genaiParts, &genai.Part{Text: p.Text})
		} else {
			genaiParts = append(genaiParts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Data},
			})
		}
	}

	return []*genai.Content{{Role: genai.RoleUser, Parts: genaiParts}}
}

// extractTextFromResponse extracts the first candidate's first text-bearing
// part. Absence of text is a distinct no-text condition carrying finish
// reason metadata, not a transport error.
func extractTextFromResponse(model string, result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 {
		return "", &common.NoTextError{Model: model}
	}

	cand := result.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	return "", &common.NoTextError{Model: model, FinishReason: string(cand.FinishReason)}
}

// Ensure Client implements GenerativeClient
var _ interfaces.GenerativeClient = (*Client)(nil)
