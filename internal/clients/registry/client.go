// Package registry provides a client for a companies-registry API
// (Companies House style), authenticated via HTTP Basic with the API
// key as username and an empty password.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/interfaces"
	"github.com/finlight/draftgen/internal/models"
)

const (
	DefaultBaseURL       = "https://api.company-information.service.gov.uk"
	DefaultDocumentURL   = "https://document-api.company-information.service.gov.uk"
	DefaultViewerBaseURL = "https://find-and-update.company-information.service.gov.uk"
	DefaultTimeout       = 30 * time.Second
	DefaultRateLimit     = 5 // requests per second
	DefaultPageSize      = 10
)

// Client implements the RegistryClient interface
type Client struct {
	baseURL       string
	documentURL   string
	viewerBaseURL string
	apiKey        string
	pageSize      int
	httpClient    *http.Client
	// noRedirect is used for document-content requests where the target
	// URL must be read from the Location header of the 302.
	noRedirect *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the registry API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithDocumentURL sets the document API base URL
func WithDocumentURL(documentURL string) ClientOption {
	return func(c *Client) {
		c.documentURL = strings.TrimSuffix(documentURL, "/")
	}
}

// WithViewerBaseURL sets the public filing-viewer base URL
func WithViewerBaseURL(viewerBaseURL string) ClientOption {
	return func(c *Client) {
		c.viewerBaseURL = strings.TrimSuffix(viewerBaseURL, "/")
	}
}

// WithPageSize sets the default filing-history page size
func WithPageSize(pageSize int) ClientOption {
	return func(c *Client) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
		c.noRedirect.Timeout = timeout
	}
}

// NewClient creates a new registry client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		documentURL:   DefaultDocumentURL,
		viewerBaseURL: DefaultViewerBaseURL,
		apiKey:        apiKey,
		pageSize:      DefaultPageSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		noRedirect: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited, Basic-authenticated GET and decodes JSON.
func (c *Client) get(ctx context.Context, rawURL string, result interface{}) error {
	if c.apiKey == "" {
		return &common.UpstreamAuthError{Service: "registry"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Basic auth with the key as username and an empty password.
	req.SetBasicAuth(c.apiKey, "")

	c.logger.Debug().Str("url", rawURL).Msg("Registry API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &common.UpstreamAPIError{
			Service:    "registry",
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetCompanyProfile retrieves a company profile by number
func (c *Client) GetCompanyProfile(ctx context.Context, companyNumber string) (*models.CompanyProfile, error) {
	companyNumber = strings.TrimSpace(companyNumber)
	if companyNumber == "" {
		return nil, common.Validationf("company number is required")
	}

	var resp companyProfileResponse
	if err := c.get(ctx, fmt.Sprintf("%s/company/%s", c.baseURL, url.PathEscape(companyNumber)), &resp); err != nil {
		return nil, err
	}

	return &models.CompanyProfile{
		CompanyNumber:  resp.CompanyNumber,
		CompanyName:    resp.CompanyName,
		Status:         resp.CompanyStatus,
		Type:           resp.Type,
		Jurisdiction:   resp.Jurisdiction,
		IncorporatedOn: resp.DateOfCreation,
		SICCodes:       resp.SICCodes,
	}, nil
}

type companyProfileResponse struct {
	CompanyNumber  string   `json:"company_number"`
	CompanyName    string   `json:"company_name"`
	CompanyStatus  string   `json:"company_status"`
	Type           string   `json:"type"`
	Jurisdiction   string   `json:"jurisdiction"`
	DateOfCreation string   `json:"date_of_creation"`
	SICCodes       []string `json:"sic_codes"`
}

// SearchCompanies searches the registry by free-text query
func (c *Client) SearchCompanies(ctx context.Context, query string) ([]models.CompanyMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.Validationf("search query is required")
	}

	params := url.Values{}
	params.Set("q", query)

	var resp companySearchResponse
	if err := c.get(ctx, fmt.Sprintf("%s/search/companies?%s", c.baseURL, params.Encode()), &resp); err != nil {
		return nil, err
	}

	matches := make([]models.CompanyMatch, 0, len(resp.Items))
	for _, item := range resp.Items {
		matches = append(matches, models.CompanyMatch{
			CompanyNumber:  item.CompanyNumber,
			Title:          item.Title,
			Status:         item.CompanyStatus,
			AddressSnippet: item.AddressSnippet,
			DateOfCreation: item.DateOfCreation,
		})
	}

	return matches, nil
}

type companySearchResponse struct {
	Items []struct {
		CompanyNumber  string `json:"company_number"`
		Title          string `json:"title"`
		CompanyStatus  string `json:"company_status"`
		AddressSnippet string `json:"address_snippet"`
		DateOfCreation string `json:"date_of_creation"`
	} `json:"items"`
}

// GetFilingHistory returns accounts filings for a company, newest first.
// Only entries whose description contains "accounts" (case-insensitive)
// are kept. Unresolvable documents fall back to a viewer URL.
func (c *Client) GetFilingHistory(ctx context.Context, companyNumber string, pageSize int) ([]models.FilingRecord, error) {
	companyNumber = strings.TrimSpace(companyNumber)
	if companyNumber == "" {
		return nil, common.Validationf("company number is required")
	}
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	params := url.Values{}
	// Over-fetch before filtering so the accounts filter still fills a page.
	params.Set("items_per_page", fmt.Sprintf("%d", pageSize*4))

	var resp filingHistoryResponse
	endpoint := fmt.Sprintf("%s/company/%s/filing-history?%s", c.baseURL, url.PathEscape(companyNumber), params.Encode())
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	viewerURL := fmt.Sprintf("%s/company/%s/filing-history", c.viewerBaseURL, url.PathEscape(companyNumber))

	records := make([]models.FilingRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		if !strings.Contains(strings.ToLower(item.Description), "accounts") {
			continue
		}

		record := models.FilingRecord{
			Date:        item.Date,
			Description: item.Description,
			Category:    item.Category,
			ViewerURL:   viewerURL,
		}

		if item.Links.DocumentMetadata != "" {
			pdfURL, docID, err := c.resolveDocument(ctx, item.Links.DocumentMetadata)
			if err != nil {
				// Per-item omission: keep the filing with the viewer fallback.
				c.logger.Warn().
					Err(err).
					Str("company", companyNumber).
					Str("description", item.Description).
					Msg("Failed to resolve filing document")
			} else {
				record.DocumentID = docID
				record.PDFURL = pdfURL
				record.Downloadable = true
			}
		}

		records = append(records, record)
	}

	// Sort by date descending, then truncate to the page size.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	if len(records) > pageSize {
		records = records[:pageSize]
	}

	c.logger.Debug().
		Str("company", companyNumber).
		Int("total", len(resp.Items)).
		Int("accounts", len(records)).
		Msg("Fetched filing history")

	return records, nil
}

type filingHistoryResponse struct {
	Items []struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Links       struct {
			DocumentMetadata string `json:"document_metadata"`
		} `json:"links"`
	} `json:"items"`
}

// resolveDocument resolves a filing's document-metadata link to a direct
// PDF URL: fetch metadata, confirm a PDF representation exists, then
// request the content with Accept: application/pdf without following the
// redirect and read the target from the Location header of the 302.
func (c *Client) resolveDocument(ctx context.Context, metadataURL string) (pdfURL, documentID string, err error) {
	var meta documentMetadataResponse
	if err := c.get(ctx, metadataURL, &meta); err != nil {
		return "", "", err
	}

	if _, ok := meta.Resources["application/pdf"]; !ok {
		return "", "", fmt.Errorf("no PDF representation available")
	}

	contentURL := meta.Links.Document
	if contentURL == "" {
		contentURL = strings.TrimSuffix(metadataURL, "/") + "/content"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create content request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to request document content: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return "", "", fmt.Errorf("expected redirect from document content, got status %d", resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", "", fmt.Errorf("document content redirect carried no Location header")
	}

	// The document ID is the last path segment of the metadata URL.
	docID := metadataURL
	if idx := strings.LastIndex(strings.TrimSuffix(docID, "/"), "/"); idx >= 0 {
		docID = strings.TrimSuffix(docID, "/")[idx+1:]
	}

	return location, docID, nil
}

type documentMetadataResponse struct {
	Links struct {
		Document string `json:"document"`
	} `json:"links"`
	Resources map[string]struct {
		ContentLength int64 `json:"content_length"`
	} `json:"resources"`
}

// Ensure Client implements RegistryClient
var _ interfaces.RegistryClient = (*Client)(nil)
