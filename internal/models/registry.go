package models

// CompanyProfile is a normalized company record from the registry API.
type CompanyProfile struct {
	CompanyNumber  string   `json:"company_number"`
	CompanyName    string   `json:"company_name"`
	Status         string   `json:"status,omitempty"`
	Type           string   `json:"type,omitempty"`
	Jurisdiction   string   `json:"jurisdiction,omitempty"`
	IncorporatedOn string   `json:"incorporated_on,omitempty"`
	SICCodes       []string `json:"sic_codes,omitempty"`
}

// CompanyMatch is one entry from a registry company search.
type CompanyMatch struct {
	CompanyNumber  string `json:"company_number"`
	Title          string `json:"title"`
	Status         string `json:"status,omitempty"`
	AddressSnippet string `json:"address_snippet,omitempty"`
	DateOfCreation string `json:"date_of_creation,omitempty"`
}

// FilingRecord is a filing-history entry filtered to accounts filings.
// When the registry document could not be resolved to a direct PDF,
// Downloadable is false and ViewerURL carries the registry viewer page.
type FilingRecord struct {
	Date         string `json:"date"`
	Description  string `json:"description"`
	Category     string `json:"category,omitempty"`
	DocumentID   string `json:"document_id,omitempty"`
	PDFURL       string `json:"pdf_url,omitempty"`
	ViewerURL    string `json:"viewer_url,omitempty"`
	Downloadable bool   `json:"downloadable"`
}
