package extract

import (
	"path/filepath"
	"strings"
)

// Kind is the attachment dispatch variant, computed once from the
// declared or inferred MIME type instead of scattering string matches
// through the pipeline.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindImage
	KindSpreadsheet
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindText:
		return "text"
	default:
		return "unsupported"
	}
}

// DetectKind classifies an upload by declared MIME type, falling back to
// the filename extension when the type is absent or generic.
func DetectKind(mimeType, filename string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}

	switch mt {
	case "application/pdf":
		return KindPDF
	case "image/png", "image/jpeg", "image/jpg":
		return KindImage
	case "application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindSpreadsheet
	case "text/csv", "application/csv", "text/plain":
		return KindText
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg":
		return KindImage
	case ".xls", ".xlsx":
		return KindSpreadsheet
	case ".csv", ".txt":
		return KindText
	}

	return KindUnsupported
}

// AcceptedTypes lists the MIME types accepted as attachments, for
// validation error messages.
func AcceptedTypes() []string {
	return []string{
		"application/pdf",
		"image/png",
		"image/jpeg",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/csv",
		"text/plain",
	}
}
