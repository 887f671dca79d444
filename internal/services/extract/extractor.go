// Package extract converts uploaded documents (PDF, Excel, CSV, plain
// text) into extracted text or normalized trial-balance mappings.
package extract

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/interfaces"
	"github.com/finlight/draftgen/internal/models"
)

// Service implements the Extractor interface
type Service struct {
	logger *common.Logger
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new extraction service
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		logger: common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractText extracts plain text from a PDF payload. Truncation for
// prompt-size limits is the caller's policy, not applied here.
func (s *Service) ExtractText(pdfBytes []byte) (string, error) {
	if len(pdfBytes) == 0 {
		return "", common.Validationf("no PDF data provided")
	}

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", &common.ExtractionError{File: "document.pdf", Msg: err.Error()}
	}

	var sb strings.Builder
	totalPages := reader.NumPage()

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// Workbook container signatures: OPC zip for xlsx, OLE compound file
// for legacy BIFF xls.
var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// ExtractTrialBalance parses a spreadsheet or CSV payload into an
// account-name -> amount mapping. Repeated account names sum.
// The parser is chosen by content signature first so the dispatch can
// never disagree with DetectKind on an extensionless upload; the
// filename extension only decides when no signature matches.
func (s *Service) ExtractTrialBalance(data []byte, filenameHint string) (models.TrialBalanceSet, error) {
	if len(data) == 0 {
		return nil, common.Validationf("no file data provided for %s", displayName(filenameHint))
	}

	name := displayName(filenameHint)

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return s.extractFromWorkbook(data, name)
	case bytes.HasPrefix(data, oleMagic):
		return s.extractFromLegacyWorkbook(data, name)
	}

	switch strings.ToLower(filepath.Ext(filenameHint)) {
	case ".xlsx":
		return s.extractFromWorkbook(data, name)
	case ".xls":
		return s.extractFromLegacyWorkbook(data, name)
	default:
		return s.extractFromCSV(data, name)
	}
}

func displayName(filenameHint string) string {
	if strings.TrimSpace(filenameHint) == "" {
		return "upload"
	}
	return filenameHint
}

// extractFromWorkbook reads the first sheet only and applies the column
// heuristics over its rows.
func (s *Service) extractFromWorkbook(data []byte, name string) (models.TrialBalanceSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &common.ExtractionError{File: name, Msg: err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &common.ExtractionError{File: name, Msg: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &common.ExtractionError{File: name, Msg: err.Error()}
	}

	tb, err := parseSheetRows(rows, name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("file", name).Str("sheet", sheets[0]).Int("accounts", len(tb)).Msg("Extracted trial balance from workbook")
	return tb, nil
}

// extractFromLegacyWorkbook reads a BIFF xls payload, first sheet only,
// and applies the same column heuristics as the xlsx path.
func (s *Service) extractFromLegacyWorkbook(data []byte, name string) (models.TrialBalanceSet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &common.ExtractionError{File: name, Msg: err.Error()}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &common.ExtractionError{File: name, Msg: "workbook has no sheets"}
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for col := 0; col < row.LastCol(); col++ {
			cells = append(cells, row.Col(col))
		}
		rows = append(rows, cells)
	}

	tb, err := parseSheetRows(rows, name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("file", name).Str("sheet", sheet.Name).Int("accounts", len(tb)).Msg("Extracted trial balance from legacy workbook")
	return tb, nil
}

// extractFromCSV splits rows on commas. Quoted commas are deliberately
// not handled; the amount heuristic tolerates the resulting noise.
func (s *Service) extractFromCSV(data []byte, name string) (models.TrialBalanceSet, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
	}

	tb, err := parseCSVRows(rows, name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("file", name).Int("accounts", len(tb)).Msg("Extracted trial balance from CSV")
	return tb, nil
}

var (
	accountHeaderRe = regexp.MustCompile(`(?i)account`)
	amountHeaderRe  = regexp.MustCompile(`(?i)amount|debit|credit|balance`)
)

const amountColumnScan = 5

// parseSheetRows applies the spreadsheet heuristic: name column is column
// 0 unless a header matches "account"; amount column is the column among
// the first five with the highest count of numeric-like data cells, ties
// broken by lowest index.
func parseSheetRows(rows [][]string, name string) (models.TrialBalanceSet, error) {
	if len(rows) == 0 {
		return nil, &common.ExtractionError{File: name, Msg: "sheet is empty"}
	}

	header, dataRows := splitHeader(rows)
	nameCol := nameColumn(header)
	amountCol := mostNumericColumn(dataRows)

	return accumulateRows(dataRows, nameCol, amountCol, name)
}

// parseCSVRows applies the CSV variant: an amount/debit/credit/balance
// header wins the amount column, else column index 1.
func parseCSVRows(rows [][]string, name string) (models.TrialBalanceSet, error) {
	if len(rows) == 0 {
		return nil, &common.ExtractionError{File: name, Msg: "file is empty"}
	}

	header, dataRows := splitHeader(rows)
	nameCol := nameColumn(header)

	amountCol := 1
	for i, h := range header {
		if amountHeaderRe.MatchString(h) {
			amountCol = i
			break
		}
	}

	return accumulateRows(dataRows, nameCol, amountCol, name)
}

// splitHeader treats the first row as a header when none of its cells
// beyond column 0 are numeric-like.
func splitHeader(rows [][]string) (header []string, dataRows [][]string) {
	first := rows[0]
	for i, cell := range first {
		if i == 0 {
			continue
		}
		if _, ok := parseAmount(cell); ok {
			return nil, rows
		}
	}
	return first, rows[1:]
}

func nameColumn(header []string) int {
	for i, h := range header {
		if accountHeaderRe.MatchString(h) {
			return i
		}
	}
	return 0
}

// mostNumericColumn scans the first five columns and picks the one with
// the highest count of numeric-like values. The ">" comparison means the
// first column scanned wins ties.
func mostNumericColumn(rows [][]string) int {
	best, bestCount := 0, -1
	for col := 0; col < amountColumnScan; col++ {
		count := 0
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			if _, ok := parseAmount(row[col]); ok {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = col, count
		}
	}
	return best
}

// accumulateRows sums amounts per trimmed account name. Rows whose amount
// cell does not parse are skipped, not zeroed; the account key may still
// accumulate from other rows.
func accumulateRows(rows [][]string, nameCol, amountCol int, file string) (models.TrialBalanceSet, error) {
	tb := make(models.TrialBalanceSet)
	for _, row := range rows {
		if nameCol >= len(row) || amountCol >= len(row) {
			continue
		}
		amount, ok := parseAmount(row[amountCol])
		if !ok {
			continue
		}
		tb.Add(row[nameCol], amount)
	}

	if len(tb) == 0 {
		return nil, &common.ExtractionError{File: file, Msg: "no account rows with numeric amounts"}
	}
	return tb, nil
}

// parseAmount parses a numeric-like cell, stripping thousands separators
// and spaces first.
func parseAmount(cell string) (float64, bool) {
	cleaned := strings.TrimSpace(cell)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Ensure Service implements Extractor
var _ interfaces.Extractor = (*Service)(nil)
