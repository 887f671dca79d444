package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finlight/draftgen/internal/common"
)

func TestExtractTrialBalanceCSV(t *testing.T) {
	s := NewService()

	tb, err := s.ExtractTrialBalance([]byte("Account,Amount\nCash,100\nTrade debtors,250.50\n"), "tb.csv")
	require.NoError(t, err)

	assert.Equal(t, 100.0, tb["Cash"])
	assert.Equal(t, 250.50, tb["Trade debtors"])
	assert.Len(t, tb, 2)
}

func TestExtractTrialBalanceDuplicateAccountsSum(t *testing.T) {
	s := NewService()

	tb, err := s.ExtractTrialBalance([]byte("Account,Amount\nCash,100\nCash,50\n"), "tb.csv")
	require.NoError(t, err)

	assert.Equal(t, 150.0, tb["Cash"])
	assert.Len(t, tb, 1)
}

func TestExtractTrialBalanceCSVNoHeader(t *testing.T) {
	s := NewService()

	// First row carries a numeric cell, so it is data, not a header.
	tb, err := s.ExtractTrialBalance([]byte("Cash,100\nBank loan,-200\n"), "tb.csv")
	require.NoError(t, err)

	assert.Equal(t, 100.0, tb["Cash"])
	assert.Equal(t, -200.0, tb["Bank loan"])
}

func TestExtractTrialBalanceCSVAmountHeaderWins(t *testing.T) {
	s := NewService()

	// The balance column is preferred over the default index 1.
	tb, err := s.ExtractTrialBalance([]byte("Account,Ref,Balance\nCash,J1,300\n"), "tb.csv")
	require.NoError(t, err)

	assert.Equal(t, 300.0, tb["Cash"])
}

func TestExtractTrialBalanceSkipsUnparseableRows(t *testing.T) {
	s := NewService()

	tb, err := s.ExtractTrialBalance([]byte("Account,Amount\nCash,100\nSubtotal,n/a\n"), "tb.csv")
	require.NoError(t, err)

	assert.Len(t, tb, 1)
	assert.Equal(t, 100.0, tb["Cash"])
}

func TestExtractTrialBalanceDeterministic(t *testing.T) {
	s := NewService()
	data := []byte("Account,Amount\nCash,100\nBank,50\nCash,25\n")

	first, err := s.ExtractTrialBalance(data, "tb.csv")
	require.NoError(t, err)
	second, err := s.ExtractTrialBalance(data, "tb.csv")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Bank", "Cash"}, first.AccountNames())
}

func TestExtractTrialBalanceNoNumericRows(t *testing.T) {
	s := NewService()

	_, err := s.ExtractTrialBalance([]byte("Account,Amount\nCash,n/a\n"), "tb.csv")
	require.Error(t, err)

	var extraction *common.ExtractionError
	assert.ErrorAs(t, err, &extraction)
	assert.Equal(t, "tb.csv", extraction.File)
}

func TestExtractTrialBalanceEmptyInput(t *testing.T) {
	s := NewService()

	_, err := s.ExtractTrialBalance(nil, "tb.csv")
	require.Error(t, err)

	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestExtractTrialBalanceWorkbook(t *testing.T) {
	s := NewService()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Account", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Cash", 1500.25}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Trade creditors", "-2,000"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"Cash", 100}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tb, err := s.ExtractTrialBalance(buf.Bytes(), "tb.xlsx")
	require.NoError(t, err)

	// Thousands separators are stripped and repeated names sum.
	assert.Equal(t, 1600.25, tb["Cash"])
	assert.Equal(t, -2000.0, tb["Trade creditors"])
}

func TestExtractTrialBalanceWorkbookAccountHeaderColumn(t *testing.T) {
	s := NewService()

	// Names live in the second column; the header names it.
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Code", "Account name", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"J-1001", "Cash", 42}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tb, err := s.ExtractTrialBalance(buf.Bytes(), "tb.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 42.0, tb["Cash"])
}

func TestExtractTrialBalanceInvalidWorkbook(t *testing.T) {
	s := NewService()

	for _, hint := range []string{"tb.xlsx", "tb.xls"} {
		_, err := s.ExtractTrialBalance([]byte("this is not a workbook"), hint)
		require.Error(t, err, hint)

		var extraction *common.ExtractionError
		assert.ErrorAs(t, err, &extraction, hint)
	}
}

func TestExtractTrialBalanceWorkbookWithoutExtension(t *testing.T) {
	s := NewService()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Account", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Cash", 100}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	// A declared spreadsheet MIME type with no filename extension must
	// land in the workbook parser, same as DetectKind classifies it.
	mime := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	require.Equal(t, KindSpreadsheet, DetectKind(mime, "tb"))

	tb, err := s.ExtractTrialBalance(buf.Bytes(), "tb")
	require.NoError(t, err)
	assert.Equal(t, 100.0, tb["Cash"])
}

func TestExtractTrialBalanceLegacySignatureNeverParsedAsCSV(t *testing.T) {
	s := NewService()

	// An OLE compound-file signature routes to the legacy workbook
	// parser regardless of the filename hint; corrupt contents surface
	// as an extraction error, not as CSV noise.
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0}, []byte("Account,Amount\nCash,100\n")...)

	_, err := s.ExtractTrialBalance(data, "tb.csv")
	require.Error(t, err)

	var extraction *common.ExtractionError
	assert.ErrorAs(t, err, &extraction)
}

func TestExtractTextEmptyInput(t *testing.T) {
	s := NewService()

	_, err := s.ExtractText(nil)
	require.Error(t, err)

	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestExtractTextInvalidPDF(t *testing.T) {
	s := NewService()

	_, err := s.ExtractText([]byte("definitely not a pdf"))
	require.Error(t, err)

	var extraction *common.ExtractionError
	assert.ErrorAs(t, err, &extraction)
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		filename string
		want     Kind
	}{
		{"pdf mime", "application/pdf", "report.bin", KindPDF},
		{"pdf mime with params", "application/pdf; charset=binary", "x", KindPDF},
		{"pdf extension fallback", "application/octet-stream", "accounts.pdf", KindPDF},
		{"png mime", "image/png", "scan", KindImage},
		{"jpeg extension", "", "scan.JPG", KindImage},
		{"xlsx mime", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "tb", KindSpreadsheet},
		{"xls extension", "", "tb.xls", KindSpreadsheet},
		{"csv mime", "text/csv", "tb", KindText},
		{"txt extension", "", "notes.txt", KindText},
		{"unknown", "application/zip", "archive.zip", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.mimeType, tt.filename))
		})
	}
}

func TestMostNumericColumnTieBreaksLow(t *testing.T) {
	rows := [][]string{
		{"Cash", "100", "200"},
		{"Bank", "50", "75"},
	}
	assert.Equal(t, 1, mostNumericColumn(rows))
}

func TestMostNumericColumnNoNumericCells(t *testing.T) {
	rows := [][]string{
		{"Cash", "n/a"},
		{"Bank", "n/a"},
	}
	assert.Equal(t, 0, mostNumericColumn(rows))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"1,234.50", 1234.50, true},
		{" 2 000 ", 2000, true},
		{"-42", -42, true},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}
