package draft

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/models"
)

type fakeGenerative struct {
	lastParts []models.PromptPart
	calls     int
	result    *models.DraftResult
	err       error
}

func (f *fakeGenerative) Generate(ctx context.Context, parts []models.PromptPart, candidates []string) (*models.DraftResult, error) {
	f.calls++
	f.lastParts = parts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGenerative) ListModels(ctx context.Context) ([]string, error) {
	return nil, nil
}

type fakeExtractor struct {
	tb  models.TrialBalanceSet
	err error
}

func (f *fakeExtractor) ExtractText(pdfBytes []byte) (string, error) {
	return "extracted text", nil
}

func (f *fakeExtractor) ExtractTrialBalance(data []byte, filenameHint string) (models.TrialBalanceSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tb, nil
}

func okResult() *models.DraftResult {
	return &models.DraftResult{Output: "draft statements", Model: "gemini-2.0-flash"}
}

func TestDraftEmptyRequest(t *testing.T) {
	s := NewService(&fakeGenerative{result: okResult()}, &fakeExtractor{})

	for _, req := range []*models.DraftRequest{nil, {}, {CompanyName: "  "}} {
		_, err := s.Draft(context.Background(), req)
		require.Error(t, err)

		var validation *common.ValidationError
		assert.ErrorAs(t, err, &validation)
	}
}

func TestDraftInstructionIsFirstPart(t *testing.T) {
	gen := &fakeGenerative{result: okResult()}
	s := NewService(gen, &fakeExtractor{})

	result, err := s.Draft(context.Background(), &models.DraftRequest{
		CompanyName: "Acme Ltd",
		Notes:       "going concern confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, "draft statements", result.Output)

	require.NotEmpty(t, gen.lastParts)
	instruction := gen.lastParts[0]
	assert.True(t, instruction.IsText())
	assert.Contains(t, instruction.Text, "IFRS")
	assert.Contains(t, instruction.Text, "Acme Ltd")
	assert.Contains(t, instruction.Text, "going concern confirmed")
}

func TestDraftExplicitFrameworkWins(t *testing.T) {
	gen := &fakeGenerative{result: okResult()}
	s := NewService(gen, &fakeExtractor{}, WithDefaultFramework("IFRS"))

	_, err := s.Draft(context.Background(), &models.DraftRequest{
		Framework: "UK GAAP",
		Notes:     "n",
	})
	require.NoError(t, err)

	assert.Contains(t, gen.lastParts[0].Text, "UK GAAP")
}

func TestDraftReferenceDocumentFollowsInstruction(t *testing.T) {
	gen := &fakeGenerative{result: okResult()}
	ref := &models.UploadedFile{Name: "ref.pdf", MimeType: "application/pdf", Bytes: []byte("%PDF")}
	s := NewService(gen, &fakeExtractor{}, WithReferenceDocument(ref))

	_, err := s.Draft(context.Background(), &models.DraftRequest{Notes: "n"})
	require.NoError(t, err)

	require.Len(t, gen.lastParts, 2)
	assert.False(t, gen.lastParts[1].IsText())
	assert.Equal(t, "application/pdf", gen.lastParts[1].MIMEType)
}

func TestDraftAttachmentDispatch(t *testing.T) {
	gen := &fakeGenerative{result: okResult()}
	s := NewService(gen, &fakeExtractor{tb: models.TrialBalanceSet{"Cash": 100}})

	_, err := s.Draft(context.Background(), &models.DraftRequest{
		Files: []models.UploadedFile{
			{Name: "prior.pdf", MimeType: "application/pdf", Bytes: []byte("%PDF")},
			{Name: "tb.xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Bytes: []byte("wb")},
			{Name: "notes.txt", MimeType: "text/plain", Bytes: []byte("lease renewed")},
		},
	})
	require.NoError(t, err)

	// Instruction, then attachments in upload order.
	require.Len(t, gen.lastParts, 4)
	assert.False(t, gen.lastParts[1].IsText())
	assert.True(t, gen.lastParts[2].IsText())
	assert.Contains(t, gen.lastParts[2].Text, "tb.xlsx")
	assert.Contains(t, gen.lastParts[2].Text, "Cash,100.00")
	assert.Contains(t, gen.lastParts[3].Text, "lease renewed")
}

func TestDraftUnsupportedAttachment(t *testing.T) {
	s := NewService(&fakeGenerative{result: okResult()}, &fakeExtractor{})

	_, err := s.Draft(context.Background(), &models.DraftRequest{
		Files: []models.UploadedFile{
			{Name: "archive.zip", MimeType: "application/zip", Bytes: []byte("PK")},
		},
	})
	require.Error(t, err)

	var validation *common.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "archive.zip")
}

func TestDraftAttachmentSizeCeiling(t *testing.T) {
	gen := &fakeGenerative{result: okResult()}
	s := NewService(gen, &fakeExtractor{}, WithLimits(10, 0))

	_, err := s.Draft(context.Background(), &models.DraftRequest{
		Files: []models.UploadedFile{
			{Name: "small.pdf", MimeType: "application/pdf", Bytes: []byte("12345678")},
			{Name: "big.pdf", MimeType: "application/pdf", Bytes: []byte("12345678")},
		},
	})
	require.Error(t, err)

	var validation *common.ValidationError
	require.ErrorAs(t, err, &validation)
	// The file that crossed the ceiling is the one named.
	assert.Contains(t, err.Error(), "big.pdf")
	assert.Zero(t, gen.calls)
}

func TestDraftDryRun(t *testing.T) {
	gen := &fakeGenerative{result: okResult()}
	s := NewService(gen, &fakeExtractor{}, WithDryRun(true))

	result, err := s.Draft(context.Background(), &models.DraftRequest{
		Notes: "n",
		Files: []models.UploadedFile{
			{Name: "prior.pdf", MimeType: "application/pdf", Bytes: []byte("%PDF")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "dry-run", result.Model)
	assert.Contains(t, result.Output, "prior.pdf")
	assert.Zero(t, gen.calls)
}

func TestDraftWithoutCredentials(t *testing.T) {
	s := NewService(nil, &fakeExtractor{})

	_, err := s.Draft(context.Background(), &models.DraftRequest{Notes: "n"})
	require.Error(t, err)

	var auth *common.UpstreamAuthError
	assert.ErrorAs(t, err, &auth)
}

func TestBuildPromptRendersTrialBalancesSorted(t *testing.T) {
	tb := models.TBParsed{
		Current: models.TrialBalanceSet{"Cash": 100, "Accruals": -25.5},
		Prior:   models.TrialBalanceSet{"Cash": 80},
	}

	prompt := BuildPrompt("IFRS", "Acme Ltd", "", "", tb, 0)

	assert.Contains(t, prompt, "Current-year trial balance")
	assert.Contains(t, prompt, "Prior-year trial balance")

	currentIdx := strings.Index(prompt, "Accruals,-25.50")
	cashIdx := strings.Index(prompt, "Cash,100.00")
	require.GreaterOrEqual(t, currentIdx, 0)
	require.GreaterOrEqual(t, cashIdx, 0)
	assert.Less(t, currentIdx, cashIdx)
}

func TestBuildPromptTruncatesPriorText(t *testing.T) {
	long := strings.Repeat("x", 100)

	prompt := BuildPrompt("IFRS", "", "", long, models.TBParsed{}, 10)

	assert.Contains(t, prompt, strings.Repeat("x", 10))
	assert.NotContains(t, prompt, strings.Repeat("x", 11))
}
