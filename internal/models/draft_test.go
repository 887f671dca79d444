package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrialBalanceSetAdd(t *testing.T) {
	tb := make(TrialBalanceSet)

	tb.Add("  Cash  ", 100)
	tb.Add("Cash", 50)
	tb.Add("   ", 999)

	assert.Equal(t, 150.0, tb["Cash"])
	assert.Len(t, tb, 1)
}

func TestTrialBalanceSetAccountNamesSorted(t *testing.T) {
	tb := TrialBalanceSet{"Cash": 1, "Bank": 2, "Accruals": 3}

	assert.Equal(t, []string{"Accruals", "Bank", "Cash"}, tb.AccountNames())
}

func TestTBParsedNormalize(t *testing.T) {
	// Decoded JSON fills the maps directly, so keys may be untrimmed,
	// empty, or collide after trimming.
	raw := TBParsed{
		Current: TrialBalanceSet{" Cash ": 100, "Cash": 50, "   ": 999},
		Prior:   TrialBalanceSet{"Bank": 10},
	}

	norm := raw.Normalize()

	assert.Equal(t, TrialBalanceSet{"Cash": 150}, norm.Current)
	assert.Equal(t, TrialBalanceSet{"Bank": 10}, norm.Prior)
	assert.Nil(t, TBParsed{}.Normalize().Current)
}

func TestDraftRequestIsEmpty(t *testing.T) {
	assert.True(t, (&DraftRequest{}).IsEmpty())
	assert.True(t, (&DraftRequest{CompanyName: "   "}).IsEmpty())

	assert.False(t, (&DraftRequest{Notes: "going concern"}).IsEmpty())
	assert.False(t, (&DraftRequest{TBParsed: TBParsed{Current: TrialBalanceSet{"Cash": 1}}}).IsEmpty())
	assert.False(t, (&DraftRequest{Files: []UploadedFile{{Name: "tb.csv"}}}).IsEmpty())
}

func TestPromptPartConstructors(t *testing.T) {
	text := TextPart("hello")
	assert.True(t, text.IsText())
	assert.Equal(t, "hello", text.Text)

	bin := BinaryPart("application/pdf", []byte{0x25, 0x50})
	assert.False(t, bin.IsText())
	assert.Equal(t, "application/pdf", bin.MIMEType)
}
