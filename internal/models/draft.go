// Package models defines the request-scoped data model for draftgen.
package models

import (
	"sort"
	"strings"
)

// TrialBalanceSet maps trimmed account names to signed amounts.
// Repeated account names within one source sum their values. No
// double-entry validation is performed; the total need not be zero.
type TrialBalanceSet map[string]float64

// Add accumulates an amount against a trimmed account name.
// Empty names after trimming are dropped.
func (t TrialBalanceSet) Add(name string, amount float64) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	t[name] += amount
}

// AccountNames returns the account names in sorted order for
// deterministic rendering.
func (t TrialBalanceSet) AccountNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalized rebuilds the set through Add so keys are trimmed, empty
// names are dropped, and names that collide after trimming sum. JSON
// decoding fills the map directly and bypasses Add, so decoded sets
// must pass through here.
func (t TrialBalanceSet) normalized() TrialBalanceSet {
	if t == nil {
		return nil
	}
	out := make(TrialBalanceSet, len(t))
	for name, amount := range t {
		out.Add(name, amount)
	}
	return out
}

// TBParsed carries pre-parsed prior and current period trial balances.
type TBParsed struct {
	Prior   TrialBalanceSet `json:"prior,omitempty"`
	Current TrialBalanceSet `json:"current,omitempty"`
}

// Normalize returns a copy with both sets rebuilt through Add.
func (t TBParsed) Normalize() TBParsed {
	return TBParsed{
		Prior:   t.Prior.normalized(),
		Current: t.Current.normalized(),
	}
}

// UploadedFile is a decoded request attachment. Created at request-decode
// time, consumed once by extraction or prompt assembly, then discarded.
type UploadedFile struct {
	Name     string
	MimeType string
	Bytes    []byte
}

// PromptPart is one element of a generative request: either text or an
// inline binary blob. Exactly one of Text or Data is set.
type PromptPart struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a text prompt part.
func TextPart(text string) PromptPart {
	return PromptPart{Text: text}
}

// BinaryPart builds an inline binary prompt part.
func BinaryPart(mimeType string, data []byte) PromptPart {
	return PromptPart{MIMEType: mimeType, Data: data}
}

// IsText reports whether the part carries text rather than binary data.
func (p PromptPart) IsText() bool {
	return p.Data == nil
}

// DraftRequest is the assembled input to the drafting pipeline.
type DraftRequest struct {
	Framework   string
	CompanyName string
	Notes       string
	PriorText   string
	TBParsed    TBParsed
	Files       []UploadedFile
}

// IsEmpty reports whether the request carries no drafting material at all.
func (r *DraftRequest) IsEmpty() bool {
	return strings.TrimSpace(r.CompanyName) == "" &&
		strings.TrimSpace(r.Notes) == "" &&
		strings.TrimSpace(r.PriorText) == "" &&
		len(r.TBParsed.Prior) == 0 &&
		len(r.TBParsed.Current) == 0 &&
		len(r.Files) == 0
}

// DraftResult is the successful output of the drafting pipeline.
type DraftResult struct {
	Output string `json:"output"`
	Model  string `json:"model"`
}
