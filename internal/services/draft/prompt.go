package draft

import (
	"fmt"
	"strings"

	"github.com/finlight/draftgen/internal/models"
)

// BuildPrompt assembles the fixed drafting instruction, parameterized by
// reporting framework, company name, user notes, prior-year source text,
// and pre-parsed trial balances. Always the first prompt part.
func BuildPrompt(framework, companyName, notes, priorText string, tb models.TBParsed, textLimit int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a financial reporting specialist. Draft annual financial statements under %s", framework))
	if companyName != "" {
		sb.WriteString(fmt.Sprintf(" for %s", companyName))
	}
	sb.WriteString(".\n\n")

	sb.WriteString(`Produce the following, each with prior-year comparatives where applicable:
1. Statement of profit or loss
2. Statement of financial position
3. Summary of significant accounting policies
4. Key notes: revenue, leases, financial instruments, property plant and equipment
5. A list of disclosures that appear to be missing from the source data

`)

	if len(tb.Current) > 0 {
		sb.WriteString("## Current-year trial balance\n\n")
		writeTrialBalance(&sb, tb.Current)
		sb.WriteString("\n")
	}

	if len(tb.Prior) > 0 {
		sb.WriteString("## Prior-year trial balance\n\n")
		writeTrialBalance(&sb, tb.Prior)
		sb.WriteString("\n")
	}

	if priorText != "" {
		sb.WriteString("## Prior-year statements (source text)\n\n")
		sb.WriteString(truncate(priorText, textLimit))
		sb.WriteString("\n\n")
	}

	if notes != "" {
		sb.WriteString("## Preparer notes\n\n")
		sb.WriteString(notes)
		sb.WriteString("\n\n")
	}

	sb.WriteString(`Rules:
- Base every figure on the supplied trial balances and attachments; do not invent amounts
- Flag unsupported or ambiguous classifications rather than guessing
- Use clear statement and note headings suitable for a statutory filing`)

	return sb.String()
}

// writeTrialBalance renders accounts in sorted order for determinism.
func writeTrialBalance(sb *strings.Builder, tb models.TrialBalanceSet) {
	sb.WriteString("account,amount\n")
	for _, name := range tb.AccountNames() {
		sb.WriteString(fmt.Sprintf("%s,%.2f\n", name, tb[name]))
	}
}

// truncate caps text at limit characters. Prompt-size truncation is a
// caller-side policy, not an extractor invariant.
func truncate(text string, limit int) string {
	if limit > 0 && len(text) > limit {
		return text[:limit]
	}
	return text
}
