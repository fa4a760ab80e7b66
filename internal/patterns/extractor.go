// Package patterns extracts structured data from statement text:
// transaction records, summary fields, and a catalog of every currency
// amount mentioned. Extraction is regex-driven and lossy on purpose; a
// field that matches nothing is simply absent, never an error.
package patterns

import (
	"regexp"
	"strings"

	"golang-statement-ingestion-service/internal/models"

	"github.com/shopspring/decimal"
)

// Transaction scan patterns. Statement rows carry DD-MM-YYYY dates and
// AED/DHS amounts with optional thousands separators.
var (
	dateRe = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)

	amountPrefixRe = regexp.MustCompile(`(?i)(?:AED|DHS)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`)
	amountSuffixRe = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:AED|DHS)`)

	merchantRe = regexp.MustCompile(`\d{2}-\d{2}-\d{4}\s+([A-Z][A-Z0-9\s&\-\.]{3,40})\s+`)
)

// blockFollowLines is how many non-empty lines after a date line are
// pulled into a transaction block.
const blockFollowLines = 4

// contextWindow is the number of characters of surrounding text kept on
// each side of a catalog match.
const contextWindow = 50

// summaryPatterns maps summary keys to their label regexes. Every
// pattern runs case-insensitively with dot matching newlines, and only
// the first match counts.
var summaryPatterns = []struct {
	key     string
	pattern *regexp.Regexp
	isDate  bool
}{
	{models.SummaryCurrentBalance, regexp.MustCompile(`(?is)Current Balance.*?(\d+(?:,\d{3})*(?:\.\d{2})?)`), false},
	{models.SummaryMinimumPayment, regexp.MustCompile(`(?is)Minimum Payment Due.*?(\d+(?:,\d{3})*(?:\.\d{2})?)`), false},
	{models.SummaryTotalPayment, regexp.MustCompile(`(?is)Total Payment Due.*?(\d+(?:,\d{3})*(?:\.\d{2})?)`), false},
	{models.SummaryPreviousBalance, regexp.MustCompile(`(?is)Previous Balance.*?(\d+(?:,\d{3})*(?:\.\d{2})?)`), false},
	{models.SummaryCreditLimit, regexp.MustCompile(`(?is)(?:Total\s+)?Credit Limit.*?(\d+(?:,\d{3})*(?:\.\d{2})?)`), false},
	{models.SummaryAvailableCredit, regexp.MustCompile(`(?is)Available Credit Limit.*?(\d+(?:,\d{3})*(?:\.\d{2})?)`), false},
	{models.SummaryStatementDate, regexp.MustCompile(`(?is)Statement Date.*?(\d{2}-\d{2}-\d{4})`), true},
	{models.SummaryDueDate, regexp.MustCompile(`(?is)Payment Due Date.*?(\d{2}-\d{2}-\d{4})`), true},
}

// catalogPatterns are the amount variants scanned for the full-text
// amount catalog. Overlap between variants is fine; the catalog dedupes
// on (amount, currency).
var catalogPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)AED\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)DHS\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*AED`),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*DHS`),
	regexp.MustCompile(`(?i)(?:AED|DHS)[\s:]*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:AED|DHS)`),
}

// Extract scans statement text for transaction records, summary fields,
// and the amount catalog. All three scans are independent; a miss in
// one does not affect the others.
func Extract(rawText string) ([]models.RawTransactionRecord, models.SummaryFields, []models.AmountMention) {
	return ExtractTransactions(rawText), ExtractSummary(rawText), ExtractAmountCatalog(rawText)
}

// ExtractTransactions walks the text line by line. Each line carrying a
// DD-MM-YYYY date anchors a block of that line plus up to four following
// non-empty lines; every distinct amount found in the joined block emits
// one record. Adjacent table rows can share a block and produce
// near-duplicates; deduplication downstream resolves those.
func ExtractTransactions(rawText string) []models.RawTransactionRecord {
	var records []models.RawTransactionRecord
	lines := strings.Split(rawText, "\n")

	for i, line := range lines {
		date := dateRe.FindString(line)
		if date == "" {
			continue
		}

		block := collectBlock(lines, i)
		joined := strings.Join(block, " ")

		amounts := amountPrefixRe.FindAllStringSubmatch(joined, -1)
		if len(amounts) == 0 {
			amounts = amountSuffixRe.FindAllStringSubmatch(joined, -1)
		}
		if len(amounts) == 0 {
			continue
		}

		merchant := models.UnknownMerchant
		if m := merchantRe.FindStringSubmatch(joined); m != nil {
			merchant = strings.TrimSpace(m[1])
		}

		for _, match := range amounts {
			amount, ok := parseAmount(match[1])
			if !ok {
				continue
			}
			records = append(records, models.RawTransactionRecord{
				Date:             date,
				Merchant:         merchant,
				Amount:           amount,
				Currency:         models.DefaultCurrency,
				RawText:          joined,
				TransactionBlock: block,
			})
		}
	}

	return records
}

// collectBlock gathers the anchor line and up to blockFollowLines
// following non-empty lines, trimmed.
func collectBlock(lines []string, anchor int) []string {
	var block []string
	for j := anchor; j < len(lines) && j <= anchor+blockFollowLines; j++ {
		if trimmed := strings.TrimSpace(lines[j]); trimmed != "" {
			block = append(block, trimmed)
		}
	}
	return block
}

// ExtractSummary scans the full text for the fixed set of summary
// labels. A key is present only when its pattern matched; numeric values
// that fail to parse keep the matched text instead.
func ExtractSummary(rawText string) models.SummaryFields {
	summary := make(models.SummaryFields)

	for _, sp := range summaryPatterns {
		match := sp.pattern.FindStringSubmatch(rawText)
		if match == nil {
			continue
		}

		value := match[1]
		if sp.isDate {
			summary[sp.key] = models.TextSummaryValue(value)
			continue
		}

		if amount, ok := parseAmount(value); ok {
			summary[sp.key] = models.NumericSummaryValue(amount)
		} else {
			summary[sp.key] = models.TextSummaryValue(value)
		}
	}

	return summary
}

// ExtractAmountCatalog finds every currency amount mentioned anywhere in
// the text, keeping a context window around each match. Entries are
// deduplicated on (amount, currency); differing context never creates a
// new entry.
func ExtractAmountCatalog(rawText string) []models.AmountMention {
	var catalog []models.AmountMention
	seen := make(map[string]bool)

	for _, pattern := range catalogPatterns {
		for _, match := range pattern.FindAllStringSubmatchIndex(rawText, -1) {
			start, end := match[0], match[1]
			amountStr := rawText[match[2]:match[3]]

			amount, ok := parseAmount(amountStr)
			if !ok {
				continue
			}

			key := amount.String() + "|" + models.DefaultCurrency
			if seen[key] {
				continue
			}
			seen[key] = true

			ctxStart := start - contextWindow
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := end + contextWindow
			if ctxEnd > len(rawText) {
				ctxEnd = len(rawText)
			}

			catalog = append(catalog, models.AmountMention{
				Amount:   amount,
				Currency: models.DefaultCurrency,
				RawMatch: rawText[start:end],
				Context:  rawText[ctxStart:ctxEnd],
			})
		}
	}

	return catalog
}

// parseAmount parses a matched amount string after stripping thousands
// separators. Parse failures skip the match rather than propagate.
func parseAmount(value string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
