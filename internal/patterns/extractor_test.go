package patterns

import (
	"testing"

	"golang-statement-ingestion-service/internal/models"

	"github.com/shopspring/decimal"
)

func TestExtractTransactions_SingleRow(t *testing.T) {
	text := "05-10-2024 CARREFOUR ABU DHABI aed 16.20\nsome trailing line"

	records := ExtractTransactions(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.Date != "05-10-2024" {
		t.Errorf("Expected date 05-10-2024, got %q", record.Date)
	}
	if record.Merchant != "CARREFOUR ABU DHABI" {
		t.Errorf("Expected merchant CARREFOUR ABU DHABI, got %q", record.Merchant)
	}
	if !record.Amount.Equal(decimal.RequireFromString("16.20")) {
		t.Errorf("Expected amount 16.20, got %s", record.Amount)
	}
	if record.Currency != "AED" {
		t.Errorf("Expected currency AED, got %q", record.Currency)
	}
}

func TestExtractTransactions_BlockSpansLines(t *testing.T) {
	text := "05-10-2024\nLULU HYPERMARKET\nAED 1,250.75"

	records := ExtractTransactions(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	if !records[0].Amount.Equal(decimal.RequireFromString("1250.75")) {
		t.Errorf("Expected amount 1250.75, got %s", records[0].Amount)
	}
	if len(records[0].TransactionBlock) != 3 {
		t.Errorf("Expected 3 block lines, got %v", records[0].TransactionBlock)
	}
}

func TestExtractTransactions_MultipleAmountsOneBlock(t *testing.T) {
	// Adjacent table rows sharing a block emit one record per amount.
	text := "05-10-2024 SPINNEYS AED 16.20\n05-10-2024 SPINNEYS AED 34.00"

	records := ExtractTransactions(text)
	if len(records) < 2 {
		t.Fatalf("Expected at least 2 records, got %d", len(records))
	}
}

func TestExtractTransactions_SuffixAmountForm(t *testing.T) {
	text := "12-01-2024 NOON PAYMENT 99.00 AED"

	records := ExtractTransactions(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("99.00")) {
		t.Errorf("Expected amount 99.00, got %s", records[0].Amount)
	}
}

func TestExtractTransactions_UnknownMerchant(t *testing.T) {
	text := "05-10-2024 aed 42.00"

	records := ExtractTransactions(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Merchant != models.UnknownMerchant {
		t.Errorf("Expected unknown merchant default, got %q", records[0].Merchant)
	}
}

func TestExtractTransactions_NoDateNoRecord(t *testing.T) {
	records := ExtractTransactions("CARREFOUR AED 16.20 without any date")
	if len(records) != 0 {
		t.Errorf("Expected no records without a date anchor, got %d", len(records))
	}
}

func TestExtractSummary(t *testing.T) {
	text := `Statement Date 01-10-2024
Payment Due Date 25-10-2024
Previous Balance ........ AED 2,000.00
Current Balance ........ AED 1,234.56
Minimum Payment Due AED 61.73
Total Payment Due AED 1,234.56
Total Credit Limit AED 15,000.00
Available Credit Limit AED 13,765.44`

	summary := ExtractSummary(text)

	numeric := map[string]string{
		models.SummaryCurrentBalance:  "1234.56",
		models.SummaryMinimumPayment:  "61.73",
		models.SummaryTotalPayment:    "1234.56",
		models.SummaryPreviousBalance: "2000.00",
		models.SummaryCreditLimit:     "15000.00",
		models.SummaryAvailableCredit: "13765.44",
	}
	for key, want := range numeric {
		value, ok := summary[key]
		if !ok {
			t.Errorf("Expected summary key %s", key)
			continue
		}
		if value.IsText {
			t.Errorf("Expected numeric value for %s, got text %q", key, value.Text)
			continue
		}
		if !value.Amount.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Expected %s = %s, got %s", key, want, value.Amount)
		}
	}

	if summary[models.SummaryStatementDate].Text != "01-10-2024" {
		t.Errorf("Expected statement date 01-10-2024, got %q", summary[models.SummaryStatementDate].Text)
	}
	if summary[models.SummaryDueDate].Text != "25-10-2024" {
		t.Errorf("Expected due date 25-10-2024, got %q", summary[models.SummaryDueDate].Text)
	}
}

func TestExtractSummary_MissingKeysAbsent(t *testing.T) {
	summary := ExtractSummary("Current Balance AED 500.00")

	if len(summary) != 1 {
		t.Errorf("Expected exactly one key, got %d: %v", len(summary), summary)
	}
	if _, ok := summary[models.SummaryDueDate]; ok {
		t.Error("Unmatched key must be absent, not defaulted")
	}
}

func TestExtractSummary_FirstMatchWins(t *testing.T) {
	text := "Current Balance AED 100.00\nCurrent Balance AED 200.00"

	summary := ExtractSummary(text)
	if !summary[models.SummaryCurrentBalance].Amount.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Expected first match 100.00, got %s", summary[models.SummaryCurrentBalance].Amount)
	}
}

func TestExtractAmountCatalog(t *testing.T) {
	text := "Purchase AED 16.20 at CARREFOUR then 34.00 DHS at LULU and AED 16.20 again"

	catalog := ExtractAmountCatalog(text)

	seen := make(map[string]bool)
	for _, mention := range catalog {
		key := mention.Amount.String() + mention.Currency
		if seen[key] {
			t.Errorf("Duplicate catalog entry for %s", key)
		}
		seen[key] = true
	}

	if len(catalog) != 2 {
		t.Fatalf("Expected 2 unique amounts, got %d", len(catalog))
	}
}

func TestExtractAmountCatalog_ContextWindow(t *testing.T) {
	text := "AED 16.20"

	catalog := ExtractAmountCatalog(text)
	if len(catalog) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(catalog))
	}

	// The whole text fits inside the window.
	if catalog[0].Context != text {
		t.Errorf("Expected context %q, got %q", text, catalog[0].Context)
	}
	if catalog[0].RawMatch != "AED 16.20" {
		t.Errorf("Expected raw match AED 16.20, got %q", catalog[0].RawMatch)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	records, summary, catalog := Extract("")

	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
	if len(summary) != 0 {
		t.Errorf("Expected empty summary, got %v", summary)
	}
	if len(catalog) != 0 {
		t.Errorf("Expected empty catalog, got %d entries", len(catalog))
	}
}
