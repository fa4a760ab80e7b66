// Package reporter renders statement ingestion results.
//
// Supported output formats:
//   - Console: Human-readable output for terminal display
//   - JSON: Structured data format for programmatic consumption
//   - CSV: Comma-separated transaction rows for spreadsheet applications
//
// The console report covers the statement summary fields, the extracted
// transactions, aggregate statistics, and the deduplication group report
// when deduplication ran.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang-statement-ingestion-service/internal/ingest"
	"golang-statement-ingestion-service/internal/models"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeRawText     bool `json:"include_raw_text"`
	IncludeCatalog     bool `json:"include_catalog"`
	IncludeDedupReport bool `json:"include_dedup_report"`

	// Console formatting options
	MaxMerchantWidth int `json:"max_merchant_width"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:             FormatConsole,
		IncludeRawText:     false,
		IncludeCatalog:     false,
		IncludeDedupReport: true,
		MaxMerchantWidth:   40,
		CSVDelimiter:       ',',
		CSVHeaders:         true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxMerchantWidth < 10 {
		return fmt.Errorf("merchant width must be at least 10 characters, got %d", c.MaxMerchantWidth)
	}
	return nil
}

// Clone returns a copy of the configuration
func (c *ReportConfig) Clone() *ReportConfig {
	clone := *c
	return &clone
}

// summaryDisplayOrder fixes the order summary fields render in.
var summaryDisplayOrder = []struct {
	key   string
	label string
}{
	{models.SummaryStatementDate, "Statement Date"},
	{models.SummaryDueDate, "Payment Due Date"},
	{models.SummaryPreviousBalance, "Previous Balance"},
	{models.SummaryCurrentBalance, "Current Balance"},
	{models.SummaryMinimumPayment, "Minimum Payment Due"},
	{models.SummaryTotalPayment, "Total Payment Due"},
	{models.SummaryCreditLimit, "Credit Limit"},
	{models.SummaryAvailableCredit, "Available Credit"},
}

// ReportGenerator renders ingestion reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the ingestion report to the writer
func (rg *ReportGenerator) GenerateReport(report *ingest.IngestReport, writer io.Writer) error {
	if report == nil || report.Result == nil {
		return fmt.Errorf("ingestion report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV:
		return rg.generateCSVReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport renders a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(report *ingest.IngestReport, writer io.Writer) error {
	result := report.Result

	fmt.Fprintf(writer, "STATEMENT INGESTION REPORT\n")
	fmt.Fprintf(writer, "Extraction Strategy: %s\n", report.Strategy)
	fmt.Fprintf(writer, "Processing Duration: %v\n\n", report.Duration)

	fmt.Fprintf(writer, "=== STATEMENT SUMMARY ===\n")
	rg.printSummaryFields(result.Summary, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== TRANSACTIONS ===\n")
	rg.printTransactionTable(result.Transactions, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== STATISTICS ===\n")
	rg.printStatistics(result.Statistics, writer)

	if rg.config.IncludeCatalog && len(result.AmountCatalog) > 0 {
		fmt.Fprintf(writer, "\n=== AMOUNT CATALOG ===\n")
		rg.printCatalog(result.AmountCatalog, writer)
	}

	if rg.config.IncludeDedupReport && report.DedupReport != "" {
		fmt.Fprintf(writer, "\n%s\n", report.DedupReport)
	}

	if rg.config.IncludeRawText {
		fmt.Fprintf(writer, "\n=== CLEANED TEXT ===\n%s\n", result.CleanedText)
	}

	return nil
}

// generateJSONReport renders a structured JSON report
func (rg *ReportGenerator) generateJSONReport(report *ingest.IngestReport, writer io.Writer) error {
	filtered := *report
	if !rg.config.IncludeRawText {
		resultCopy := *report.Result
		resultCopy.RawText = ""
		resultCopy.CleanedText = ""
		filtered.Result = &resultCopy
	}
	if !rg.config.IncludeDedupReport {
		filtered.DedupResult = nil
		filtered.DedupReport = ""
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&filtered)
}

// generateCSVReport renders one row per transaction
func (rg *ReportGenerator) generateCSVReport(report *ingest.IngestReport, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{"Date", "Merchant", "Amount", "Currency", "Raw_Text"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, tx := range report.Result.Transactions {
		record := []string{
			tx.Date,
			tx.Merchant,
			tx.Amount.StringFixed(2),
			tx.Currency,
			tx.RawText,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction record: %w", err)
		}
	}

	return csvWriter.Error()
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printSummaryFields(summary models.SummaryFields, writer io.Writer) {
	if len(summary) == 0 {
		fmt.Fprintf(writer, "  (no summary fields matched)\n")
		return
	}

	printed := make(map[string]bool)
	for _, field := range summaryDisplayOrder {
		value, ok := summary[field.key]
		if !ok {
			continue
		}
		printed[field.key] = true
		if value.IsText {
			fmt.Fprintf(writer, "  %-20s %s\n", field.label+":", value.Text)
		} else {
			fmt.Fprintf(writer, "  %-20s %s\n", field.label+":", models.FormatCurrency(value.Amount))
		}
	}

	// Unknown keys render after the fixed set, alphabetically.
	var extras []string
	for key := range summary {
		if !printed[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		fmt.Fprintf(writer, "  %-20s %s\n", key+":", summary[key].String())
	}
}

func (rg *ReportGenerator) printTransactionTable(transactions []models.RawTransactionRecord, writer io.Writer) {
	if len(transactions) == 0 {
		fmt.Fprintf(writer, "  (no transactions extracted)\n")
		return
	}

	fmt.Fprintf(writer, "  %-12s %-*s %15s\n", "Date", rg.config.MaxMerchantWidth, "Merchant", "Amount")
	for _, tx := range transactions {
		fmt.Fprintf(writer, "  %-12s %-*s %15s\n",
			orDash(tx.Date),
			rg.config.MaxMerchantWidth,
			truncate(tx.Merchant, rg.config.MaxMerchantWidth),
			models.FormatCurrency(tx.Amount))
	}
}

func (rg *ReportGenerator) printStatistics(stats models.ExtractionStatistics, writer io.Writer) {
	fmt.Fprintf(writer, "  Transactions:   %d\n", stats.TotalTransactions)
	fmt.Fprintf(writer, "  Total Amount:   %s\n", models.FormatCurrency(stats.TotalAmount))
	fmt.Fprintf(writer, "  Unique Amounts: %d\n", stats.UniqueAmountsFound)
}

func (rg *ReportGenerator) printCatalog(catalog []models.AmountMention, writer io.Writer) {
	for _, mention := range catalog {
		context := strings.Join(strings.Fields(mention.Context), " ")
		fmt.Fprintf(writer, "  %15s  %s\n",
			models.FormatCurrency(mention.Amount),
			truncate(context, 70))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
