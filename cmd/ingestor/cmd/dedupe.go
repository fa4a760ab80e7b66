package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"golang-statement-ingestion-service/internal/ingest"
	"golang-statement-ingestion-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the dedupe command
var (
	recordsFile      string
	dedupeOutput     string
	dedupeReportOnly bool
)

// dedupeCmd represents the standalone dedupe command
var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Deduplicate transaction records from a JSON file",
	Long: `Dedupe runs duplicate detection over transaction records produced
elsewhere, independent of document extraction. The input is a JSON array of
transaction objects carrying at least date, amount, currency, merchant,
raw_text and transaction_block fields.

Examples:
  # Deduplicate and print kept records as JSON
  ingestor dedupe --file records.json

  # Only print the group report
  ingestor dedupe --file records.json --report-only

  # Write kept records to a file
  ingestor dedupe --file records.json --output-file deduplicated.json`,

	PreRunE: validateDedupeFlags,
	RunE:    runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	dedupeCmd.Flags().StringVarP(&recordsFile, "file", "f", "", "path to the JSON records file (required)")
	dedupeCmd.Flags().StringVarP(&dedupeOutput, "output-file", "o", "", "output file path (default: stdout)")
	dedupeCmd.Flags().BoolVar(&dedupeReportOnly, "report-only", false, "print only the group report")

	dedupeCmd.MarkFlagRequired("file")
}

func validateDedupeFlags(cmd *cobra.Command, args []string) error {
	if recordsFile == "" {
		return fmt.Errorf("file is required")
	}
	return validateFileExists(recordsFile, "records file")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	errorHandler := NewCLIErrorHandler()

	data, err := os.ReadFile(recordsFile)
	if err != nil {
		return fmt.Errorf("failed to read records file: %w", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("records file is not a JSON array of objects: %w", err)
	}

	service, err := ingest.NewService(nil, logger.GetGlobalLogger())
	if err != nil {
		return fmt.Errorf("failed to create ingestion service: %w", err)
	}

	result, report := service.DeduplicateRecords(records)

	writer := os.Stdout
	if dedupeOutput != "" {
		f, err := os.Create(dedupeOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	if dedupeReportOnly {
		fmt.Fprintln(writer, report)
		return nil
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	if viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, report)
	}

	return nil
}
