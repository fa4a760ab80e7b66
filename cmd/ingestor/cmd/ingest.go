package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang-statement-ingestion-service/cmd/ingestor/config"
	"golang-statement-ingestion-service/internal/ingest"
	"golang-statement-ingestion-service/internal/models"
	"golang-statement-ingestion-service/internal/reporter"
	"golang-statement-ingestion-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the ingest command
var (
	statementFile string
	customerName  string
	customerPhone string
	customerDOB   string
	customerCards []string
	outputFormat  string
	outputFile    string

	enableDedupe     bool
	ocrConcurrency   int
	probeConcurrency int
	showProgress     bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract transactions from a statement document",
	Long: `Ingest processes a single statement document end to end: text
extraction (native, OCR, or decrypt-and-retry), transaction and summary
pattern extraction, and deduplication.

The customer details are used to derive password candidates when the
document is protected.

Examples:
  # Basic ingestion
  ingestor ingest --file statement.pdf --name "John Doe" --phone "0501234567" --dob "15/03/1980"

  # With known card last-four digits for password derivation
  ingestor ingest --file statement.pdf --name "John Doe" --phone "0501234567" \
    --dob "15/03/1980" --cards 9876,1234

  # JSON output to a file
  ingestor ingest --file statement.pdf --name "John Doe" --phone "0501234567" \
    --dob "15/03/1980" --output-format json --output-file result.json

  # Parallel password probing and OCR
  ingestor ingest --file statement.pdf --name "John Doe" --phone "0501234567" \
    --dob "15/03/1980" --probe-concurrency 4 --ocr-concurrency 8 --progress`,

	PreRunE: validateIngestFlags,
	RunE:    runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Required flags
	ingestCmd.Flags().StringVarP(&statementFile, "file", "f", "", "path to the statement document (required)")
	ingestCmd.Flags().StringVarP(&customerName, "name", "n", "", "customer name (required)")
	ingestCmd.Flags().StringVarP(&customerPhone, "phone", "p", "", "customer phone number (required)")
	ingestCmd.Flags().StringVar(&customerDOB, "dob", "", "customer date of birth (required)")
	ingestCmd.Flags().StringSliceVar(&customerCards, "cards", []string{}, "comma-separated known card last-four digits")

	// Output flags
	ingestCmd.Flags().StringVar(&outputFormat, "output-format", "console", "output format: console, json, csv")
	ingestCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Pipeline flags
	ingestCmd.Flags().BoolVar(&enableDedupe, "dedupe", true, "deduplicate extracted transactions")
	ingestCmd.Flags().IntVar(&ocrConcurrency, "ocr-concurrency", 4, "pages OCRed in parallel")
	ingestCmd.Flags().IntVar(&probeConcurrency, "probe-concurrency", 1, "password candidates tried in parallel")
	ingestCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	// Mark required flags
	ingestCmd.MarkFlagRequired("file")
	ingestCmd.MarkFlagRequired("name")
	ingestCmd.MarkFlagRequired("phone")
	ingestCmd.MarkFlagRequired("dob")

	// Bind flags to viper
	viper.BindPFlag("file", ingestCmd.Flags().Lookup("file"))
	viper.BindPFlag("name", ingestCmd.Flags().Lookup("name"))
	viper.BindPFlag("phone", ingestCmd.Flags().Lookup("phone"))
	viper.BindPFlag("dob", ingestCmd.Flags().Lookup("dob"))
	viper.BindPFlag("cards", ingestCmd.Flags().Lookup("cards"))
	viper.BindPFlag("output-format", ingestCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", ingestCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("dedupe", ingestCmd.Flags().Lookup("dedupe"))
	viper.BindPFlag("ocr-concurrency", ingestCmd.Flags().Lookup("ocr-concurrency"))
	viper.BindPFlag("probe-concurrency", ingestCmd.Flags().Lookup("probe-concurrency"))
	viper.BindPFlag("progress", ingestCmd.Flags().Lookup("progress"))
}

func validateIngestFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	statementFile = viper.GetString("file")
	customerName = viper.GetString("name")
	customerPhone = viper.GetString("phone")
	customerDOB = viper.GetString("dob")
	customerCards = viper.GetStringSlice("cards")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	enableDedupe = viper.GetBool("dedupe")
	ocrConcurrency = viper.GetInt("ocr-concurrency")
	probeConcurrency = viper.GetInt("probe-concurrency")
	showProgress = viper.GetBool("progress")

	// Validate required flags
	if statementFile == "" {
		return fmt.Errorf("file is required")
	}
	if customerName == "" {
		return fmt.Errorf("name is required")
	}
	if customerPhone == "" {
		return fmt.Errorf("phone is required")
	}
	if customerDOB == "" {
		return fmt.Errorf("dob is required")
	}

	if err := validateFileExists(statementFile, "statement document"); err != nil {
		return err
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate concurrency bounds
	if ocrConcurrency < 1 {
		return fmt.Errorf("ocr-concurrency must be at least 1")
	}
	if probeConcurrency < 1 {
		return fmt.Errorf("probe-concurrency must be at least 1")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	errorHandler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		if debugLogger, logErr := logger.NewLogger(logger.DebugConfig()); logErr == nil {
			logger.SetGlobalLogger(debugLogger)
		}
		fmt.Fprintf(os.Stderr, "Starting ingestion...\n")
		fmt.Fprintf(os.Stderr, "Statement file: %s\n", statementFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	doc, err := os.ReadFile(statementFile)
	if err != nil {
		return fmt.Errorf("failed to read statement document: %w", err)
	}

	// The pipeline validates the declared content type; for local files
	// that declaration comes from content sniffing.
	contentType := http.DetectContentType(doc)

	profile := models.CustomerProfile{
		Name:          customerName,
		PhoneNumber:   customerPhone,
		DateOfBirth:   customerDOB,
		CardLastFours: customerCards,
	}

	serviceConfig := config.CreateServiceConfig(config.PipelineOptions{
		Deduplicate:      enableDedupe,
		OCRConcurrency:   ocrConcurrency,
		ProbeConcurrency: probeConcurrency,
		ShowProgress:     showProgress,
	})

	service, err := ingest.NewService(serviceConfig, logger.GetGlobalLogger())
	if err != nil {
		return fmt.Errorf("failed to create ingestion service: %w", err)
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "Processing statement...\n")
	}

	report, err := service.IngestStatement(ctx, doc, contentType, profile)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	// Generate the report
	reportConfig := config.CreateReportConfig(outputFormat, enableDedupe)
	generator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	writer := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	if err := generator.GenerateReport(report, writer); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "Done in %v\n", report.Duration)
	}

	return nil
}
