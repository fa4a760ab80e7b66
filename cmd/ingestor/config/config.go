// Package config translates CLI options into component configurations.
package config

import (
	"golang-statement-ingestion-service/internal/decrypt"
	"golang-statement-ingestion-service/internal/dedup"
	"golang-statement-ingestion-service/internal/extract"
	"golang-statement-ingestion-service/internal/ingest"
	"golang-statement-ingestion-service/internal/reporter"
)

// PipelineOptions carries the CLI-level pipeline switches
type PipelineOptions struct {
	Deduplicate      bool
	OCRConcurrency   int
	ProbeConcurrency int
	ShowProgress     bool
}

// CreateServiceConfig builds the ingestion service configuration from
// CLI options, starting from defaults.
func CreateServiceConfig(opts PipelineOptions) *ingest.ServiceConfig {
	config := ingest.DefaultServiceConfig()
	config.DeduplicateTransactions = opts.Deduplicate
	config.Extractor = CreateExtractorConfig(opts)
	return config
}

// CreateExtractorConfig builds the extraction chain configuration
func CreateExtractorConfig(opts PipelineOptions) *extract.ExtractorConfig {
	config := extract.DefaultExtractorConfig()

	if opts.OCRConcurrency > 0 {
		config.OCR.MaxConcurrency = opts.OCRConcurrency
	}
	config.Prober = CreateProberConfig(opts)

	return config
}

// CreateProberConfig builds the password prober configuration
func CreateProberConfig(opts PipelineOptions) *decrypt.ProberConfig {
	config := decrypt.DefaultProberConfig()

	if opts.ProbeConcurrency > 0 {
		config.MaxConcurrency = opts.ProbeConcurrency
	}
	config.ReportProgress = opts.ShowProgress

	return config
}

// CreateDedupConfig builds the deduplication configuration
func CreateDedupConfig() *dedup.DedupConfig {
	return dedup.DefaultDedupConfig()
}

// CreateReportConfig builds the report configuration for the requested
// output format.
func CreateReportConfig(outputFormat string, includeDedupReport bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(outputFormat)
	config.IncludeDedupReport = includeDedupReport
	return config
}
