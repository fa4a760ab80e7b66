package config

import (
	"testing"

	"golang-statement-ingestion-service/internal/reporter"
)

func TestCreateServiceConfig(t *testing.T) {
	opts := PipelineOptions{
		Deduplicate:      false,
		OCRConcurrency:   8,
		ProbeConcurrency: 4,
		ShowProgress:     true,
	}

	config := CreateServiceConfig(opts)
	if err := config.Validate(); err != nil {
		t.Fatalf("Config should be valid: %v", err)
	}

	if config.DeduplicateTransactions {
		t.Error("Expected deduplication disabled")
	}
	if config.Extractor.OCR.MaxConcurrency != 8 {
		t.Errorf("Expected OCR concurrency 8, got %d", config.Extractor.OCR.MaxConcurrency)
	}
	if config.Extractor.Prober.MaxConcurrency != 4 {
		t.Errorf("Expected probe concurrency 4, got %d", config.Extractor.Prober.MaxConcurrency)
	}
	if !config.Extractor.Prober.ReportProgress {
		t.Error("Expected progress reporting enabled")
	}
}

func TestCreateServiceConfig_ZeroConcurrencyKeepsDefaults(t *testing.T) {
	config := CreateServiceConfig(PipelineOptions{Deduplicate: true})

	if config.Extractor.OCR.MaxConcurrency != 4 {
		t.Errorf("Expected default OCR concurrency, got %d", config.Extractor.OCR.MaxConcurrency)
	}
	if config.Extractor.Prober.MaxConcurrency != 1 {
		t.Errorf("Expected default probe concurrency, got %d", config.Extractor.Prober.MaxConcurrency)
	}
}

func TestCreateReportConfig(t *testing.T) {
	config := CreateReportConfig("json", false)

	if config.Format != reporter.FormatJSON {
		t.Errorf("Expected json format, got %s", config.Format)
	}
	if config.IncludeDedupReport {
		t.Error("Expected dedup report excluded")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Config should be valid: %v", err)
	}
}

func TestCreateDedupConfig(t *testing.T) {
	config := CreateDedupConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Default dedup config should be valid: %v", err)
	}
	if config.FuzzyDateToleranceDays != 2 || config.BusinessDateToleranceDays != 7 {
		t.Errorf("Unexpected tolerances: %+v", config)
	}
}
