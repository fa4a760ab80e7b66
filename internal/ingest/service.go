// Package ingest provides the high-level statement ingestion pipeline.
//
// This package coordinates the entire ingestion workflow, including:
//   - Input validation (content type)
//   - Text extraction through the strategy chain
//   - Pattern-based transaction and summary extraction
//   - Transaction deduplication
//   - Aggregate statistics computation
//
// The Service provides the main entry point for processing a single
// statement document, plus a standalone deduplication entry point for
// records produced elsewhere.
package ingest

import (
	"context"
	"strings"
	"time"

	"golang-statement-ingestion-service/internal/dedup"
	"golang-statement-ingestion-service/internal/extract"
	"golang-statement-ingestion-service/internal/models"
	"golang-statement-ingestion-service/internal/patterns"
	ingesterrors "golang-statement-ingestion-service/pkg/errors"
	"golang-statement-ingestion-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// acceptedContentTypes are the PDF-family content types the pipeline
// accepts. Anything else is rejected before extraction begins.
var acceptedContentTypes = map[string]bool{
	"application/pdf":   true,
	"application/x-pdf": true,
}

// ServiceConfig aggregates the component configurations
type ServiceConfig struct {
	Extractor *extract.ExtractorConfig `json:"extractor"`
	Dedup     *dedup.DedupConfig       `json:"dedup"`

	// DeduplicateTransactions controls whether extracted transactions
	// are deduplicated before the result is returned.
	DeduplicateTransactions bool `json:"deduplicate_transactions"`
}

// DefaultServiceConfig returns a default service configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Extractor:               extract.DefaultExtractorConfig(),
		Dedup:                   dedup.DefaultDedupConfig(),
		DeduplicateTransactions: true,
	}
}

// Validate validates the configuration
func (c *ServiceConfig) Validate() error {
	if c.Extractor != nil {
		if err := c.Extractor.Validate(); err != nil {
			return err
		}
	}
	if c.Dedup != nil {
		if err := c.Dedup.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration
func (c *ServiceConfig) Clone() *ServiceConfig {
	clone := *c
	if c.Extractor != nil {
		clone.Extractor = c.Extractor.Clone()
	}
	if c.Dedup != nil {
		clone.Dedup = c.Dedup.Clone()
	}
	return &clone
}

// IngestReport pairs the extraction result with deduplication details
type IngestReport struct {
	Result      *models.ExtractionResult `json:"result"`
	DedupResult *dedup.Result            `json:"dedupResult,omitempty"`
	DedupReport string                   `json:"dedupReport,omitempty"`
	Strategy    string                   `json:"strategy"`
	Duration    time.Duration            `json:"duration"`
}

// Service is the statement ingestion pipeline
type Service struct {
	Config    *ServiceConfig
	extractor *extract.Extractor
	deduper   *dedup.Engine
	log       logger.Logger
}

// NewService creates an ingestion service
func NewService(config *ServiceConfig, log logger.Logger) (*Service, error) {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, ingesterrors.ConfigurationError(ingesterrors.CodeInvalidConfig, "ingest", config, err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	extractor, err := extract.NewExtractor(config.Extractor, log)
	if err != nil {
		return nil, err
	}
	deduper, err := dedup.NewEngine(config.Dedup, log)
	if err != nil {
		return nil, err
	}

	return &Service{
		Config:    config,
		extractor: extractor,
		deduper:   deduper,
		log:       log.WithComponent("ingest"),
	}, nil
}

// IngestStatement processes one statement document end to end: content
// type check, text extraction, pattern extraction, deduplication, and
// statistics. It returns a fully populated result or a terminal error
// distinguishing wrong format, failed decryption, and failed extraction.
func (s *Service) IngestStatement(ctx context.Context, doc []byte, contentType string, profile models.CustomerProfile) (*IngestReport, error) {
	start := time.Now()

	if !acceptedContentTypes[normalizeContentType(contentType)] {
		return nil, ingesterrors.InputError(ingesterrors.CodeInvalidInputType, contentType, nil)
	}

	// A sparse profile is not an input error. It only narrows the password
	// candidates available if decryption turns out to be needed.
	s.log.WithFields(logger.Fields{
		"size":         len(doc),
		"content_type": contentType,
	}).Info("Ingesting statement")

	extraction, err := s.extractor.Extract(ctx, doc, profile)
	if err != nil {
		return nil, err
	}

	transactions, summary, catalog := patterns.Extract(extraction.RawText)

	report := &IngestReport{Strategy: extraction.Strategy}

	if s.Config.DeduplicateTransactions && len(transactions) > 0 {
		dedupResult := s.deduper.Deduplicate(dedup.FromRecords(transactions))
		transactions = dedup.KeptRecords(dedupResult)
		report.DedupResult = dedupResult
		report.DedupReport = dedup.Report(dedupResult)
	}

	report.Result = &models.ExtractionResult{
		RawText:           extraction.RawText,
		CleanedText:       extraction.CleanedText,
		Transactions:      transactions,
		Summary:           summary,
		AmountCatalog:     catalog,
		Statistics:        computeStatistics(transactions, catalog),
		ExtractionSuccess: true,
	}
	report.Duration = time.Since(start)

	s.log.WithFields(logger.Fields{
		"strategy":     extraction.Strategy,
		"transactions": len(transactions),
		"summary_keys": len(summary),
		"duration":     report.Duration.String(),
	}).Info("Statement ingested")

	return report, nil
}

// DeduplicateRecords is the standalone deduplication entry point. It
// accepts transaction-like maps, independent of extraction, and returns
// the dedup result alongside the rendered group report.
func (s *Service) DeduplicateRecords(records []map[string]interface{}) (*dedup.Result, string) {
	result := s.deduper.Deduplicate(dedup.FromMaps(records))
	return result, dedup.Report(result)
}

// computeStatistics aggregates transaction counts and amounts.
func computeStatistics(transactions []models.RawTransactionRecord, catalog []models.AmountMention) models.ExtractionStatistics {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}

	return models.ExtractionStatistics{
		TotalTransactions:  len(transactions),
		TotalAmount:        total,
		UniqueAmountsFound: len(catalog),
		Currency:           models.DefaultCurrency,
	}
}

func normalizeContentType(contentType string) string {
	// Parameters like charset are irrelevant to the PDF-family check.
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
