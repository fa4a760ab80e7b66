package ingest

import (
	"context"
	"strings"
	"testing"

	"golang-statement-ingestion-service/internal/models"
	ingesterrors "golang-statement-ingestion-service/pkg/errors"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(nil, nil)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return service
}

func createTestProfile() models.CustomerProfile {
	return models.CustomerProfile{
		Name:        "John Doe",
		PhoneNumber: "050 123 4567",
		DateOfBirth: "15/03/1980",
	}
}

func TestServiceConfig_Defaults(t *testing.T) {
	config := DefaultServiceConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if !config.DeduplicateTransactions {
		t.Error("Deduplication should be enabled by default")
	}
}

func TestServiceConfig_Clone(t *testing.T) {
	config := DefaultServiceConfig()
	clone := config.Clone()

	clone.Dedup.FuzzyDateToleranceDays = 10
	clone.Extractor.OCR.DPI = 300

	if config.Dedup.FuzzyDateToleranceDays != 2 {
		t.Error("Clone should not share dedup config")
	}
	if config.Extractor.OCR.DPI != 144 {
		t.Error("Clone should not share extractor config")
	}
}

func TestIngestStatement_RejectsNonPDF(t *testing.T) {
	service := newTestService(t)

	tests := []string{
		"text/plain",
		"image/png",
		"application/json",
		"",
	}

	for _, contentType := range tests {
		_, err := service.IngestStatement(context.Background(),
			[]byte("data"), contentType, createTestProfile())
		if !ingesterrors.IsCode(err, ingesterrors.CodeInvalidInputType) {
			t.Errorf("Content type %q: expected invalid_input_type, got %v", contentType, err)
		}
	}
}

func TestIngestStatement_AcceptsPDFVariants(t *testing.T) {
	service := newTestService(t)

	// Both PDF-family types pass the gate; garbage bytes then fail in
	// extraction, not input validation.
	for _, contentType := range []string{
		"application/pdf",
		"application/x-pdf",
		"Application/PDF; charset=binary",
	} {
		_, err := service.IngestStatement(context.Background(),
			[]byte("garbage"), contentType, createTestProfile())
		if ingesterrors.IsCategory(err, ingesterrors.CategoryInput) {
			t.Errorf("Content type %q: rejected at the input gate: %v", contentType, err)
		}
	}
}

func TestIngestStatement_SparseProfileReachesExtraction(t *testing.T) {
	service := newTestService(t)

	// Profile completeness only affects password candidate derivation, so
	// incomplete profiles must not be rejected before extraction runs.
	tests := []struct {
		name    string
		profile models.CustomerProfile
	}{
		{
			name: "missing date of birth",
			profile: models.CustomerProfile{
				Name:        "John Doe",
				PhoneNumber: "050 123 4567",
			},
		},
		{
			name:    "empty profile",
			profile: models.CustomerProfile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.IngestStatement(context.Background(),
				[]byte("%PDF-1.4 garbage"), "application/pdf", tt.profile)
			if err == nil {
				t.Fatal("Expected extraction failure for unreadable bytes")
			}
			if ingesterrors.IsCategory(err, ingesterrors.CategoryInput) {
				t.Errorf("Profile rejected at the input gate: %v", err)
			}
			if ingesterrors.IsCode(err, ingesterrors.CodeInvalidProfile) {
				t.Errorf("Expected extraction to run, got profile rejection: %v", err)
			}
		})
	}
}

func TestDeduplicateRecords_Standalone(t *testing.T) {
	service := newTestService(t)

	records := []map[string]interface{}{
		{
			"date": "05-10-2024", "merchant": "CARREFOUR",
			"currency": "AED", "amount": 16.20,
		},
		{
			"date": "07-10-2024", "merchant": "CARREFOUR",
			"currency": "AED", "amount": 16.20,
		},
		{
			"date": "15-10-2024", "merchant": "SHARAF DG",
			"currency": "AED", "amount": 248.90,
		},
	}

	result, report := service.DeduplicateRecords(records)

	if result.DedupedCount != 2 {
		t.Errorf("Expected 2 kept, got %d", result.DedupedCount)
	}
	if result.DuplicatesRemoved != 1 {
		t.Errorf("Expected 1 removed, got %d", result.DuplicatesRemoved)
	}
	if !strings.Contains(report, "=== TRANSACTION DEDUPLICATION REPORT ===") {
		t.Error("Expected rendered report")
	}
}

func TestComputeStatistics(t *testing.T) {
	transactions := []models.RawTransactionRecord{
		{Amount: decimal.RequireFromString("16.20"), Currency: "AED"},
		{Amount: decimal.RequireFromString("34.00"), Currency: "AED"},
	}
	catalog := []models.AmountMention{
		{Amount: decimal.RequireFromString("16.20"), Currency: "AED"},
		{Amount: decimal.RequireFromString("34.00"), Currency: "AED"},
		{Amount: decimal.RequireFromString("248.90"), Currency: "AED"},
	}

	stats := computeStatistics(transactions, catalog)

	if stats.TotalTransactions != 2 {
		t.Errorf("Expected 2 transactions, got %d", stats.TotalTransactions)
	}
	if !stats.TotalAmount.Equal(decimal.RequireFromString("50.20")) {
		t.Errorf("Expected total 50.20, got %s", stats.TotalAmount)
	}
	if stats.UniqueAmountsFound != 3 {
		t.Errorf("Expected 3 unique amounts, got %d", stats.UniqueAmountsFound)
	}
	if stats.Currency != "AED" {
		t.Errorf("Expected AED, got %q", stats.Currency)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := computeStatistics(nil, nil)
	if stats.TotalTransactions != 0 || !stats.TotalAmount.IsZero() {
		t.Errorf("Expected zero statistics, got %+v", stats)
	}
}

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"application/pdf", "application/pdf"},
		{"Application/PDF", "application/pdf"},
		{"application/pdf; charset=binary", "application/pdf"},
		{"  application/x-pdf  ", "application/x-pdf"},
	}

	for _, tt := range tests {
		if got := normalizeContentType(tt.input); got != tt.expected {
			t.Errorf("normalizeContentType(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
