package extract

import (
	"context"
	"strings"
	"testing"

	"golang-statement-ingestion-service/internal/models"
	ingesterrors "golang-statement-ingestion-service/pkg/errors"
)

func TestAttempt_Usable(t *testing.T) {
	tests := []struct {
		name    string
		attempt Attempt
		usable  bool
	}{
		{"text present", Attempt{Text: "statement body"}, true},
		{"whitespace only", Attempt{Text: "  \n\t "}, false},
		{"empty", Attempt{}, false},
		{"error with text", Attempt{Text: "partial", Err: contextError("boom")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attempt.Usable() != tt.usable {
				t.Errorf("Usable() = %v, expected %v", tt.attempt.Usable(), tt.usable)
			}
		})
	}
}

func TestExtractorConfig_Defaults(t *testing.T) {
	config := DefaultExtractorConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if config.PageSeparator != "\n\n" {
		t.Errorf("Unexpected default page separator %q", config.PageSeparator)
	}
	if config.OCR.DPI != 144 {
		t.Errorf("Expected 144 DPI default, got %d", config.OCR.DPI)
	}
}

func TestExtractorConfig_Clone(t *testing.T) {
	config := DefaultExtractorConfig()
	clone := config.Clone()

	clone.OCR.DPI = 300
	clone.Prober.MaxConcurrency = 8

	if config.OCR.DPI != 144 {
		t.Error("Clone should not share OCR config")
	}
	if config.Prober.MaxConcurrency != 1 {
		t.Error("Clone should not share prober config")
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	extractor, err := NewExtractor(nil, nil)
	if err != nil {
		t.Fatalf("Failed to create extractor: %v", err)
	}

	_, err = extractor.Extract(context.Background(), nil, models.CustomerProfile{})
	if !ingesterrors.IsCode(err, ingesterrors.CodeEmptyDocument) {
		t.Errorf("Expected empty_document error, got %v", err)
	}
}

func TestExtract_GarbageDocumentExhausts(t *testing.T) {
	extractor, err := NewExtractor(nil, nil)
	if err != nil {
		t.Fatalf("Failed to create extractor: %v", err)
	}

	profile := models.CustomerProfile{
		Name:        "John Doe",
		PhoneNumber: "0501234567",
		DateOfBirth: "15/03/1980",
	}

	_, err = extractor.Extract(context.Background(), []byte("not a pdf at all"), profile)
	if err == nil {
		t.Fatal("Expected exhaustion on garbage input")
	}

	exhausted, ok := err.(*ingesterrors.ExhaustionError)
	if !ok {
		t.Fatalf("Expected ExhaustionError, got %T: %v", err, err)
	}

	// Native, OCR and decrypt must all appear in the trail.
	trail := exhausted.Error()
	for _, strategy := range []string{"native", "ocr", "decrypt"} {
		if !strings.Contains(trail, strategy) {
			t.Errorf("Expected strategy %q in trail %q", strategy, trail)
		}
	}

	if !exhausted.DecryptionTried {
		t.Error("Expected decryption to have been tried")
	}
	if exhausted.CandidatesTried == 0 {
		t.Error("Expected a non-zero candidate count")
	}
}

func TestNativeStrategy_GarbageInput(t *testing.T) {
	strategy := NewNativeStrategy("")
	attempt := strategy.Extract(context.Background(), []byte("garbage"))

	if attempt.Usable() {
		t.Error("Garbage input must not produce a usable attempt")
	}
	if attempt.Err == nil {
		t.Error("Expected an open error for garbage input")
	}
	if attempt.Strategy != "native" {
		t.Errorf("Expected strategy native, got %q", attempt.Strategy)
	}
}

type contextError string

func (e contextError) Error() string {
	return string(e)
}
