package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CategoryInput, CodeInvalidInputType, "test message")

	if err.Category != CategoryInput {
		t.Errorf("Expected category %s, got %s", CategoryInput, err.Category)
	}

	if err.Code != CodeInvalidInputType {
		t.Errorf("Expected code %s, got %s", CodeInvalidInputType, err.Code)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message 'test message', got %s", err.Message)
	}

	if err.StackTrace == nil {
		t.Error("Expected stack trace to be captured")
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryExtraction, CodeExtractionExhausted, "wrapped")

	if err.Cause != cause {
		t.Error("Expected cause to be preserved")
	}

	if err.Unwrap() != cause {
		t.Error("Expected Unwrap to return cause")
	}

	if Wrap(nil, CategoryExtraction, CodeExtractionExhausted, "x") != nil {
		t.Error("Wrapping nil should return nil")
	}
}

func TestIngestError_Error(t *testing.T) {
	err := New(CategoryInput, CodeInvalidInputType, "bad input")
	if err.Error() != "bad input" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}

	err.WithSuggestion("try a PDF")
	if !strings.Contains(err.Error(), "suggestion: try a PDF") {
		t.Errorf("Expected suggestion in error string, got %s", err.Error())
	}
}

func TestIngestError_GetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected int
	}{
		{CategoryInput, 2},
		{CategoryExtraction, 3},
		{CategoryDecryption, 3},
		{CategoryConfiguration, 4},
		{CategoryInternal, 5},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "test")
		if got := err.GetExitCode(); got != tt.expected {
			t.Errorf("GetExitCode(%s) = %d, expected %d", tt.category, got, tt.expected)
		}
	}
}

func TestDecryptionError(t *testing.T) {
	err := DecryptionError(CodeDecryptionExhausted, 42, 2, nil)

	if err.Category != CategoryDecryption {
		t.Errorf("Expected decryption category, got %s", err.Category)
	}

	if err.Context["candidates_tried"] != 42 {
		t.Errorf("Expected candidates_tried 42, got %v", err.Context["candidates_tried"])
	}

	if err.Context["backends_tried"] != 2 {
		t.Errorf("Expected backends_tried 2, got %v", err.Context["backends_tried"])
	}

	if !strings.Contains(err.Message, "42 password candidates") {
		t.Errorf("Expected candidate count in message, got %s", err.Message)
	}
}

func TestNewExhaustionError(t *testing.T) {
	attempts := []AttemptContext{
		{Strategy: "native", Reason: "no text layer"},
		{Strategy: "ocr", Reason: "tesseract produced no text"},
		{Strategy: "decrypt", Reason: "all candidates failed"},
	}

	err := NewExhaustionError(attempts, true, 17)

	if err.Code != CodeDecryptionExhausted {
		t.Errorf("Expected decryption_exhausted code when probing ran, got %s", err.Code)
	}

	if !strings.Contains(err.Error(), "native, ocr, decrypt") {
		t.Errorf("Expected strategy trail in error, got %s", err.Error())
	}

	detailed := err.GetDetailedError()
	if !strings.Contains(detailed, "17 candidates tried") {
		t.Errorf("Expected candidate count in detailed error, got %s", detailed)
	}

	// Without decryption the code stays extraction_exhausted
	err = NewExhaustionError(attempts[:2], false, 0)
	if err.Code != CodeExtractionExhausted {
		t.Errorf("Expected extraction_exhausted code, got %s", err.Code)
	}
}

func TestIsCategoryAndIsCode(t *testing.T) {
	err := InputError(CodeInvalidInputType, "text/plain", nil)

	if !IsCategory(err, CategoryInput) {
		t.Error("Expected IsCategory to match")
	}

	if IsCategory(err, CategoryExtraction) {
		t.Error("Expected IsCategory not to match wrong category")
	}

	if !IsCode(err, CodeInvalidInputType) {
		t.Error("Expected IsCode to match")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, CodeInvalidInputType) {
		t.Error("Expected IsCode to unwrap chains")
	}

	if IsCategory(fmt.Errorf("plain"), CategoryInput) {
		t.Error("Plain errors should not match any category")
	}
}
