package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryInput         ErrorCategory = "input"
	CategoryDecryption    ErrorCategory = "decryption"
	CategoryExtraction    ErrorCategory = "extraction"
	CategoryPattern       ErrorCategory = "pattern"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Input errors
	CodeInvalidInputType ErrorCode = "invalid_input_type"
	CodeEmptyDocument    ErrorCode = "empty_document"
	CodeInvalidProfile   ErrorCode = "invalid_profile"

	// Decryption errors
	CodeDecryptionExhausted ErrorCode = "decryption_exhausted"
	CodeNoCandidates        ErrorCode = "no_candidates"

	// Extraction errors
	CodeExtractionExhausted ErrorCode = "extraction_exhausted"
	CodeOCRUnavailable      ErrorCode = "ocr_unavailable"
	CodeDocumentUnreadable  ErrorCode = "document_unreadable"

	// Pattern errors
	CodeNoPatternsMatched ErrorCode = "no_patterns_matched"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// IngestError is the base error type for all application errors
type IngestError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *IngestError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *IngestError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *IngestError) GetExitCode() int {
	switch e.Category {
	case CategoryInput:
		return 2
	case CategoryExtraction, CategoryDecryption:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryPattern, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *IngestError) WithContext(key string, value interface{}) *IngestError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *IngestError) WithSuggestion(suggestion string) *IngestError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IngestError
func New(category ErrorCategory, code ErrorCode, message string) *IngestError {
	return &IngestError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with IngestError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *IngestError {
	if err == nil {
		return nil
	}

	return &IngestError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// InputError creates an input-validation error
func InputError(code ErrorCode, detail string, err error) *IngestError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidInputType:
		message = fmt.Sprintf("unsupported document type: %s", detail)
		suggestion = "upload a PDF statement (content type application/pdf)"
	case CodeEmptyDocument:
		message = "document contains no data"
		suggestion = "check that the uploaded file is not empty or truncated"
	case CodeInvalidProfile:
		message = fmt.Sprintf("invalid customer profile: %s", detail)
		suggestion = "provide name, phone number, and date of birth"
	default:
		message = fmt.Sprintf("input error: %s", detail)
		suggestion = "check the request and try again"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryInput, code, message)
	} else {
		result = New(CategoryInput, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("detail", detail)
}

// DecryptionError creates a decryption-related error
func DecryptionError(code ErrorCode, candidatesTried, backendsTried int, err error) *IngestError {
	var message string
	var suggestion string

	switch code {
	case CodeDecryptionExhausted:
		message = fmt.Sprintf("could not decrypt document after %d password candidates against %d backends",
			candidatesTried, backendsTried)
		suggestion = "verify the customer profile fields used to derive the statement password"
	case CodeNoCandidates:
		message = "no password candidates could be derived from the customer profile"
		suggestion = "ensure the profile has a phone number and a parseable date of birth"
	default:
		message = "decryption error"
		suggestion = "check the document encryption and try again"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryDecryption, code, message)
	} else {
		result = New(CategoryDecryption, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("candidates_tried", candidatesTried).
		WithContext("backends_tried", backendsTried)
}

// ExtractionError creates an extraction-related error
func ExtractionError(code ErrorCode, detail string, err error) *IngestError {
	var message string
	var suggestion string

	switch code {
	case CodeExtractionExhausted:
		message = fmt.Sprintf("no text could be extracted from the document: %s", detail)
		suggestion = "the document may be image-only or corrupted; check OCR tool availability"
	case CodeOCRUnavailable:
		message = fmt.Sprintf("OCR tooling unavailable: %s", detail)
		suggestion = "install poppler-utils (pdftoppm) and tesseract-ocr"
	case CodeDocumentUnreadable:
		message = fmt.Sprintf("document could not be opened: %s", detail)
		suggestion = "verify the file is a well-formed PDF"
	default:
		message = fmt.Sprintf("extraction error: %s", detail)
		suggestion = "check the document and try again"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("detail", detail)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *IngestError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(message string, err error) *IngestError {
	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}

	return result.WithSuggestion("this is likely a bug; report it with the document that triggered it")
}

// IsCategory checks whether err is an IngestError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	ingestErr, ok := AsIngestError(err)
	return ok && ingestErr.Category == category
}

// IsCode checks whether err is an IngestError with the given code
func IsCode(err error, code ErrorCode) bool {
	ingestErr, ok := AsIngestError(err)
	return ok && ingestErr.Code == code
}

// AsIngestError extracts an IngestError from an error chain
func AsIngestError(err error) (*IngestError, bool) {
	for err != nil {
		if ingestErr, ok := err.(*IngestError); ok {
			return ingestErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
