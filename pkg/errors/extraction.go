package errors

import (
	"fmt"
	"strings"
)

// AttemptContext records what a single extraction strategy did before failing
type AttemptContext struct {
	Strategy string `json:"strategy"`
	Reason   string `json:"reason"`
}

// ExhaustionError extends the base extraction error with the per-strategy
// failure trail, so callers can distinguish "could not decrypt" from
// "could not extract text" without re-running the chain.
type ExhaustionError struct {
	*IngestError
	Attempts        []AttemptContext `json:"attempts"`
	DecryptionTried bool             `json:"decryption_tried"`
	CandidatesTried int              `json:"candidates_tried,omitempty"`
}

// Error implements the error interface with the attempt trail appended
func (e *ExhaustionError) Error() string {
	var parts []string

	parts = append(parts, e.IngestError.Error())

	if len(e.Attempts) > 0 {
		var names []string
		for _, a := range e.Attempts {
			names = append(names, a.Strategy)
		}
		parts = append(parts, fmt.Sprintf("strategies tried: %s", strings.Join(names, ", ")))
	}

	return strings.Join(parts, "; ")
}

// Unwrap exposes the base error so category and code checks see through
// the trail wrapper.
func (e *ExhaustionError) Unwrap() error {
	return e.IngestError
}

// GetDetailedError returns a detailed multi-line error description
func (e *ExhaustionError) GetDetailedError() string {
	var lines []string

	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))

	for _, attempt := range e.Attempts {
		lines = append(lines, fmt.Sprintf("  → %s: %s", attempt.Strategy, attempt.Reason))
	}

	if e.DecryptionTried {
		lines = append(lines, fmt.Sprintf("  → Password probing ran (%d candidates tried)", e.CandidatesTried))
	}

	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}

	return strings.Join(lines, "\n")
}

// NewExhaustionError creates an error describing a fully exhausted
// extraction chain. When decryption was attempted, the error code is
// decryption_exhausted so callers can surface the sub-reason.
func NewExhaustionError(attempts []AttemptContext, decryptionTried bool, candidatesTried int) *ExhaustionError {
	code := CodeExtractionExhausted
	detail := "every extraction strategy failed"
	if decryptionTried {
		code = CodeDecryptionExhausted
		detail = "every extraction strategy failed, including password probing"
	}

	base := ExtractionError(code, detail, nil).
		WithContext("strategies_tried", len(attempts))
	if decryptionTried {
		base = base.WithContext("candidates_tried", candidatesTried)
	}

	return &ExhaustionError{
		IngestError:     base,
		Attempts:        attempts,
		DecryptionTried: decryptionTried,
		CandidatesTried: candidatesTried,
	}
}
