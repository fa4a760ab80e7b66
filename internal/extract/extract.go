// Package extract turns statement document bytes into text through an
// ordered chain of strategies: native PDF text, rasterize-and-OCR, and
// decrypt-then-retry. Each strategy returns a tagged attempt; the chain
// stops at the first usable result and keeps the failure trail for
// diagnostics.
package extract

import (
	"context"
	"strings"

	"golang-statement-ingestion-service/internal/decrypt"
	"golang-statement-ingestion-service/internal/models"
	"golang-statement-ingestion-service/internal/passwords"
	ingesterrors "golang-statement-ingestion-service/pkg/errors"
	"golang-statement-ingestion-service/pkg/logger"
)

// DefaultPageSeparator joins per-page text in chain output.
const DefaultPageSeparator = "\n\n"

// Attempt is the tagged outcome of one strategy against one document.
// A strategy is not retried once it has failed for a given input.
type Attempt struct {
	Strategy string
	Text     string
	Err      error
}

// Usable reports whether the attempt produced non-whitespace text
func (a Attempt) Usable() bool {
	return a.Err == nil && strings.TrimSpace(a.Text) != ""
}

// Reason returns a short failure description for diagnostics
func (a Attempt) Reason() string {
	if a.Err != nil {
		return a.Err.Error()
	}
	if strings.TrimSpace(a.Text) == "" {
		return "produced no text"
	}
	return ""
}

// Strategy is a single text-extraction technique
type Strategy interface {
	// Name identifies the strategy in attempt trails and logs.
	Name() string

	// Extract attempts to pull text from the document. Failures are
	// reported through the returned Attempt, never by panicking.
	Extract(ctx context.Context, doc []byte) Attempt
}

// ExtractorConfig holds configuration for the extraction chain
type ExtractorConfig struct {
	PageSeparator string                `json:"page_separator"`
	OCR           *OCRConfig            `json:"ocr"`
	Prober        *decrypt.ProberConfig `json:"prober"`
}

// DefaultExtractorConfig returns a default extraction chain configuration
func DefaultExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		PageSeparator: DefaultPageSeparator,
		OCR:           DefaultOCRConfig(),
		Prober:        decrypt.DefaultProberConfig(),
	}
}

// Validate validates the configuration
func (c *ExtractorConfig) Validate() error {
	if c.OCR != nil {
		if err := c.OCR.Validate(); err != nil {
			return err
		}
	}
	if c.Prober != nil {
		if err := c.Prober.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration
func (c *ExtractorConfig) Clone() *ExtractorConfig {
	clone := *c
	if c.OCR != nil {
		clone.OCR = c.OCR.Clone()
	}
	if c.Prober != nil {
		clone.Prober = c.Prober.Clone()
	}
	return &clone
}

// Extraction is the result of a successful chain run
type Extraction struct {
	// RawText is the text produced by the winning strategy.
	RawText string

	// CleanedText is RawText after layout-noise cleanup.
	CleanedText string

	// Strategy names the strategy that produced the text.
	Strategy string

	// Attempts holds every attempt made, including the successful one.
	Attempts []Attempt
}

// Extractor orchestrates the strategy chain
type Extractor struct {
	Config *ExtractorConfig
	log    logger.Logger
}

// NewExtractor creates an extraction chain with the given configuration
func NewExtractor(config *ExtractorConfig, log logger.Logger) (*Extractor, error) {
	if config == nil {
		config = DefaultExtractorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, ingesterrors.ConfigurationError(ingesterrors.CodeInvalidConfig, "extractor", config, err)
	}
	if config.PageSeparator == "" {
		config.PageSeparator = DefaultPageSeparator
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &Extractor{
		Config: config,
		log:    log.WithComponent("extract"),
	}, nil
}

// Extract runs the chain against the document: native text first, then
// OCR, then decrypt-and-retry using passwords derived from the profile.
// It fails only when every strategy is exhausted.
func (e *Extractor) Extract(ctx context.Context, doc []byte, profile models.CustomerProfile) (*Extraction, error) {
	if len(doc) == 0 {
		return nil, ingesterrors.InputError(ingesterrors.CodeEmptyDocument, "zero bytes", nil)
	}

	native := NewNativeStrategy(e.Config.PageSeparator)
	ocr := NewOCRStrategy(e.Config.OCR, e.log)

	var attempts []Attempt
	for _, strategy := range []Strategy{native, ocr} {
		attempt := e.runStrategy(ctx, strategy, doc)
		attempts = append(attempts, attempt)
		if attempt.Usable() {
			return e.finish(attempt, attempts), nil
		}
	}

	// Nothing extractable; the document is most likely encrypted.
	candidates := passwords.Generate(profile)
	decryptAttempt, candidatesTried := e.runDecrypt(ctx, doc, candidates, native, ocr)
	attempts = append(attempts, decryptAttempt)
	if decryptAttempt.Usable() {
		return e.finish(decryptAttempt, attempts), nil
	}

	var trail []ingesterrors.AttemptContext
	for _, attempt := range attempts {
		trail = append(trail, ingesterrors.AttemptContext{
			Strategy: attempt.Strategy,
			Reason:   attempt.Reason(),
		})
	}

	return nil, ingesterrors.NewExhaustionError(trail, candidatesTried > 0, candidatesTried)
}

func (e *Extractor) runStrategy(ctx context.Context, strategy Strategy, doc []byte) Attempt {
	attempt := strategy.Extract(ctx, doc)
	if attempt.Usable() {
		e.log.WithField("strategy", strategy.Name()).Debug("Strategy produced text")
	} else {
		e.log.WithFields(logger.Fields{
			"strategy": strategy.Name(),
			"reason":   attempt.Reason(),
		}).Debug("Strategy failed")
	}
	return attempt
}

// runDecrypt probes password candidates and, on success, restarts the
// non-decrypt strategies against the decrypted byte stream.
func (e *Extractor) runDecrypt(ctx context.Context, doc []byte, candidates []string, native, ocr Strategy) (Attempt, int) {
	attempt := Attempt{Strategy: "decrypt"}

	prober, err := decrypt.NewProber(e.Config.Prober, e.log)
	if err != nil {
		attempt.Err = err
		return attempt, 0
	}

	result, err := prober.TryUnlock(ctx, doc, candidates)
	if err != nil {
		attempt.Err = err
		return attempt, len(candidates)
	}

	if result.Decrypted != nil {
		for _, strategy := range []Strategy{native, ocr} {
			retry := e.runStrategy(ctx, strategy, result.Decrypted)
			if retry.Usable() {
				attempt.Text = retry.Text
				return attempt, len(candidates)
			}
		}
	}

	// Fall back to the text the prober extracted while verifying the
	// password.
	attempt.Text = result.Text
	return attempt, len(candidates)
}

func (e *Extractor) finish(winner Attempt, attempts []Attempt) *Extraction {
	e.log.WithField("strategy", winner.Strategy).Info("Text extracted")
	return &Extraction{
		RawText:     winner.Text,
		CleanedText: CleanText(winner.Text),
		Strategy:    winner.Strategy,
		Attempts:    attempts,
	}
}
