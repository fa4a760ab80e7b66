// Package decrypt probes password-protected statement documents with
// candidate passwords across independent decryption backends. The probe
// bounds effort, not success: it walks a finite candidate list once and
// reports exhaustion when nothing opens the document.
package decrypt

import (
	"context"
	"sync"

	ingesterrors "golang-statement-ingestion-service/pkg/errors"
	"golang-statement-ingestion-service/pkg/logger"

	"github.com/pkg/errors"
)

// ProberConfig holds configuration for password probing
type ProberConfig struct {
	// MaxConcurrency bounds parallel candidate trials. 1 means strictly
	// sequential probing.
	MaxConcurrency int `json:"max_concurrency"`

	// RelaxedValidation is passed through to the container backend for
	// documents produced by legacy statement generators.
	RelaxedValidation bool `json:"relaxed_validation"`

	// ReportProgress enables interval progress logging during probing.
	ReportProgress bool `json:"report_progress"`
}

// DefaultProberConfig returns a default prober configuration
func DefaultProberConfig() *ProberConfig {
	return &ProberConfig{
		MaxConcurrency:    1,
		RelaxedValidation: true,
	}
}

// Validate validates the prober configuration
func (c *ProberConfig) Validate() error {
	if c.MaxConcurrency < 1 {
		return errors.New("max concurrency must be at least 1")
	}
	return nil
}

// Clone returns a copy of the configuration
func (c *ProberConfig) Clone() *ProberConfig {
	clone := *c
	return &clone
}

// UnlockResult describes a successful probe
type UnlockResult struct {
	// Text is the text extracted while verifying the password.
	Text string

	// Password is the candidate that opened the document.
	Password string

	// Backend names the backend that succeeded.
	Backend string

	// Decrypted holds the decrypted document bytes when the backend
	// produced a rewritten container; nil otherwise.
	Decrypted []byte

	// Attempts counts candidate/backend pairs tried, including the
	// successful one.
	Attempts int
}

// Prober tries password candidates against the configured backends
type Prober struct {
	Config   *ProberConfig
	backends []Backend
	log      logger.Logger
}

// NewProber creates a prober with the standard backend pair: the container
// backend first, then the reader backend.
func NewProber(config *ProberConfig, log logger.Logger) (*Prober, error) {
	if config == nil {
		config = DefaultProberConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, ingesterrors.ConfigurationError(ingesterrors.CodeInvalidConfig, "prober", config, err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &Prober{
		Config: config,
		backends: []Backend{
			&ContainerBackend{RelaxedValidation: config.RelaxedValidation},
			&ReaderBackend{},
		},
		log: log.WithComponent("decrypt"),
	}, nil
}

// NewProberWithBackends creates a prober with explicit backends, used by
// tests and callers that need to restrict the backend set.
func NewProberWithBackends(config *ProberConfig, log logger.Logger, backends ...Backend) (*Prober, error) {
	prober, err := NewProber(config, log)
	if err != nil {
		return nil, err
	}
	prober.backends = backends
	return prober, nil
}

// TryUnlock walks the candidate list in order, trying each backend per
// candidate, and short-circuits on the first success. Wrong-password
// rejections continue silently; other backend failures are logged and
// treated the same. When every candidate fails against every backend the
// probe returns a decryption-exhausted error.
func (p *Prober) TryUnlock(ctx context.Context, doc []byte, candidates []string) (*UnlockResult, error) {
	if len(candidates) == 0 {
		return nil, ingesterrors.DecryptionError(ingesterrors.CodeNoCandidates, 0, len(p.backends), nil)
	}

	p.log.WithFields(logger.Fields{
		"candidates": len(candidates),
		"backends":   len(p.backends),
	}).Debug("Starting password probe")

	var progress *logger.ProgressTracker
	if p.Config.ReportProgress {
		progress = logger.NewProgressTracker(logger.ProgressConfig{
			Operation: "password probe",
			Total:     int64(len(candidates)),
			Logger:    p.log,
		})
	}

	var result *UnlockResult
	attempts := 0

	if p.Config.MaxConcurrency <= 1 {
		result, attempts = p.probeSequential(ctx, doc, candidates, progress)
	} else {
		result, attempts = p.probeParallel(ctx, doc, candidates, progress)
	}

	if result != nil {
		result.Attempts = attempts
		if progress != nil {
			progress.Complete()
		}
		p.log.WithFields(logger.Fields{
			"backend":  result.Backend,
			"attempts": attempts,
		}).Info("Document unlocked")
		return result, nil
	}

	exhausted := ingesterrors.DecryptionError(
		ingesterrors.CodeDecryptionExhausted, len(candidates), len(p.backends), nil)
	if progress != nil {
		progress.CompleteWithError(exhausted)
	}
	return nil, exhausted
}

// probeSequential walks candidates strictly in order.
func (p *Prober) probeSequential(ctx context.Context, doc []byte, candidates []string, progress *logger.ProgressTracker) (*UnlockResult, int) {
	attempts := 0
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, attempts
		}

		result, tried := p.tryCandidate(ctx, doc, candidate)
		attempts += tried
		if progress != nil {
			progress.Increment()
		}
		if result != nil {
			return result, attempts
		}
	}
	return nil, attempts
}

// probeParallel trials candidates in bounded batches. Within a batch all
// trials run concurrently, but the batch result is scanned in candidate
// order, so the reported password is always the lowest-index success even
// when several candidates would open the document.
func (p *Prober) probeParallel(ctx context.Context, doc []byte, candidates []string, progress *logger.ProgressTracker) (*UnlockResult, int) {
	attempts := 0

	for start := 0; start < len(candidates); start += p.Config.MaxConcurrency {
		if ctx.Err() != nil {
			return nil, attempts
		}

		end := start + p.Config.MaxConcurrency
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		results := make([]*UnlockResult, len(batch))
		tried := make([]int, len(batch))

		var wg sync.WaitGroup
		for i, candidate := range batch {
			wg.Add(1)
			go func(i int, candidate string) {
				defer wg.Done()
				results[i], tried[i] = p.tryCandidate(ctx, doc, candidate)
				if progress != nil {
					progress.Increment()
				}
			}(i, candidate)
		}
		wg.Wait()

		for i := range batch {
			attempts += tried[i]
		}

		// Lowest index wins; ties broken by candidate order, not
		// completion order.
		for _, result := range results {
			if result != nil {
				return result, attempts
			}
		}
	}

	return nil, attempts
}

// tryCandidate runs one candidate through every backend in order and
// returns the first success, along with the number of backend attempts.
func (p *Prober) tryCandidate(ctx context.Context, doc []byte, candidate string) (*UnlockResult, int) {
	tried := 0
	for _, backend := range p.backends {
		if ctx.Err() != nil {
			return nil, tried
		}
		tried++

		text, decrypted, err := backend.Unlock(ctx, doc, candidate)
		if err != nil {
			if !errors.Is(err, ErrWrongPassword) && ctx.Err() == nil {
				p.log.WithError(err).WithField("backend", backend.Name()).Warn("Backend attempt failed")
			}
			continue
		}

		return &UnlockResult{
			Text:      text,
			Password:  candidate,
			Backend:   backend.Name(),
			Decrypted: decrypted,
		}, tried
	}
	return nil, tried
}
