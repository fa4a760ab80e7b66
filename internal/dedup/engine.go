// Package dedup collapses duplicate transaction records. Duplicates are
// judged by three independent tests (exact, fuzzy, business rule); any
// one match groups the records, and the lowest-index member of each
// group is kept.
package dedup

import (
	"strings"
	"time"

	"golang-statement-ingestion-service/pkg/logger"

	"github.com/pkg/errors"
)

// entryDateLayout is the day-month-year form statement rows carry.
const entryDateLayout = "02-01-2006"

// DefaultNoiseTokens are the location and filler words stripped before
// merchant names are compared.
var DefaultNoiseTokens = []string{"abu dhabi", "ae", "aed", "center", "store", "shop", "mart"}

// DedupConfig holds configuration for duplicate matching
type DedupConfig struct {
	// FuzzyDateToleranceDays is the window for the fuzzy match test.
	FuzzyDateToleranceDays int `json:"fuzzy_date_tolerance_days"`

	// BusinessDateToleranceDays is the wider window used by the
	// business-rule test.
	BusinessDateToleranceDays int `json:"business_date_tolerance_days"`

	// NoiseTokens are removed from merchant names before comparison.
	NoiseTokens []string `json:"noise_tokens"`
}

// DefaultDedupConfig returns a default deduplication configuration
func DefaultDedupConfig() *DedupConfig {
	return &DedupConfig{
		FuzzyDateToleranceDays:    2,
		BusinessDateToleranceDays: 7,
		NoiseTokens:               append([]string(nil), DefaultNoiseTokens...),
	}
}

// Validate validates the configuration
func (c *DedupConfig) Validate() error {
	if c.FuzzyDateToleranceDays < 0 {
		return errors.New("fuzzy date tolerance cannot be negative")
	}
	if c.BusinessDateToleranceDays < 0 {
		return errors.New("business date tolerance cannot be negative")
	}
	if c.BusinessDateToleranceDays < c.FuzzyDateToleranceDays {
		return errors.New("business date tolerance cannot be tighter than fuzzy tolerance")
	}
	return nil
}

// Clone returns a deep copy of the configuration
func (c *DedupConfig) Clone() *DedupConfig {
	clone := *c
	clone.NoiseTokens = append([]string(nil), c.NoiseTokens...)
	return &clone
}

// Group is one set of records judged equivalent. Indices refer to the
// original input order; the first index is the kept record.
type Group struct {
	Indices []int   `json:"indices"`
	Entries []Entry `json:"entries"`
}

// Result describes a deduplication run
type Result struct {
	Kept              []Entry `json:"kept"`
	Groups            []Group `json:"groups"`
	OriginalCount     int     `json:"original_count"`
	DedupedCount      int     `json:"deduplicated_count"`
	DuplicatesRemoved int     `json:"duplicates_removed"`
}

// Engine runs duplicate detection over transaction entries
type Engine struct {
	Config *DedupConfig
	log    logger.Logger
}

// NewEngine creates a deduplication engine
func NewEngine(config *DedupConfig, log logger.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultDedupConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &Engine{
		Config: config,
		log:    log.WithComponent("dedup"),
	}, nil
}

// Deduplicate scans entries in original order. Each not-yet-grouped
// entry anchors a pass over every later not-yet-grouped entry; matches
// join the anchor's group and cannot anchor or join another group later.
// The result is deterministic and idempotent.
func (e *Engine) Deduplicate(entries []Entry) *Result {
	result := &Result{OriginalCount: len(entries)}
	if len(entries) == 0 {
		result.Kept = []Entry{}
		return result
	}

	grouped := make([]bool, len(entries))

	for i := range entries {
		if grouped[i] {
			continue
		}

		indices := []int{i}
		for j := i + 1; j < len(entries); j++ {
			if grouped[j] {
				continue
			}
			if e.isDuplicate(entries[i], entries[j]) {
				indices = append(indices, j)
				grouped[j] = true
			}
		}

		if len(indices) > 1 {
			grouped[i] = true
			group := Group{Indices: indices}
			for _, idx := range indices {
				group.Entries = append(group.Entries, entries[idx])
			}
			result.Groups = append(result.Groups, group)
			result.DuplicatesRemoved += len(indices) - 1
		}
	}

	removed := make(map[int]bool)
	for _, group := range result.Groups {
		for _, idx := range group.Indices[1:] {
			removed[idx] = true
		}
	}

	result.Kept = make([]Entry, 0, len(entries)-len(removed))
	for i, entry := range entries {
		if !removed[i] {
			result.Kept = append(result.Kept, entry)
		}
	}
	result.DedupedCount = len(result.Kept)

	e.log.WithFields(logger.Fields{
		"original": result.OriginalCount,
		"kept":     result.DedupedCount,
		"removed":  result.DuplicatesRemoved,
		"groups":   len(result.Groups),
	}).Debug("Deduplication complete")

	return result
}

// isDuplicate applies the three match tests; any one suffices.
func (e *Engine) isDuplicate(a, b Entry) bool {
	return e.exactMatch(a, b) || e.fuzzyMatch(a, b) || e.businessRuleMatch(a, b)
}

// exactMatch requires date, amount, currency and merchant to all agree.
func (e *Engine) exactMatch(a, b Entry) bool {
	return a.Date == b.Date &&
		a.Amount.Equal(b.Amount) &&
		a.Currency == b.Currency &&
		a.Merchant == b.Merchant
}

// fuzzyMatch tolerates slight date drift and merchant spelling noise for
// records with identical amounts.
func (e *Engine) fuzzyMatch(a, b Entry) bool {
	if !a.Amount.Equal(b.Amount) || a.Currency != b.Currency {
		return false
	}
	if !e.datesSimilar(a.Date, b.Date, e.Config.FuzzyDateToleranceDays) {
		return false
	}
	return e.merchantsSimilar(a.Merchant, b.Merchant)
}

// businessRuleMatch catches duplicates the field comparisons miss:
// records derived from the same text window, or repeat charges within
// the wider business window.
func (e *Engine) businessRuleMatch(a, b Entry) bool {
	if a.RawText != "" && a.RawText == b.RawText {
		return true
	}
	if sameBlock(a.TransactionBlock, b.TransactionBlock) {
		return true
	}
	return a.Amount.Equal(b.Amount) &&
		a.Currency == b.Currency &&
		e.merchantsSimilar(a.Merchant, b.Merchant) &&
		e.datesSimilar(a.Date, b.Date, e.Config.BusinessDateToleranceDays)
}

// datesSimilar parses both dates as day-month-year and compares the gap
// against the tolerance. Unparseable dates fall back to string equality.
func (e *Engine) datesSimilar(a, b string, toleranceDays int) bool {
	if a == "" || b == "" {
		return false
	}

	da, errA := time.Parse(entryDateLayout, a)
	db, errB := time.Parse(entryDateLayout, b)
	if errA != nil || errB != nil {
		return a == b
	}

	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(toleranceDays)*24*time.Hour
}

// merchantsSimilar compares normalized names: equal, or one contains
// the other.
func (e *Engine) merchantsSimilar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	na := e.normalizeMerchant(a)
	nb := e.normalizeMerchant(b)
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// normalizeMerchant lowercases the name, strips noise tokens and
// collapses whitespace.
func (e *Engine) normalizeMerchant(merchant string) string {
	if merchant == "" {
		return ""
	}

	normalized := strings.ToLower(merchant)
	for _, token := range e.Config.NoiseTokens {
		normalized = strings.ReplaceAll(normalized, token, "")
	}
	return strings.Join(strings.Fields(normalized), " ")
}
