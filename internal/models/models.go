package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency code used for all statement amounts.
const DefaultCurrency = "AED"

// UnknownMerchant is the merchant name used when no merchant could be parsed.
const UnknownMerchant = "Unknown Merchant"

var (
	nonDigitPattern = regexp.MustCompile(`\D`)
	lastFourPattern = regexp.MustCompile(`^\d{4}$`)
)

// CustomerProfile holds the customer identity fields used to derive password
// candidates for protected statements. It is owned by the caller and treated
// as read-only by the pipeline.
type CustomerProfile struct {
	Name          string   `json:"name"`
	PhoneNumber   string   `json:"phoneNumber"`
	DateOfBirth   string   `json:"dateOfBirth"`
	CardLastFours []string `json:"cardLastFours,omitempty"`
}

// Validate performs basic validation on the CustomerProfile
func (p *CustomerProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("customer name cannot be empty")
	}

	if strings.TrimSpace(p.PhoneNumber) == "" {
		return fmt.Errorf("customer phone number cannot be empty")
	}

	if strings.TrimSpace(p.DateOfBirth) == "" {
		return fmt.Errorf("customer date of birth cannot be empty")
	}

	for _, last4 := range p.CardLastFours {
		if !lastFourPattern.MatchString(last4) {
			return fmt.Errorf("invalid card last-four digits: %q", last4)
		}
	}

	return nil
}

// PhoneDigits returns the phone number with all non-digit characters removed.
func (p *CustomerProfile) PhoneDigits() string {
	return nonDigitPattern.ReplaceAllString(p.PhoneNumber, "")
}

// RawTransactionRecord represents a single transaction extracted from
// statement text. Records are created once per pattern match and never
// mutated afterwards; deduplication operates on indices, not values.
type RawTransactionRecord struct {
	Date             string          `json:"date,omitempty"`
	Merchant         string          `json:"merchant"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	RawText          string          `json:"rawText"`
	TransactionBlock []string        `json:"transactionBlock"`
}

// String returns a string representation of the RawTransactionRecord
func (r *RawTransactionRecord) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Merchant: %s, Amount: %s %s}",
		r.Date, r.Merchant, r.Amount.String(), r.Currency)
}

// MarshalJSON implements custom JSON marshaling so amounts are emitted as
// decimal strings rather than floats.
func (r RawTransactionRecord) MarshalJSON() ([]byte, error) {
	type Alias RawTransactionRecord
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		Alias
	}{
		Amount: r.Amount.String(),
		Alias:  (Alias)(r),
	})
}

// SummaryValue holds a single summary field, which is either a decimal
// amount or verbatim matched text (dates keep their matched form).
type SummaryValue struct {
	Amount decimal.Decimal
	Text   string
	IsText bool
}

// NumericSummaryValue creates a numeric SummaryValue
func NumericSummaryValue(amount decimal.Decimal) SummaryValue {
	return SummaryValue{Amount: amount}
}

// TextSummaryValue creates a text SummaryValue
func TextSummaryValue(text string) SummaryValue {
	return SummaryValue{Text: text, IsText: true}
}

// String returns the value's display form
func (v SummaryValue) String() string {
	if v.IsText {
		return v.Text
	}
	return v.Amount.String()
}

// MarshalJSON emits text values as strings and numeric values as decimal strings
func (v SummaryValue) MarshalJSON() ([]byte, error) {
	if v.IsText {
		return json.Marshal(v.Text)
	}
	return json.Marshal(v.Amount.String())
}

// SummaryFields maps statement summary field names to their extracted
// values. Keys are absent when no pattern matched; values are never
// defaulted to zero.
type SummaryFields map[string]SummaryValue

// Summary field keys extracted from statement text.
const (
	SummaryCurrentBalance  = "current_balance"
	SummaryMinimumPayment  = "minimum_payment"
	SummaryTotalPayment    = "total_payment"
	SummaryPreviousBalance = "previous_balance"
	SummaryCreditLimit     = "credit_limit"
	SummaryAvailableCredit = "available_credit"
	SummaryStatementDate   = "statement_date"
	SummaryDueDate         = "due_date"
)

// AmountMention represents a single currency amount found anywhere in the
// statement text, retained for statistics and auditing rather than
// persistence identity.
type AmountMention struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	RawMatch string          `json:"rawMatch"`
	Context  string          `json:"context"`
}

// MarshalJSON emits the amount as a decimal string
func (m AmountMention) MarshalJSON() ([]byte, error) {
	type Alias AmountMention
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		Alias
	}{
		Amount: m.Amount.String(),
		Alias:  (Alias)(m),
	})
}

// ExtractionStatistics provides aggregate statistics about an ingestion run
type ExtractionStatistics struct {
	TotalTransactions  int             `json:"totalTransactions"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	UniqueAmountsFound int             `json:"uniqueAmountsFound"`
	Currency           string          `json:"currency"`
}

// MarshalJSON emits the total amount as a decimal string
func (s ExtractionStatistics) MarshalJSON() ([]byte, error) {
	type Alias ExtractionStatistics
	return json.Marshal(&struct {
		TotalAmount string `json:"totalAmount"`
		Alias
	}{
		TotalAmount: s.TotalAmount.String(),
		Alias:       (Alias)(s),
	})
}

// ExtractionResult is the structured output of a statement ingestion run
type ExtractionResult struct {
	RawText           string                 `json:"rawText"`
	CleanedText       string                 `json:"cleanedText"`
	Transactions      []RawTransactionRecord `json:"transactions"`
	Summary           SummaryFields          `json:"summary"`
	AmountCatalog     []AmountMention        `json:"amountCatalog"`
	Statistics        ExtractionStatistics   `json:"statistics"`
	ExtractionSuccess bool                   `json:"extractionSuccess"`
}

// FormatCurrency formats an amount for display, e.g. "AED 1,234.56".
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	formatted := strings.Join(grouped, ",")
	if len(parts) == 2 {
		formatted += "." + parts[1]
	}
	if neg {
		formatted = "-" + formatted
	}

	return fmt.Sprintf("%s %s", DefaultCurrency, formatted)
}
