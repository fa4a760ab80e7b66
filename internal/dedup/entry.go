package dedup

import (
	"fmt"

	"golang-statement-ingestion-service/internal/models"

	"github.com/shopspring/decimal"
)

// Entry is the deduplication view of a transaction. It mirrors the
// transaction-like map boundary used by the standalone entry point, so
// callers outside the extraction pipeline can feed their own records.
type Entry struct {
	Date             string          `json:"date"`
	Merchant         string          `json:"merchant"`
	Currency         string          `json:"currency"`
	RawText          string          `json:"raw_text"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionBlock []string        `json:"transaction_block"`
}

// FromRecord adapts an extracted transaction record to a dedup entry
func FromRecord(record models.RawTransactionRecord) Entry {
	return Entry{
		Date:             record.Date,
		Merchant:         record.Merchant,
		Currency:         record.Currency,
		RawText:          record.RawText,
		Amount:           record.Amount,
		TransactionBlock: record.TransactionBlock,
	}
}

// FromRecords adapts a slice of extracted records
func FromRecords(records []models.RawTransactionRecord) []Entry {
	entries := make([]Entry, len(records))
	for i, record := range records {
		entries[i] = FromRecord(record)
	}
	return entries
}

// ToRecord converts the entry back to a transaction record
func (e Entry) ToRecord() models.RawTransactionRecord {
	return models.RawTransactionRecord{
		Date:             e.Date,
		Merchant:         e.Merchant,
		Currency:         e.Currency,
		RawText:          e.RawText,
		Amount:           e.Amount,
		TransactionBlock: e.TransactionBlock,
	}
}

// FromMap adapts a loose transaction-like map to a dedup entry. Missing
// keys become zero values; the amount accepts numeric or string forms.
func FromMap(m map[string]interface{}) Entry {
	entry := Entry{
		Date:     stringField(m, "date"),
		Merchant: stringField(m, "merchant"),
		Currency: stringField(m, "currency"),
		RawText:  stringField(m, "raw_text"),
	}

	switch v := m["amount"].(type) {
	case decimal.Decimal:
		entry.Amount = v
	case float64:
		entry.Amount = decimal.NewFromFloat(v)
	case int:
		entry.Amount = decimal.NewFromInt(int64(v))
	case string:
		if amount, err := decimal.NewFromString(v); err == nil {
			entry.Amount = amount
		}
	}

	switch v := m["transaction_block"].(type) {
	case []string:
		entry.TransactionBlock = v
	case []interface{}:
		for _, item := range v {
			entry.TransactionBlock = append(entry.TransactionBlock, fmt.Sprintf("%v", item))
		}
	}

	return entry
}

// FromMaps adapts a slice of transaction-like maps
func FromMaps(maps []map[string]interface{}) []Entry {
	entries := make([]Entry, len(maps))
	for i, m := range maps {
		entries[i] = FromMap(m)
	}
	return entries
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// sameBlock compares transaction blocks element-wise
func sameBlock(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
