package dedup

import (
	"fmt"
	"strings"

	"golang-statement-ingestion-service/internal/models"
)

// Report renders a deterministic, line-oriented summary of a
// deduplication run, listing every group with a KEPT or REMOVED marker
// per member record.
func Report(result *Result) string {
	var sb strings.Builder

	sb.WriteString("=== TRANSACTION DEDUPLICATION REPORT ===\n")
	sb.WriteString(fmt.Sprintf("Original transactions: %d\n", result.OriginalCount))
	sb.WriteString(fmt.Sprintf("Deduplicated transactions: %d\n", result.DedupedCount))
	sb.WriteString(fmt.Sprintf("Duplicates removed: %d\n", result.DuplicatesRemoved))
	sb.WriteString(fmt.Sprintf("Duplicate groups found: %d\n", len(result.Groups)))
	sb.WriteString("\n")

	for groupID, group := range result.Groups {
		sb.WriteString(fmt.Sprintf("Duplicate Group %d:\n", groupID+1))
		for i, entry := range group.Entries {
			status := "REMOVED"
			if i == 0 {
				status = "KEPT"
			}
			sb.WriteString(fmt.Sprintf("  [%s] %s - %s - %s %s\n",
				status,
				orNA(entry.Date),
				orNA(entry.Merchant),
				entry.Amount.StringFixed(2),
				orNA(entry.Currency)))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

// Summary returns the one-line statistics form used in console output.
func Summary(result *Result) string {
	return fmt.Sprintf("%d of %d transactions kept, %d duplicates removed in %d groups",
		result.DedupedCount, result.OriginalCount, result.DuplicatesRemoved, len(result.Groups))
}

// KeptRecords converts the kept entries back to transaction records.
func KeptRecords(result *Result) []models.RawTransactionRecord {
	records := make([]models.RawTransactionRecord, len(result.Kept))
	for i, entry := range result.Kept {
		records[i] = entry.ToRecord()
	}
	return records
}
