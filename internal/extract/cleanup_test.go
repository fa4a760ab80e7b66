package extract

import (
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "short lines dropped",
			input:    "ab\nStatement of Account\nx",
			expected: "Statement of Account",
		},
		{
			name:     "separator art dropped",
			input:    "-----------\nPOS PURCHASE\n===========",
			expected: "POS PURCHASE",
		},
		{
			name:     "date lines survive",
			input:    "15-03-2024\n***",
			expected: "15-03-2024",
		},
		{
			name:     "currency lines survive even when short-ish",
			input:    "AED 5\n##",
			expected: "AED 5",
		},
		{
			name:     "inner whitespace collapsed",
			input:    "CARREFOUR    ABU   DHABI\tAED 120.00",
			expected: "CARREFOUR ABU DHABI AED 120.00",
		},
		{
			name:     "blank runs collapse",
			input:    "first line here\n\n\n\nsecond line here",
			expected: "first line here\nsecond line here",
		},
		{
			name:     "digit only lines dropped",
			input:    "1234567\nOpening balance carried forward",
			expected: "Opening balance carried forward",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanText(tt.input)
			if result != tt.expected {
				t.Errorf("CleanText(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
