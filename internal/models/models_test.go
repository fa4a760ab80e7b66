package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCustomerProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile CustomerProfile
		wantErr bool
	}{
		{
			name: "valid profile",
			profile: CustomerProfile{
				Name:        "John Doe",
				PhoneNumber: "050 123 4567",
				DateOfBirth: "15/03/1980",
			},
			wantErr: false,
		},
		{
			name: "valid profile with cards",
			profile: CustomerProfile{
				Name:          "John Doe",
				PhoneNumber:   "0501234567",
				DateOfBirth:   "1980-03-15",
				CardLastFours: []string{"1234", "5678"},
			},
			wantErr: false,
		},
		{
			name: "missing name",
			profile: CustomerProfile{
				PhoneNumber: "0501234567",
				DateOfBirth: "1980-03-15",
			},
			wantErr: true,
		},
		{
			name: "missing phone",
			profile: CustomerProfile{
				Name:        "John Doe",
				DateOfBirth: "1980-03-15",
			},
			wantErr: true,
		},
		{
			name: "missing date of birth",
			profile: CustomerProfile{
				Name:        "John Doe",
				PhoneNumber: "0501234567",
			},
			wantErr: true,
		},
		{
			name: "invalid card last four",
			profile: CustomerProfile{
				Name:          "John Doe",
				PhoneNumber:   "0501234567",
				DateOfBirth:   "1980-03-15",
				CardLastFours: []string{"12a4"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCustomerProfile_PhoneDigits(t *testing.T) {
	tests := []struct {
		phone    string
		expected string
	}{
		{"050 123 4567", "0501234567"},
		{"+971-50-123-4567", "971501234567"},
		{"(050) 1234567", "0501234567"},
		{"0501234567", "0501234567"},
		{"", ""},
	}

	for _, tt := range tests {
		profile := CustomerProfile{PhoneNumber: tt.phone}
		if got := profile.PhoneDigits(); got != tt.expected {
			t.Errorf("PhoneDigits(%q) = %q, expected %q", tt.phone, got, tt.expected)
		}
	}
}

func TestRawTransactionRecord_MarshalJSON(t *testing.T) {
	record := RawTransactionRecord{
		Date:             "05-10-2024",
		Merchant:         "CARREFOUR",
		Amount:           decimal.NewFromFloat(16.20),
		Currency:         DefaultCurrency,
		RawText:          "05-10-2024 CARREFOUR AED 16.20",
		TransactionBlock: []string{"05-10-2024 CARREFOUR AED 16.20"},
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !strings.Contains(string(data), `"amount":"16.2"`) {
		t.Errorf("Expected amount as decimal string, got %s", string(data))
	}

	if !strings.Contains(string(data), `"merchant":"CARREFOUR"`) {
		t.Errorf("Expected merchant field, got %s", string(data))
	}
}

func TestSummaryValue(t *testing.T) {
	numeric := NumericSummaryValue(decimal.NewFromFloat(1234.56))
	if numeric.IsText {
		t.Error("Expected numeric summary value")
	}
	if numeric.String() != "1234.56" {
		t.Errorf("Expected 1234.56, got %s", numeric.String())
	}

	text := TextSummaryValue("05-10-2024")
	if !text.IsText {
		t.Error("Expected text summary value")
	}
	if text.String() != "05-10-2024" {
		t.Errorf("Expected 05-10-2024, got %s", text.String())
	}

	data, err := json.Marshal(text)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"05-10-2024"` {
		t.Errorf("Expected quoted date string, got %s", string(data))
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{1234.56, "AED 1,234.56"},
		{16.2, "AED 16.20"},
		{1000000, "AED 1,000,000.00"},
		{0, "AED 0.00"},
		{-950.5, "AED -950.50"},
	}

	for _, tt := range tests {
		got := FormatCurrency(decimal.NewFromFloat(tt.amount))
		if got != tt.expected {
			t.Errorf("FormatCurrency(%v) = %q, expected %q", tt.amount, got, tt.expected)
		}
	}
}
