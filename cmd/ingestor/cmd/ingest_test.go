package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "statement.pdf")
	if err := os.WriteFile(validFile, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/statement.pdf",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func setIngestFlags(t *testing.T, values map[string]interface{}) {
	t.Helper()
	viper.Reset()
	defaults := map[string]interface{}{
		"output-format":     "console",
		"dedupe":            true,
		"ocr-concurrency":   4,
		"probe-concurrency": 1,
	}
	for key, value := range defaults {
		viper.Set(key, value)
	}
	for key, value := range values {
		viper.Set(key, value)
	}
	t.Cleanup(viper.Reset)
}

func TestValidateIngestFlags(t *testing.T) {
	tmpDir := t.TempDir()
	statement := filepath.Join(tmpDir, "statement.pdf")
	if err := os.WriteFile(statement, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create statement file: %v", err)
	}

	complete := func() map[string]interface{} {
		return map[string]interface{}{
			"file":  statement,
			"name":  "John Doe",
			"phone": "0501234567",
			"dob":   "15/03/1980",
		}
	}

	tests := []struct {
		name        string
		mutate      func(map[string]interface{})
		expectError bool
	}{
		{
			name:        "all flags valid",
			mutate:      func(m map[string]interface{}) {},
			expectError: false,
		},
		{
			name:        "missing file",
			mutate:      func(m map[string]interface{}) { m["file"] = "" },
			expectError: true,
		},
		{
			name:        "missing name",
			mutate:      func(m map[string]interface{}) { m["name"] = "" },
			expectError: true,
		},
		{
			name:        "missing phone",
			mutate:      func(m map[string]interface{}) { m["phone"] = "" },
			expectError: true,
		},
		{
			name:        "missing dob",
			mutate:      func(m map[string]interface{}) { m["dob"] = "" },
			expectError: true,
		},
		{
			name:        "invalid output format",
			mutate:      func(m map[string]interface{}) { m["output-format"] = "xml" },
			expectError: true,
		},
		{
			name:        "zero ocr concurrency",
			mutate:      func(m map[string]interface{}) { m["ocr-concurrency"] = 0 },
			expectError: true,
		},
		{
			name:        "zero probe concurrency",
			mutate:      func(m map[string]interface{}) { m["probe-concurrency"] = 0 },
			expectError: true,
		},
		{
			name: "missing output directory",
			mutate: func(m map[string]interface{}) {
				m["output-file"] = "/non/existent/dir/report.json"
			},
			expectError: true,
		},
		{
			name: "json output format",
			mutate: func(m map[string]interface{}) {
				m["output-format"] = "json"
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := complete()
			tt.mutate(values)
			setIngestFlags(t, values)

			err := validateIngestFlags(ingestCmd, nil)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestIngestCommandRegistered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "ingest" {
			found = true
		}
	}
	if !found {
		t.Error("ingest command not registered on root")
	}
}

func TestDedupeCommandRegistered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "dedupe" {
			found = true
		}
	}
	if !found {
		t.Error("dedupe command not registered on root")
	}
}
