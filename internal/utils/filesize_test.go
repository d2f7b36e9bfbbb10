package utils

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0B"},
		{999, "999B"},
		{1000, "1.00KB"},
		{1536, "1.54KB"},
		{1_500_000, "1.50MB"},
		{2_000_000_000, "2.00GB"},
		{1_250_000_000_000, "1250.00GB"},
	}

	for _, tt := range tests {
		result := FormatSize(tt.bytes)
		if result != tt.expected {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, result, tt.expected)
		}
	}
}

func TestFormatSize_Boundaries(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{999, "999B"},
		{1000, "1.00KB"},
		{999_999, "1000.00KB"},
		{1_000_000, "1.00MB"},
		{999_999_999, "1000.00MB"},
		{1_000_000_000, "1.00GB"},
	}

	for _, tt := range tests {
		result := FormatSize(tt.bytes)
		if result != tt.expected {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, result, tt.expected)
		}
	}
}
