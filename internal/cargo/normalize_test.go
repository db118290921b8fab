package cargo

import "testing"

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "14:30", "14:30"},
		{"with seconds", "14:05:30", "14:05"},
		{"date prefix", "2025-08-05 06:45", "06:45"},
		{"date prefix with seconds", "05/08/2025 22:10:00", "22:10"},
		{"single digit hour", "9:05", "9:05"},
		{"no time pattern", "TBA", "TBA"},
		{"blank", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTime(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeTime(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTimeIdempotent(t *testing.T) {
	inputs := []string{"14:05:30", "2025-08-05 06:45", "14:30", "TBA", ""}
	for _, in := range inputs {
		once := NormalizeTime(in)
		twice := NormalizeTime(once)
		if once != twice {
			t.Errorf("NormalizeTime not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCanonicalFlightNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare digits", "801", "EK0801"},
		{"carrier present", "EK393", "EK0393"},
		{"carrier with space", "EK 393", "EK0393"},
		{"already padded", "EK0393", "EK0393"},
		{"lowercase", "ek9", "EK0009"},
		{"other carrier", "QR817", "QR0817"},
		{"no digits", "CHARTER", "CHARTER"},
		{"punctuation noise", "EK-393", "EK0393"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalFlightNumber(tt.input)
			if got != tt.expected {
				t.Errorf("CanonicalFlightNumber(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalFlightNumberFor(t *testing.T) {
	if got := CanonicalFlightNumberFor("77", "QR"); got != "QR0077" {
		t.Errorf("expected QR0077, got %q", got)
	}
	// An explicit carrier in the code overrides the group carrier.
	if got := CanonicalFlightNumberFor("BA123", "QR"); got != "BA0123" {
		t.Errorf("expected BA0123, got %q", got)
	}
}
