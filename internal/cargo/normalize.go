package cargo

import (
	"regexp"
	"strings"
)

// DefaultCarrier is assumed when a flight code carries no airline prefix.
const DefaultCarrier = "EK"

var (
	timeRe    = regexp.MustCompile(`(\d{1,2}:\d{2})`)
	carrierRe = regexp.MustCompile(`^[A-Z]{2,3}`)
	digitRe   = regexp.MustCompile(`\d`)
)

// NormalizeTime reduces ragged time strings to "HH:MM". It accepts bare
// times ("14:05", "14:05:30") and date-prefixed forms ("2025-08-05 14:05"),
// keeping the first HH:MM occurrence. Input without a recognizable time is
// returned unchanged; blank input yields "".
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if m := timeRe.FindString(s); m != "" {
		return m
	}
	return raw
}

// CanonicalFlightNumber normalizes a flight code to carrier + zero-padded
// 4-digit number, e.g. "393" -> "EK0393", "ek 393" -> "EK0393". Codes with
// no digits at all pass through unchanged.
func CanonicalFlightNumber(raw string) string {
	return CanonicalFlightNumberFor(raw, DefaultCarrier)
}

// CanonicalFlightNumberFor is CanonicalFlightNumber with an explicit default
// carrier, used where a source column supplies the airline per flight group.
func CanonicalFlightNumberFor(raw, carrier string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	digits := strings.Join(digitRe.FindAllString(s, -1), "")
	if digits == "" {
		return raw
	}
	if c := carrierRe.FindString(s); c != "" {
		carrier = c
	}
	if carrier == "" {
		carrier = DefaultCarrier
	}
	for len(digits) < 4 {
		digits = "0" + digits
	}
	return strings.ToUpper(strings.TrimSpace(carrier)) + digits
}
