// Package patterns provides shared regex patterns and the pattern compiler
// used across cargo document parsing.
package patterns

// BasePatterns defines reusable regex components for cargo documents.
// These are referenced in format patterns using {PATTERN_NAME} syntax.
var BasePatterns = map[string]string{
	// Flight identifiers.
	// Carrier code + zero-padded flight number, e.g. EK0393, QR0817.
	"FLIGHT": `[A-Z]{2,3}\d{4}`,

	// Station codes (IATA).
	"STATION": `[A-Z]{3}`,

	// Six-letter sector code, origin+destination, e.g. DXBFRA.
	"SECTOR": `[A-Z]{6}`,

	// Times and dates.
	"HHMM":  `\d{1,2}:\d{2}`,
	"DDMON": `\d{2}[A-Z]{3}`,        // 05AUG
	"DATE":  `\d{2}[A-Z]{3}\d{2,4}`, // 05AUG25 or 05AUG2025
	"STAMP": `[\d/:. -]+\d`,         // free-form prepared-on timestamps

	// ULD identifiers.
	// Container type + serial + owner, e.g. PMC31580EK, AKE10021EK.
	"ULDNUM": `[A-Z]{3}\d{4,5}[A-Z0-9]{2}`,
	// Known ULD type codes seen in allocation tokens.
	"ULDTYPE": `PMC|PAG|AKE|AKL|AMF|ALF|PLA`,

	// Air waybill number, e.g. 176-12345675.
	"AWB": `\d{3}-\d{8}`,

	// Numeric cargo figures.
	"PCS": `\d+`,
	"QTY": `\d+(?:\.\d+)?`,

	// Special handling codes, slash-delimited on AWB lines: PER/COL.
	// Anchored to the known SHC vocabulary so a three-letter leading word
	// of a cargo description is never mistaken for a handling code.
	"SHC": `(?:PER|COL|DGR|AVI|VAL|VUN|HUM|EAT|ICE|WET|HEA|CAO|RFL|ELI)(?:/[A-Z0-9]{3})*`,

	// Aircraft type and registration, e.g. B777-F, A6-EFG.
	"ACTYPE": `[A-Z]\d{3}[A-Z0-9-]*`,
	"REG":    `[A-Z0-9]{1,2}-[A-Z0-9]{3,5}`,
}
