// Package loadplan parses free-text load-plan documents into the
// Sector/ULD-section/AWB-row hierarchy. The text arrives already linearized
// by an external extraction step, so layout fidelity is approximate: every
// field is matched by its own anchored pattern and left empty when absent.
package loadplan

import (
	"regexp"
	"strings"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/patterns"
)

// Header field matchers. Each is independent: a missing label leaves its
// field empty rather than failing the whole header.
var (
	paxRe         = patterns.MustCompile(`PAX:\s*(.*?)\s*STD:`)
	stdRe         = patterns.MustCompile(`STD:\s*({HHMM})`)
	preparedByRe  = patterns.MustCompile(`PREPARED BY\s*:?\s*([A-Z][A-Z. ]*[A-Z.])`)
	plannedULDRe  = patterns.MustCompile(`PLN ULD\s*:?\s*([0-9A-Z/ ]+?)(?:\s+ULD VER|\n|$)`)
	uldVersionRe  = patterns.MustCompile(`ULD VER\s*:?\s*(\S+)`)
	preparedOnRe  = patterns.MustCompile(`PREPARED ON\s*:?\s*({STAMP})`)
	sectorRe      = patterns.MustCompile(`SECTOR:\s*({SECTOR})`)
	flightLineRe  = patterns.MustCompile(`^{FLIGHT}$`)
	quotedRe      = regexp.MustCompile(`"([^"]+)"`)
	uldTokenRe    = regexp.MustCompile(`XX\s+(.+?)\s+XX`)
	uldTokenValRe = patterns.MustCompile(`^(?:\d{0,2}(?:{ULDTYPE})\d{0,2}|BULK)$`)
)

// instructionWords flag free-text operator instructions worth surfacing as
// remarks even without quoting.
var instructionWords = []string{
	"requirement", "ensure", "do not", "please", "must", "should", "station",
}

// Parse parses one flight's load-plan text. The flight number is supplied
// by the caller, never inferred; it anchors the mandatory header line.
// Returns nil when that header is not found.
func Parse(text, flightNumber string) *cargo.LoadPlanDetail {
	flightNumber = cargo.CanonicalFlightNumber(flightNumber)

	headerRe := regexp.MustCompile(
		regexp.QuoteMeta(flightNumber) +
			`/(\d{2}[A-Z]{3}\d{2,4})\s+([A-Z0-9-]+)\s+([A-Z0-9]{1,2}-[A-Z0-9]{3,5})\s+VER\s*:?\s*(\S+)`)

	m := headerRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	detail := &cargo.LoadPlanDetail{
		FlightNumber:  flightNumber,
		FlightDate:    m[1],
		AircraftType:  m[2],
		Registration:  m[3],
		HeaderVersion: m[4],
	}

	// Independent header fields.
	if f := paxRe.FindStringSubmatch(text); f != nil {
		detail.PaxRouting = strings.TrimSpace(f[1])
	}
	if f := stdRe.FindStringSubmatch(text); f != nil {
		detail.STD = f[1]
	}
	if f := preparedByRe.FindStringSubmatch(text); f != nil {
		detail.PreparedBy = strings.TrimSpace(f[1])
	}
	if f := plannedULDRe.FindStringSubmatch(text); f != nil {
		detail.PlannedULDs = strings.TrimSpace(f[1])
	}
	if f := uldVersionRe.FindStringSubmatch(text); f != nil {
		detail.ULDVersion = f[1]
	}
	if f := preparedOnRe.FindStringSubmatch(text); f != nil {
		detail.PreparedOn = strings.TrimSpace(f[1])
	}

	detail.Remarks = extractRemarks(preSectorText(text))
	detail.Sectors = parseSectors(text)
	return detail
}

// preSectorText returns everything before the first SECTOR: occurrence;
// remarks only live in that span.
func preSectorText(text string) string {
	if loc := sectorRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}

// extractRemarks harvests operator remarks from the pre-sector free text.
// Three independent captures run per line: the inner text of a non-ULD
// bracketed XX token, any quoted substring, and whole instruction lines.
func extractRemarks(text string) []string {
	var remarks []string
	seen := make(map[string]bool)
	add := func(r string) {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			return
		}
		seen[r] = true
		remarks = append(remarks, r)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || layoutLabel(trimmed) {
			continue
		}

		isULDToken := false
		if tok := uldTokenRe.FindStringSubmatch(trimmed); tok != nil {
			inner := strings.TrimSpace(tok[1])
			if uldTokenValRe.MatchString(inner) {
				isULDToken = true // allocation token, not a remark
			} else {
				add(inner)
			}
		}

		if q := quotedRe.FindStringSubmatch(trimmed); q != nil {
			add(q[1])
		}

		if isULDToken || awbRe.MatchString(trimmed) {
			continue
		}
		if strings.HasPrefix(trimmed, `"`) || hasInstructionWord(trimmed) {
			add(trimmed)
		}
	}
	return remarks
}

// layoutLabel reports lines that belong to the document's fixed layout
// rather than its content: column headers, the title line, and bare
// flight-number lines.
func layoutLabel(line string) bool {
	if strings.Contains(line, "SER.") || strings.Contains(line, "AWB NO") {
		return true
	}
	if strings.Contains(line, "LOAD PLAN") {
		return true
	}
	return flightLineRe.MatchString(line)
}

func hasInstructionWord(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range instructionWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
