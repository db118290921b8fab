// Package morning extracts flight identities from the early-morning wave
// summary, a delimited-text report listing first/second wave departures.
package morning

import (
	"regexp"
	"strings"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/registry"
)

// detectRows bounds the header search; the wave summary always opens with
// its header block.
const detectRows = 10

// flightCellRe matches the bare 3-4 digit flight number cell.
var flightCellRe = regexp.MustCompile(`^\d{3,4}$`)

// Extractor parses the wave summary format.
type Extractor struct{}

func init() {
	registry.Register(&Extractor{})
}

func (e *Extractor) Name() string           { return "morning" }
func (e *Extractor) Kinds() []registry.Kind { return []registry.Kind{registry.KindDelimited} }
func (e *Extractor) SheetNames() []string   { return nil }
func (e *Extractor) Priority() int          { return 10 }

// Match applies the format-detection heuristic: within the first ten rows
// there must be a row whose cells include both "ETD" and "ROUTING" and
// whose first cell names the wave/flight listing.
func (e *Extractor) Match(grid [][]string) bool {
	return headerRow(grid) >= 0
}

// Extract scans rows below the header, skipping section-header rows and
// accepting only rows whose first cell is a bare 3-4 digit flight number
// with a usable ETD and routing. Produces identity-only flights.
func (e *Extractor) Extract(grid [][]string) ([]cargo.Flight, registry.Stats, error) {
	var stats registry.Stats

	h := headerRow(grid)
	if h < 0 {
		// Format not detected; the router falls through.
		return nil, stats, nil
	}

	byKey := make(map[string]bool)
	var flights []cargo.Flight

	for _, row := range grid[h+1:] {
		first := strings.ToUpper(cell(row, 0))
		if sectionHeader(row, first) {
			continue
		}
		if !flightCellRe.MatchString(first) {
			stats.Skipped++
			continue
		}

		etd := cargo.NormalizeTime(cell(row, 1))
		routing := cell(row, 2)
		if etd == "" || routing == "" {
			stats.Skipped++
			continue
		}

		flight := cargo.Flight{
			FlightNumber:  cargo.CanonicalFlightNumber(first),
			ETA:           etd,
			BoardingPoint: routing,
		}
		if byKey[flight.Key()] {
			continue
		}
		byKey[flight.Key()] = true
		flights = append(flights, flight)
		stats.Processed++
	}

	return flights, stats, nil
}

// headerRow returns the index of the detection header, or -1.
func headerRow(grid [][]string) int {
	limit := len(grid)
	if limit > detectRows {
		limit = detectRows
	}
	for r := 0; r < limit; r++ {
		row := grid[r]
		if !rowHasCell(row, "ETD") || !rowHasCell(row, "ROUTING") {
			continue
		}
		first := strings.ToUpper(cell(row, 0))
		if strings.Contains(first, "WAVE") || first == "FLIGHT" || strings.Contains(first, "FLIGHTS") {
			return r
		}
	}
	return -1
}

// sectionHeader reports whether a row is a wave/total divider rather than
// data: blank rows, rows whose first cell mentions a wave, and the fixed
// section titles.
func sectionHeader(row []string, first string) bool {
	if blankRow(row) {
		return true
	}
	if strings.Contains(first, "WAVE") {
		return true
	}
	switch first {
	case "TOTAL", "FIRST WAVE FLIGHTS", "SECOND WAVE FLIGHTS":
		return true
	}
	return false
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowHasCell(row []string, upper string) bool {
	for _, c := range row {
		if strings.ToUpper(strings.TrimSpace(c)) == upper {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
