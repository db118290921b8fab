// Package allocation extracts flight identities from allocation workbook
// sheets. A sheet lays out one or more independent flight-group blocks side
// by side, each headed by "Flight No" / "ETD" / "Routing" labels; groups
// establish flight identity only, not cargo contents.
package allocation

import (
	"strings"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/registry"
)

// TargetSheets are the workbook sheet names this format lives on.
var TargetSheets = []string{"EM", "EM & LM", "AFT", "ADV AFT"}

// group is one detected flight-group column block on the header row.
type group struct {
	carrierCol int // column supplying the carrier code, -1 when absent
	flightCol  int
	etdCol     int
	routingCol int
}

// Extractor parses allocation workbook sheets.
type Extractor struct{}

func init() {
	registry.Register(&Extractor{})
}

func (e *Extractor) Name() string           { return "allocation" }
func (e *Extractor) Kinds() []registry.Kind { return []registry.Kind{registry.KindSheet} }
func (e *Extractor) SheetNames() []string   { return TargetSheets }
func (e *Extractor) Priority() int          { return 10 }

// Match reports whether any row carries a qualifying header.
func (e *Extractor) Match(grid [][]string) bool {
	_, groups := findHeader(grid)
	return len(groups) > 0
}

// Extract scans the sheet top-down for the header row, then walks every row
// below it once per detected group. There is no early stop on blank regions:
// blocks may resume further down, so the scan always runs to sheet end.
func (e *Extractor) Extract(grid [][]string) ([]cargo.Flight, registry.Stats, error) {
	var stats registry.Stats

	headerRow, groups := findHeader(grid)
	if len(groups) == 0 {
		// Format not detected; the router falls through.
		return nil, stats, nil
	}

	byKey := make(map[string]bool)
	var flights []cargo.Flight

	for _, row := range grid[headerRow+1:] {
		for _, g := range groups {
			flightNo := cell(row, g.flightCol)
			etd := cell(row, g.etdCol)
			routing := cell(row, g.routingCol)

			// An all-blank group region on this row is just empty layout.
			if flightNo == "" && etd == "" && routing == "" {
				continue
			}
			if flightNo == "" {
				stats.Skipped++
				continue
			}

			carrier := cargo.DefaultCarrier
			if g.carrierCol >= 0 {
				if c := cell(row, g.carrierCol); c != "" {
					carrier = c
				}
			}

			flight := cargo.Flight{
				FlightNumber:  cargo.CanonicalFlightNumberFor(flightNo, carrier),
				ETA:           cargo.NormalizeTime(etd),
				BoardingPoint: routing,
			}
			if byKey[flight.Key()] {
				continue // same flight discovered in another group/block
			}
			byKey[flight.Key()] = true
			flights = append(flights, flight)
			stats.Processed++
		}
	}

	return flights, stats, nil
}

// findHeader locates the first row carrying both a "Flight No" and a
// "Routing" label and resolves each "Flight No" occurrence into a column
// group. A group is accepted only when its nearest forward "ETD" column
// precedes its nearest forward "Routing" column.
func findHeader(grid [][]string) (int, []group) {
	for r, row := range grid {
		if !rowHasLabel(row, "Flight No") || !rowHasLabel(row, "Routing") {
			continue
		}

		var groups []group
		for i := range row {
			if !labelEq(row[i], "Flight No") {
				continue
			}

			etdCol, routingCol := -1, -1
			for j := i + 1; j < len(row); j++ {
				if etdCol < 0 && labelEq(row[j], "ETD") {
					etdCol = j
				}
				if routingCol < 0 && labelEq(row[j], "Routing") {
					routingCol = j
				}
			}
			if etdCol < 0 || routingCol < 0 || etdCol >= routingCol {
				continue
			}

			g := group{carrierCol: -1, flightCol: i, etdCol: etdCol, routingCol: routingCol}
			if i > 0 && labelEq(row[i-1], "Carrier") {
				g.carrierCol = i - 1
			}
			groups = append(groups, g)
		}

		if len(groups) > 0 {
			return r, groups
		}
	}
	return -1, nil
}

func rowHasLabel(row []string, label string) bool {
	for _, c := range row {
		if labelEq(c, label) {
			return true
		}
	}
	return false
}

func labelEq(cellValue, label string) bool {
	return strings.EqualFold(strings.TrimSpace(cellValue), label)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
