// Package uldrows extracts flights from the flat ULD import format: one
// header row followed by one row per ULD with seven positional columns.
package uldrows

import (
	"fmt"
	"strings"
	"time"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/registry"
)

// Positional columns of the flat import format.
const (
	colFlightNumber = iota
	colETA
	colBoardingPoint
	colULDNumber
	colULDSHC
	colDestination
	colRemarks
)

// Extractor parses flat ULD-row imports. It is the terminal fallback for
// both sheet and delimited input, so an empty result is an error rather
// than a fallthrough.
type Extractor struct{}

func init() {
	registry.Register(&Extractor{})
}

func (e *Extractor) Name() string { return "uldrows" }
func (e *Extractor) Kinds() []registry.Kind {
	return []registry.Kind{registry.KindSheet, registry.KindDelimited}
}
func (e *Extractor) SheetNames() []string { return nil }
func (e *Extractor) Priority() int        { return 90 } // catch-all, tried last

// Match accepts any grid with at least one data row below the header.
func (e *Extractor) Match(grid [][]string) bool {
	return len(grid) > 1
}

// Extract walks every row below the header, grouping accepted ULD rows into
// flights keyed by (flightNumber, eta, boardingPoint). Rows with a missing,
// empty, or literal "NaN" flight or ULD number are counted and skipped.
func (e *Extractor) Extract(grid [][]string) ([]cargo.Flight, registry.Stats, error) {
	var stats registry.Stats
	if len(grid) == 0 {
		return nil, stats, fmt.Errorf("no flights found in ULD import: 0 rows processed, 0 skipped")
	}

	now := time.Now()
	byKey := make(map[string]*cargo.Flight)
	var order []string

	for _, row := range grid[1:] {
		flightNumber := cell(row, colFlightNumber)
		uldNumber := cell(row, colULDNumber)
		if !usable(flightNumber) || !usable(uldNumber) {
			stats.Skipped++
			continue
		}

		eta := cell(row, colETA)
		// Date+time cells keep only the time portion.
		if i := strings.Index(eta, " "); i >= 0 {
			eta = eta[i+1:]
			if len(eta) > 5 {
				eta = eta[:5]
			}
		}

		flight := &cargo.Flight{
			FlightNumber:  flightNumber,
			ETA:           eta,
			BoardingPoint: cell(row, colBoardingPoint),
		}
		if existing, ok := byKey[flight.Key()]; ok {
			flight = existing
		} else {
			byKey[flight.Key()] = flight
			order = append(order, flight.Key())
		}

		flight.AddULD(cargo.NewULD(
			uldNumber,
			cell(row, colULDSHC),
			cell(row, colDestination),
			cell(row, colRemarks),
			now,
		))
		stats.Processed++
	}

	if len(order) == 0 {
		return nil, stats, fmt.Errorf("no flights found in ULD import: %d rows processed, %d skipped",
			stats.Processed, stats.Skipped)
	}

	flights := make([]cargo.Flight, 0, len(order))
	for _, key := range order {
		flights = append(flights, *byKey[key])
	}
	return flights, stats, nil
}

// cell returns the trimmed cell at index i, tolerating short rows.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// usable reports whether a required identifier cell carries real data.
// Spreadsheet exports render missing values as the literal "NaN".
func usable(s string) bool {
	return s != "" && s != "NaN"
}
