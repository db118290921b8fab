// Package router routes raw file bytes to the extraction strategy that can
// read them: workbook files go through the sheet-targeted strategies, text
// files through delimiter sniffing and the delimited strategies. Strategies
// are tried in priority order; "format not detected" falls through, real
// failures propagate with their diagnostic counts.
package router

import (
	"fmt"
	"path/filepath"
	"strings"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/registry"
	"uld_ingest/internal/workbook"
)

// Result is a successful ingestion of one file.
type Result struct {
	Source  string         `json:"source"`
	Format  string         `json:"format"` // name of the strategy that produced the data
	Flights []cargo.Flight `json:"flights"`
	Stats   registry.Stats `json:"stats"`
}

// spreadsheetExts selects the workbook ingestion path; everything else is
// treated as delimited text.
var spreadsheetExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xls":  true,
}

// Ingest parses one file using the default strategy registry.
func Ingest(name string, data []byte) (*Result, error) {
	return IngestWith(registry.Default(), name, data)
}

// IngestWith parses one file against an explicit registry.
func IngestWith(reg *registry.Registry, name string, data []byte) (*Result, error) {
	reg.Sort()
	if spreadsheetExts[strings.ToLower(filepath.Ext(name))] {
		return ingestWorkbook(reg, name, data)
	}
	return ingestDelimited(reg, name, data)
}

func ingestWorkbook(reg *registry.Registry, name string, data []byte) (*Result, error) {
	sheets, err := workbook.Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	byName := make(map[string][][]string, len(sheets))
	for _, s := range sheets {
		byName[s.Name] = s.Rows
	}

	for _, s := range reg.StrategiesFor(registry.KindSheet) {
		targets := s.SheetNames()
		if len(targets) == 0 {
			// Untargeted strategies read the first sheet.
			grid := sheets[0].Rows
			if !s.Match(grid) {
				continue
			}
			flights, stats, err := s.Extract(grid)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if len(flights) == 0 {
				continue
			}
			return &Result{Source: name, Format: s.Name(), Flights: flights, Stats: stats}, nil
		}

		var present []string
		for _, t := range targets {
			if _, ok := byName[t]; ok {
				present = append(present, t)
			}
		}
		if len(present) == 0 {
			continue // none of this strategy's sheets exist
		}

		// The format is positively recognized by sheet name; an empty
		// union is a data problem, not a fallthrough.
		var flights []cargo.Flight
		var stats registry.Stats
		for _, t := range present {
			got, s2, err := s.Extract(byName[t])
			if err != nil {
				return nil, fmt.Errorf("%s sheet %q: %w", name, t, err)
			}
			flights = unionByKey(flights, got)
			stats.Add(s2)
		}
		if len(flights) == 0 {
			return nil, fmt.Errorf("%s: %s sheets present but no flights extracted (%d rows processed, %d skipped)",
				name, s.Name(), stats.Processed, stats.Skipped)
		}
		return &Result{Source: name, Format: s.Name(), Flights: flights, Stats: stats}, nil
	}

	return nil, fmt.Errorf("%s: no extractor recognized this workbook", name)
}

func ingestDelimited(reg *registry.Registry, name string, data []byte) (*Result, error) {
	grid := SplitDelimited(string(data))

	for _, s := range reg.StrategiesFor(registry.KindDelimited) {
		if !s.Match(grid) {
			continue
		}
		flights, stats, err := s.Extract(grid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(flights) == 0 {
			continue
		}
		return &Result{Source: name, Format: s.Name(), Flights: flights, Stats: stats}, nil
	}

	return nil, fmt.Errorf("%s: no extractor recognized this file", name)
}

// SplitDelimited turns raw text into a cell matrix. The field delimiter is
// a tab when any line contains one, otherwise a comma. Stray carriage
// returns, a UTF-8 BOM, and invalid byte sequences are tolerated.
func SplitDelimited(text string) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	delimiter := ","
	if strings.Contains(text, "\t") {
		delimiter = "\t"
	}

	lines := strings.Split(text, "\n")
	grid := make([][]string, len(lines))
	for i, line := range lines {
		grid[i] = strings.Split(line, delimiter)
	}
	return grid
}

// unionByKey merges flight lists keyed by flight identity; collisions keep
// one record per key, with the richer ULD list winning.
func unionByKey(base, incoming []cargo.Flight) []cargo.Flight {
	return cargo.MergeFlights(base, incoming)
}
