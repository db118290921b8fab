package uldrows

import (
	"strings"
	"testing"

	"uld_ingest/internal/cargo"
)

var header = []string{"F", "ETA", "BP", "ULD", "SHC", "DEST", "REM"}

func TestExtractSingleRow(t *testing.T) {
	e := &Extractor{}
	grid := [][]string{
		header,
		{"EK0393", "14:30", "FRA", "PMC31580EK", "", "", ""},
	}

	flights, stats, err := e.Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flights) != 1 {
		t.Fatalf("expected 1 flight, got %d", len(flights))
	}

	f := flights[0]
	if f.FlightNumber != "EK0393" || f.ETA != "14:30" || f.BoardingPoint != "FRA" {
		t.Errorf("unexpected flight identity: %+v", f)
	}
	if f.ULDCount != 1 || len(f.ULDs) != 1 {
		t.Fatalf("expected exactly 1 ULD, got count=%d len=%d", f.ULDCount, len(f.ULDs))
	}

	u := f.ULDs[0]
	if u.ULDNumber != "PMC31580EK" {
		t.Errorf("expected ULD PMC31580EK, got %s", u.ULDNumber)
	}
	if u.Status != cargo.StatusOnAircraft {
		t.Errorf("expected initial status %d, got %d", cargo.StatusOnAircraft, u.Status)
	}
	if len(u.StatusHistory) != 1 || u.StatusHistory[0].ChangedBy != "System" {
		t.Errorf("expected single System history entry, got %+v", u.StatusHistory)
	}
	if stats.Processed != 1 || stats.Skipped != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestExtractGroupsRowsByFlightKey(t *testing.T) {
	e := &Extractor{}
	grid := [][]string{
		header,
		{"EK0393", "14:30", "FRA", "PMC31580EK", "PER-COL", "DXB", ""},
		{"EK0393", "14:30", "FRA", "AKE10021EK", "", "DXB", ""},
		{"EK0202", "06:10", "JFK", "PMC77810EK", "", "DXB", ""},
		// Same flight number, different ETA: separate logical flight.
		{"EK0393", "22:15", "FRA", "ALF00459EK", "", "DXB", ""},
	}

	flights, stats, err := e.Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flights) != 3 {
		t.Fatalf("expected 3 flights, got %d", len(flights))
	}
	if flights[0].ULDCount != 2 {
		t.Errorf("expected 2 ULDs on first flight, got %d", flights[0].ULDCount)
	}
	if stats.Processed != 4 {
		t.Errorf("expected 4 processed rows, got %d", stats.Processed)
	}
	// Insertion order is discovery order in the file.
	if flights[1].FlightNumber != "EK0202" || flights[2].ETA != "22:15" {
		t.Errorf("discovery order not preserved: %+v", flights)
	}
}

func TestExtractSkipsNaNAndBlankRows(t *testing.T) {
	e := &Extractor{}
	grid := [][]string{
		header,
		{"EK0393", "14:30", "FRA", "NaN", "", "", ""},
		{"NaN", "14:30", "FRA", "PMC31580EK", "", "", ""},
		{"", "14:30", "FRA", "PMC31580EK", "", "", ""},
		{"EK0393", "14:30", "FRA", ""},
		{"EK0393", "14:30", "FRA", "PMC31580EK", "", "", ""},
	}

	flights, stats, err := e.Extract(grid)
	if err != nil {
		t.Fatalf("expected success with one valid row, got %v", err)
	}
	if len(flights) != 1 || flights[0].ULDCount != 1 {
		t.Fatalf("expected 1 flight with 1 ULD, got %+v", flights)
	}
	if stats.Skipped != 4 || stats.Processed != 1 {
		t.Errorf("expected 1 processed / 4 skipped, got %+v", stats)
	}
}

func TestExtractAllRowsInvalidFails(t *testing.T) {
	e := &Extractor{}
	grid := [][]string{
		header,
		{"NaN", "14:30", "FRA", "NaN", "", "", ""},
		{"", "", "", "", "", "", ""},
	}

	_, stats, err := e.Extract(grid)
	if err == nil {
		t.Fatal("expected an error when every row is invalid")
	}
	if !strings.Contains(err.Error(), "2 skipped") {
		t.Errorf("error should report skip count, got %q", err.Error())
	}
	if stats.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", stats.Skipped)
	}
}

func TestExtractKeepsTimePortionOfDateTime(t *testing.T) {
	e := &Extractor{}
	grid := [][]string{
		header,
		{"EK0393", "2025-08-05 14:30:00", "FRA", "PMC31580EK", "", "", ""},
	}

	flights, _, err := e.Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flights[0].ETA != "14:30" {
		t.Errorf("expected ETA 14:30, got %q", flights[0].ETA)
	}
}
