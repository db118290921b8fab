package loadplan

import (
	"strings"
	"testing"
)

const planText = `EMIRATES SKYCARGO LOAD PLAN
EK0393/05AUG2025 B777-F A6-EFG VER 2
PAX: NIL DXB-FRA-JFK STD: 14:30
PREPARED BY: J. SMITH
PLN ULD: 06PMC 02AKE BULK ULD VER: 3
PREPARED ON: 05/08/2025 09:12
"ENSURE DG SEGREGATION AS PER IATA"
PLEASE DO NOT OFFLOAD AHEAD OF QRT CHECK
XX 02PMC XX
XX PRIORITY PHARMA SHIPMENT XX
EK0393
SER.  AWB NO       ORG/DES PCS WGT VOL LVOL
SECTOR: DXBFRA
  1 176-12345675 DXBFRA 10 250.5 1.20 1.20 PER/COL FLOWERS FRA GCR SS Y
[KEEP COOL AT ALL TIMES]
  2 176-88990011 DXBFRA 5 100.0 0.50 0.50 MAIL BAGS FRA MAL NN N
  3 176-33445566 DXBFRA 2 80.25 0.30 0.30 DGR CHEMICALS FRA GCR CGC SS Y EK0202 01AUG 0630 *
XX 02PMC XX
***** RAMP TRANSFER *****
  4 176-55667788 DXBFRA 1 50.0 0.20 0.20 SPARE PARTS FRA GCR SS N
XX BULK XX
  5 176-99887766 DXBFRA 3 75.5 0.40 0.40 VAL WATCHES FRA GCR SS Y
TOTALS : 21 556.25 2.60 2.60
BAGG: 120 PCS 1800 KG
COU: NIL
SECTOR: FRAJFK
  1 176-11112222 FRAJFK 7 300.0 1.10 1.10 GEN CARGO JFK GCR SS N
THIS LINE IS NOISE AND DOES NOT PARSE
TOTALS : 7 300.0 1.10 1.10
`

func TestParseHeader(t *testing.T) {
	d := Parse(planText, "EK0393")
	if d == nil {
		t.Fatal("expected a load plan detail")
	}
	if d.FlightNumber != "EK0393" {
		t.Errorf("flight number: %s", d.FlightNumber)
	}
	if d.FlightDate != "05AUG2025" {
		t.Errorf("flight date: %s", d.FlightDate)
	}
	if d.AircraftType != "B777-F" || d.Registration != "A6-EFG" {
		t.Errorf("aircraft: %s %s", d.AircraftType, d.Registration)
	}
	if d.HeaderVersion != "2" {
		t.Errorf("header version: %s", d.HeaderVersion)
	}
	if d.PaxRouting != "NIL DXB-FRA-JFK" {
		t.Errorf("pax routing: %q", d.PaxRouting)
	}
	if d.STD != "14:30" {
		t.Errorf("std: %q", d.STD)
	}
	if d.PreparedBy != "J. SMITH" {
		t.Errorf("prepared by: %q", d.PreparedBy)
	}
	if d.PlannedULDs != "06PMC 02AKE BULK" {
		t.Errorf("planned ulds: %q", d.PlannedULDs)
	}
	if d.ULDVersion != "3" {
		t.Errorf("uld version: %q", d.ULDVersion)
	}
	if d.PreparedOn != "05/08/2025 09:12" {
		t.Errorf("prepared on: %q", d.PreparedOn)
	}
}

func TestParseHeaderNotFound(t *testing.T) {
	if d := Parse(planText, "EK0999"); d != nil {
		t.Errorf("wrong flight number must yield no result, got %+v", d)
	}
	if d := Parse("random text with no header", "EK0393"); d != nil {
		t.Errorf("missing header must yield no result, got %+v", d)
	}
}

func TestParseHeaderFieldsIndependent(t *testing.T) {
	// Only the mandatory composite line; every labeled field is absent.
	d := Parse("EK0393/05AUG2025 B777-F A6-EFG VER 2\nSECTOR: DXBFRA\n", "EK0393")
	if d == nil {
		t.Fatal("expected a detail from the mandatory header alone")
	}
	if d.PaxRouting != "" || d.STD != "" || d.PreparedBy != "" || d.PreparedOn != "" {
		t.Errorf("absent fields must stay empty: %+v", d)
	}
	if len(d.Sectors) != 1 {
		t.Errorf("expected 1 sector, got %d", len(d.Sectors))
	}
}

func TestParseRemarks(t *testing.T) {
	d := Parse(planText, "EK0393")
	if d == nil {
		t.Fatal("expected a load plan detail")
	}

	want := []string{
		"ENSURE DG SEGREGATION AS PER IATA",
		`"ENSURE DG SEGREGATION AS PER IATA"`,
		"PLEASE DO NOT OFFLOAD AHEAD OF QRT CHECK",
		"PRIORITY PHARMA SHIPMENT",
	}
	for _, w := range want {
		if !containsRemark(d.Remarks, w) {
			t.Errorf("missing remark %q in %v", w, d.Remarks)
		}
	}

	// The ULD allocation token is layout, not a remark.
	for _, r := range d.Remarks {
		if strings.Contains(r, "02PMC") {
			t.Errorf("ULD allocation token leaked into remarks: %q", r)
		}
	}
	// Remarks only come from the pre-sector span.
	for _, r := range d.Remarks {
		if strings.Contains(r, "NOISE") {
			t.Errorf("post-sector text leaked into remarks: %q", r)
		}
	}
}

func containsRemark(remarks []string, want string) bool {
	for _, r := range remarks {
		if r == want {
			return true
		}
	}
	return false
}

func TestParseSectorSegmentation(t *testing.T) {
	d := Parse(planText, "EK0393")
	if d == nil {
		t.Fatal("expected a load plan detail")
	}
	if len(d.Sectors) != 2 {
		t.Fatalf("expected 2 sectors, got %d", len(d.Sectors))
	}
	if d.Sectors[0].Code != "DXBFRA" || d.Sectors[1].Code != "FRAJFK" {
		t.Errorf("sector order: %s, %s", d.Sectors[0].Code, d.Sectors[1].Code)
	}
}

func TestULDLabelClaimsPrecedingRows(t *testing.T) {
	d := Parse(planText, "EK0393")
	s := d.Sectors[0]
	if len(s.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(s.Sections))
	}

	first := s.Sections[0]
	if first.ULD != "02PMC" {
		t.Errorf("expected label 02PMC, got %q", first.ULD)
	}
	if len(first.Rows) != 3 {
		t.Fatalf("label must claim the 3 preceding AWB rows, got %d", len(first.Rows))
	}
	if first.IsRampTransfer {
		t.Error("section before the ramp marker must not be a ramp transfer")
	}

	bulk := s.Sections[1]
	if bulk.ULD != "BULK" || len(bulk.Rows) != 1 {
		t.Errorf("expected BULK section with 1 row, got %q with %d", bulk.ULD, len(bulk.Rows))
	}
	if !bulk.IsRampTransfer {
		t.Error("section after the ramp marker must be a ramp transfer")
	}

	tail := s.Sections[2]
	if tail.ULD != "" || len(tail.Rows) != 1 {
		t.Errorf("trailing rows must emit an unassigned section, got %q with %d rows", tail.ULD, len(tail.Rows))
	}
	if !tail.IsRampTransfer {
		t.Error("trailing section after the marker must keep the ramp flag")
	}
}

func TestAWBRowFields(t *testing.T) {
	d := Parse(planText, "EK0393")
	rows := d.Sectors[0].Sections[0].Rows

	r := rows[0]
	if r.Serial != 1 || r.AWBNumber != "176-12345675" || r.RoutePair != "DXBFRA" {
		t.Errorf("row identity: %+v", r)
	}
	if r.Pieces != 10 || r.Weight != 250.5 || r.Volume != 1.20 || r.LoadVolume != 1.20 {
		t.Errorf("row figures: %+v", r)
	}
	if r.SHC != "PER/COL" || r.ManualDesc != "FLOWERS" {
		t.Errorf("shc/desc: %q %q", r.SHC, r.ManualDesc)
	}
	if r.Destination != "FRA" || r.ProductCode != "GCR" {
		t.Errorf("dest/product: %q %q", r.Destination, r.ProductCode)
	}
	if r.BookingStatus != "SS" || r.Priority != "Y" {
		t.Errorf("booking/priority: %q %q", r.BookingStatus, r.Priority)
	}
	if r.Remarks != "KEEP COOL AT ALL TIMES" {
		t.Errorf("bracketed annotation not attached: %q", r.Remarks)
	}

	if rows[1].SHC != "" || rows[1].ManualDesc != "MAIL BAGS" || rows[1].BookingStatus != "NN" {
		t.Errorf("row without SHC: %+v", rows[1])
	}

	inb := rows[2]
	if inb.THCCode != "CGC" {
		t.Errorf("thc code: %q", inb.THCCode)
	}
	if inb.InboundFlight != "EK0202" || inb.ArrivalDate != "01AUG" || inb.ArrivalTime != "0630" {
		t.Errorf("inbound tail: %+v", inb)
	}
	if !inb.SpecialInstr {
		t.Error("special instructions flag not set")
	}
}

func TestSectorTotalsAndSummaries(t *testing.T) {
	d := Parse(planText, "EK0393")
	s := d.Sectors[0]

	if s.Totals.Pcs != 21 || s.Totals.Wgt != 556.25 || s.Totals.Vol != 2.60 || s.Totals.LVol != 2.60 {
		t.Errorf("totals: %+v", s.Totals)
	}
	if s.Baggage != "BAGG: 120 PCS 1800 KG" {
		t.Errorf("baggage: %q", s.Baggage)
	}
	if s.Courier != "COU: NIL" {
		t.Errorf("courier: %q", s.Courier)
	}

	// Absent totals default to zero.
	d2 := Parse("EK0393/05AUG2025 B777-F A6-EFG VER 2\nSECTOR: DXBFRA\n", "EK0393")
	if d2.Sectors[0].Totals.Pcs != 0 || d2.Sectors[0].Totals.Wgt != 0 {
		t.Errorf("expected zero totals, got %+v", d2.Sectors[0].Totals)
	}
}

func TestTotalsMatchEmbeddedRows(t *testing.T) {
	d := Parse(planText, "EK0393")
	for _, s := range d.Sectors {
		pcs := 0
		wgt := 0.0
		for _, sec := range s.Sections {
			for _, r := range sec.Rows {
				pcs += r.Pieces
				wgt += r.Weight
			}
		}
		if pcs != s.Totals.Pcs {
			t.Errorf("sector %s: summed pieces %d != totals %d", s.Code, pcs, s.Totals.Pcs)
		}
		if diff := wgt - s.Totals.Wgt; diff > 0.001 || diff < -0.001 {
			t.Errorf("sector %s: summed weight %.2f != totals %.2f", s.Code, wgt, s.Totals.Wgt)
		}
	}
}

func TestMalformedAWBLinesSkipped(t *testing.T) {
	text := "EK0393/05AUG2025 B777-F A6-EFG VER 2\n" +
		"SECTOR: DXBFRA\n" +
		"  1 176-1234 DXBFRA 10 250.5 1.20 1.20 FLOWERS FRA GCR SS Y\n" + // truncated AWB number
		"  2 176-88990011 DXBFRA FIVE 100.0 0.50 0.50 MAIL FRA MAL NN N\n" + // non-numeric pieces
		"  3 176-88990011 DXBFRA 5 100.0 0.50 0.50 MAIL BAGS FRA MAL NN N\n"

	d := Parse(text, "EK0393")
	if d == nil {
		t.Fatal("expected a detail")
	}
	sections := d.Sectors[0].Sections
	if len(sections) != 1 || len(sections[0].Rows) != 1 {
		t.Fatalf("malformed rows must be skipped silently, got %+v", sections)
	}
	if sections[0].Rows[0].Serial != 3 {
		t.Errorf("expected the valid row, got %+v", sections[0].Rows[0])
	}
}

func TestLabelWithNoPrecedingRows(t *testing.T) {
	text := "EK0393/05AUG2025 B777-F A6-EFG VER 2\n" +
		"SECTOR: DXBFRA\n" +
		"XX 01AKE XX\n" +
		"  1 176-88990011 DXBFRA 5 100.0 0.50 0.50 MAIL BAGS FRA MAL NN N\n"

	d := Parse(text, "EK0393")
	sections := d.Sectors[0].Sections
	if len(sections) != 2 {
		t.Fatalf("expected empty labeled section plus trailing block, got %d", len(sections))
	}
	if sections[0].ULD != "01AKE" || len(sections[0].Rows) != 0 {
		t.Errorf("label with no preceding rows: %+v", sections[0])
	}
	if sections[1].ULD != "" || len(sections[1].Rows) != 1 {
		t.Errorf("trailing block: %+v", sections[1])
	}
}
