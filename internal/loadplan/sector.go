package loadplan

import (
	"regexp"
	"strconv"
	"strings"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/patterns"
)

// rampMarker splits a sector into warehouse and planeside allocation
// blocks; everything after it is a ramp transfer.
const rampMarker = "***** RAMP TRANSFER *****"

var (
	// awbRe matches the fixed-arity AWB data line:
	// serial, AWB number, origin+destination, pieces, weight, volume,
	// load-volume, optional SHC, manual description, destination, product
	// code, optional handling-charge code, booking status, priority, and
	// an optional inbound flight / arrival date / arrival time / special-
	// instructions tail.
	awbRe = patterns.MustCompile(
		`^\s*(\d{1,3})\s+({AWB})\s+({SECTOR})\s+({PCS})\s+({QTY})\s+({QTY})\s+({QTY})` +
			`(?:\s+({SHC}))?` +
			`\s+(.+?)\s+({STATION})\s+([A-Z0-9]{3})(?:\s+([A-Z]{3}))?` +
			`\s+(SS|NN)\s+(Y|N)` +
			`(?:\s+({FLIGHT})\s+({DDMON})\s+(\d{4}))?(?:\s+(\*))?\s*$`)

	totalsRe  = patterns.MustCompile(`TOTALS\s*:\s*({PCS})\s+({QTY})\s+({QTY})\s+({QTY})`)
	annotRe   = regexp.MustCompile(`^\s*\[(.+)\]\s*$`)
	uldLineRe = regexp.MustCompile(`^\s*XX\s+(.+?)\s+XX\s*$`)
)

// sectionState is the per-sector scan state: AWB rows accumulate until a
// ULD label (or the ramp marker, or end of span) claims them. A label
// always applies to the rows that preceded it in the text.
type sectionState struct {
	pending []cargo.AWBRow
	ramp    bool
}

// claim moves the accumulated rows into a new section under the given
// label, tagged with the state's current ramp-transfer flag.
func (st *sectionState) claim(label string, sections []cargo.ULDSection) []cargo.ULDSection {
	sections = append(sections, cargo.ULDSection{
		ULD:            label,
		Rows:           st.pending,
		IsRampTransfer: st.ramp,
	})
	st.pending = nil
	return sections
}

// flushUnassigned emits leftover rows as a section with an empty ULD label.
func (st *sectionState) flushUnassigned(sections []cargo.ULDSection) []cargo.ULDSection {
	if len(st.pending) == 0 {
		return sections
	}
	return st.claim("", sections)
}

// parseSectors segments the document at every SECTOR: occurrence and scans
// each span line by line.
func parseSectors(text string) []cargo.Sector {
	marks := sectorRe.FindAllStringSubmatchIndex(text, -1)
	sectors := make([]cargo.Sector, 0, len(marks))

	for i, mark := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		span := text[mark[1]:end]
		sectors = append(sectors, parseSector(text[mark[2]:mark[3]], span))
	}
	return sectors
}

// parseSector runs one forward pass over a sector's span.
func parseSector(code, span string) cargo.Sector {
	sector := cargo.Sector{Code: code}
	st := &sectionState{}
	lines := strings.Split(span, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.Contains(line, rampMarker):
			// Rows accumulated before the marker keep the previous flag.
			sector.Sections = st.flushUnassigned(sector.Sections)
			st.ramp = true

		case uldLineRe.MatchString(trimmed):
			label := strings.TrimSpace(uldLineRe.FindStringSubmatch(trimmed)[1])
			sector.Sections = st.claim(label, sector.Sections)

		case awbRe.MatchString(line):
			row, ok := parseAWBRow(line)
			if !ok {
				continue // malformed rows never abort the parse
			}
			// A bracketed annotation on the following line belongs to
			// this AWB.
			if i+1 < len(lines) {
				if a := annotRe.FindStringSubmatch(lines[i+1]); a != nil {
					row.Remarks = strings.TrimSpace(a[1])
					i++
				}
			}
			st.pending = append(st.pending, row)

		case strings.HasPrefix(trimmed, "BAGG"):
			sector.Baggage = trimmed

		case strings.HasPrefix(trimmed, "COU"):
			sector.Courier = trimmed

		default:
			if m := totalsRe.FindStringSubmatch(line); m != nil {
				sector.Totals = cargo.SectorTotals{
					Pcs:  atoi(m[1]),
					Wgt:  atof(m[2]),
					Vol:  atof(m[3]),
					LVol: atof(m[4]),
				}
			}
		}
	}

	sector.Sections = st.flushUnassigned(sector.Sections)
	return sector
}

// parseAWBRow converts a matched AWB line into a row. Numeric conversion
// failures mark the line malformed.
func parseAWBRow(line string) (cargo.AWBRow, bool) {
	m := awbRe.FindStringSubmatch(line)
	if m == nil {
		return cargo.AWBRow{}, false
	}

	serial, err := strconv.Atoi(m[1])
	if err != nil {
		return cargo.AWBRow{}, false
	}
	pieces, err := strconv.Atoi(m[4])
	if err != nil {
		return cargo.AWBRow{}, false
	}

	return cargo.AWBRow{
		Serial:        serial,
		AWBNumber:     m[2],
		RoutePair:     m[3],
		Pieces:        pieces,
		Weight:        atof(m[5]),
		Volume:        atof(m[6]),
		LoadVolume:    atof(m[7]),
		SHC:           m[8],
		ManualDesc:    strings.TrimSpace(m[9]),
		Destination:   m[10],
		ProductCode:   m[11],
		THCCode:       m[12],
		BookingStatus: m[13],
		Priority:      m[14],
		InboundFlight: m[15],
		ArrivalDate:   m[16],
		ArrivalTime:   m[17],
		SpecialInstr:  m[18] == "*",
	}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
