// Package cargo provides the normalized Flight/ULD and load-plan data model
// shared by all ingestion paths.
package cargo

import "time"

// ULD status progression. Status is owned by the tracking layer; the model
// only guarantees an append-only, correctly ordered history.
const (
	StatusOnAircraft        = 1
	StatusOffloaded         = 2
	StatusInWarehouse       = 3
	StatusBreakdownStarted  = 4
	StatusBreakdownComplete = 5
)

// StatusEvent is one entry in a ULD's append-only status history.
type StatusEvent struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ChangedBy string    `json:"changedBy"`
}

// ULD is a single unit load device discovered on a flight.
// BULK positions carry a trailing "/DATE" suffix in ULDNumber; numbers are
// stored verbatim as found in the source document.
type ULD struct {
	ULDNumber     string        `json:"uldNumber"`
	ULDSHC        string        `json:"uldshc"` // hyphen-delimited special handling codes
	Destination   string        `json:"destination"`
	Remarks       string        `json:"remarks"`
	Status        int           `json:"status"`
	StatusHistory []StatusEvent `json:"statusHistory"`
}

// Flight is one arriving flight with its discovered ULDs.
// Identity is (FlightNumber, ETA, BoardingPoint); ULDCount always equals
// len(ULDs).
type Flight struct {
	FlightNumber  string `json:"flightNumber"`
	ETA           string `json:"eta"`
	BoardingPoint string `json:"boardingPoint"`
	ULDCount      int    `json:"uldCount"`
	ULDs          []ULD  `json:"ulds"`
}

// Key returns the dedup key used everywhere flights are reconciled.
func (f *Flight) Key() string {
	return f.FlightNumber + "|" + f.ETA + "|" + f.BoardingPoint
}

// AddULD appends a ULD and keeps ULDCount in sync.
func (f *Flight) AddULD(u ULD) {
	f.ULDs = append(f.ULDs, u)
	f.ULDCount = len(f.ULDs)
}

// FindULD returns a pointer to the ULD with the given number, or nil.
func (f *Flight) FindULD(number string) *ULD {
	for i := range f.ULDs {
		if f.ULDs[i].ULDNumber == number {
			return &f.ULDs[i]
		}
	}
	return nil
}

// NewULD creates a ULD in the initial on-aircraft state with a seeded
// system history entry.
func NewULD(number, shc, destination, remarks string, now time.Time) ULD {
	return ULD{
		ULDNumber:   number,
		ULDSHC:      shc,
		Destination: destination,
		Remarks:     remarks,
		Status:      StatusOnAircraft,
		StatusHistory: []StatusEvent{
			{Status: StatusOnAircraft, Timestamp: now, ChangedBy: "System"},
		},
	}
}

// LoadPlanDetail is the parsed form of one flight's free-text load plan.
type LoadPlanDetail struct {
	FlightNumber  string   `json:"flightNumber"`
	FlightDate    string   `json:"flightDate"`
	AircraftType  string   `json:"aircraftType"`
	Registration  string   `json:"registration"`
	HeaderVersion string   `json:"headerVersion"`
	PaxRouting    string   `json:"paxRouting"`
	STD           string   `json:"std"`
	PreparedBy    string   `json:"preparedBy"`
	PlannedULDs   string   `json:"plannedUlds"`
	ULDVersion    string   `json:"uldVersion"`
	PreparedOn    string   `json:"preparedOn"`
	Remarks       []string `json:"remarks,omitempty"`
	Sectors       []Sector `json:"sectors"`
}

// Sector is one origin-destination leg of a load plan.
type Sector struct {
	Code     string       `json:"sector"` // six uppercase letters, origin+destination
	Sections []ULDSection `json:"sections"`
	Baggage  string       `json:"baggage,omitempty"`
	Courier  string       `json:"courier,omitempty"`
	Totals   SectorTotals `json:"totals"`
}

// SectorTotals mirrors the "TOTALS :" summary line of a sector.
type SectorTotals struct {
	Pcs  int     `json:"pcs"`
	Wgt  float64 `json:"wgt"`
	Vol  float64 `json:"vol"`
	LVol float64 `json:"lvol"`
}

// ULDSection groups the AWB rows allocated to one ULD label. An empty ULD
// label means the rows were never assigned (trailing block or pre-marker
// accumulation).
type ULDSection struct {
	ULD            string   `json:"uld"`
	Rows           []AWBRow `json:"rows"`
	IsRampTransfer bool     `json:"isRampTransfer"`
}

// AWBRow is a single air waybill line of a load plan section.
type AWBRow struct {
	Serial        int     `json:"serial"`
	AWBNumber     string  `json:"awbNumber"`
	RoutePair     string  `json:"routePair"` // origin+destination, six letters
	Pieces        int     `json:"pcs"`
	Weight        float64 `json:"wgt"`
	Volume        float64 `json:"vol"`
	LoadVolume    float64 `json:"lvol"`
	SHC           string  `json:"shc,omitempty"`
	ManualDesc    string  `json:"manualDesc"`
	Destination   string  `json:"destination"`
	ProductCode   string  `json:"productCode"`
	THCCode       string  `json:"thcCode,omitempty"`
	BookingStatus string  `json:"bookingStatus"` // "SS" or "NN"
	Priority      string  `json:"priority"`      // "Y" or "N"
	InboundFlight string  `json:"inboundFlight,omitempty"`
	ArrivalDate   string  `json:"arrivalDate,omitempty"`
	ArrivalTime   string  `json:"arrivalTime,omitempty"`
	SpecialInstr  bool    `json:"specialInstr,omitempty"`
	Remarks       string  `json:"remarks,omitempty"` // bracketed annotation on the following line
}
