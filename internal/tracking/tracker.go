package tracking

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"uld_ingest/internal/cargo"
)

// Tracker manages flight and ULD state across ingestion runs.
type Tracker struct {
	db *sql.DB
	mu sync.RWMutex

	// In-memory flight cache for fast access, keyed by flight identity.
	flights map[string]*cargo.Flight

	// Callbacks for change notifications.
	onFlightNew     func(*cargo.Flight)
	onStatusChanged func(flightKey string, uld *cargo.ULD)
}

// NewTracker creates a new tracker with the given database path.
// If dbPath is empty or ":memory:", uses an in-memory database.
func NewTracker(dbPath string) (*Tracker, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Initialise the schema.
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	t := &Tracker{
		db:      db,
		flights: make(map[string]*cargo.Flight),
	}

	// Load existing flights into memory.
	if err := t.loadFlights(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return t, nil
}

// Close closes the database connection.
func (t *Tracker) Close() error {
	return t.db.Close()
}

// OnFlightNew sets a callback for when a flight is first discovered.
func (t *Tracker) OnFlightNew(fn func(*cargo.Flight)) {
	t.onFlightNew = fn
}

// OnStatusChanged sets a callback for when a ULD status advances.
func (t *Tracker) OnStatusChanged(fn func(flightKey string, uld *cargo.ULD)) {
	t.onStatusChanged = fn
}

// loadFlights loads flights, their ULDs and status history from the database.
func (t *Tracker) loadFlights() error {
	rows, err := t.db.Query(`
		SELECT key, flight_number, eta, boarding_point
		FROM flights
	`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var f cargo.Flight
		var eta, bp sql.NullString
		if err := rows.Scan(&key, &f.FlightNumber, &eta, &bp); err != nil {
			continue
		}
		f.ETA = eta.String
		f.BoardingPoint = bp.String
		t.flights[key] = &f
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := t.loadULDs(); err != nil {
		return err
	}
	return t.loadHistory()
}

func (t *Tracker) loadULDs() error {
	rows, err := t.db.Query(`
		SELECT flight_key, uld_number, uld_shc, destination, remarks, status
		FROM ulds
		ORDER BY flight_key, position
	`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var u cargo.ULD
		var shc, dest, remarks sql.NullString
		if err := rows.Scan(&key, &u.ULDNumber, &shc, &dest, &remarks, &u.Status); err != nil {
			continue
		}
		u.ULDSHC = shc.String
		u.Destination = dest.String
		u.Remarks = remarks.String

		if f, ok := t.flights[key]; ok {
			f.AddULD(u)
		}
	}
	return rows.Err()
}

func (t *Tracker) loadHistory() error {
	rows, err := t.db.Query(`
		SELECT flight_key, uld_number, status, changed_by, recorded_at
		FROM status_history
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, uldNumber string
		var ev cargo.StatusEvent
		if err := rows.Scan(&key, &uldNumber, &ev.Status, &ev.ChangedBy, &ev.Timestamp); err != nil {
			continue
		}
		f, ok := t.flights[key]
		if !ok {
			continue
		}
		for i := range f.ULDs {
			if f.ULDs[i].ULDNumber == uldNumber {
				f.ULDs[i].StatusHistory = append(f.ULDs[i].StatusHistory, ev)
				break
			}
		}
	}
	return rows.Err()
}

// MergeIngest merges freshly extracted flights into the tracked state.
// Known flights follow the merge rule: incoming header fields win, the
// longer ULD list is kept whole. Returns the number of newly discovered
// flights.
func (t *Tracker) MergeIngest(incoming []cargo.Flight) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	discovered := 0
	for _, in := range incoming {
		key := in.Key()

		known, exists := t.flights[key]
		if !exists {
			f := in
			t.flights[key] = &f
			t.saveFlight(key, &f, true)
			discovered++
			if t.onFlightNew != nil {
				t.onFlightNew(&f)
			}
			continue
		}

		merged := cargo.MergeFlight(*known, in)
		// Keep statuses already advanced past the seeded initial state,
		// and persist seed history for ULDs this import added.
		for i := range merged.ULDs {
			prev := known.FindULD(merged.ULDs[i].ULDNumber)
			if prev == nil {
				t.seedHistory(key, &merged.ULDs[i])
				continue
			}
			if prev.Status > merged.ULDs[i].Status {
				merged.ULDs[i].Status = prev.Status
				merged.ULDs[i].StatusHistory = prev.StatusHistory
			}
		}
		*known = merged
		t.saveFlight(key, known, false)
	}
	return discovered
}

// AdvanceULD moves a ULD to the given status, appending to its history.
// Status may only move forward through the lifecycle.
func (t *Tracker) AdvanceULD(flightKey, uldNumber string, status int, changedBy string) error {
	if status < cargo.StatusOnAircraft || status > cargo.StatusBreakdownComplete {
		return fmt.Errorf("invalid ULD status %d", status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.flights[flightKey]
	if !ok {
		return fmt.Errorf("unknown flight %q", flightKey)
	}
	u := f.FindULD(uldNumber)
	if u == nil {
		return fmt.Errorf("unknown ULD %q on flight %q", uldNumber, flightKey)
	}
	if status <= u.Status {
		return fmt.Errorf("ULD %s status cannot move from %d to %d", uldNumber, u.Status, status)
	}

	now := time.Now().UTC()
	u.Status = status
	u.StatusHistory = append(u.StatusHistory, cargo.StatusEvent{
		Status:    status,
		Timestamp: now,
		ChangedBy: changedBy,
	})

	_, _ = t.db.Exec(`
		UPDATE ulds SET status = ?, updated_at = ?
		WHERE flight_key = ? AND uld_number = ?
	`, status, now, flightKey, uldNumber)
	_, _ = t.db.Exec(`
		INSERT INTO status_history (flight_key, uld_number, status, changed_by, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, flightKey, uldNumber, status, changedBy, now)

	if t.onStatusChanged != nil {
		t.onStatusChanged(flightKey, u)
	}
	return nil
}

// saveFlight persists a flight and its ULDs to the database.
func (t *Tracker) saveFlight(key string, f *cargo.Flight, isNew bool) {
	_, err := t.db.Exec(`
		INSERT INTO flights (key, flight_number, eta, boarding_point, uld_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			flight_number = excluded.flight_number,
			eta = excluded.eta,
			boarding_point = excluded.boarding_point,
			uld_count = excluded.uld_count,
			last_seen = CURRENT_TIMESTAMP,
			import_count = import_count + 1
	`, key, f.FlightNumber, f.ETA, f.BoardingPoint, f.ULDCount)
	// Silently ignore errors - persistence is best-effort, the cache is
	// authoritative for the life of the process.
	_ = err

	for i, u := range f.ULDs {
		_, _ = t.db.Exec(`
			INSERT INTO ulds (flight_key, position, uld_number, uld_shc, destination, remarks, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(flight_key, uld_number) DO UPDATE SET
				position = excluded.position,
				uld_shc = excluded.uld_shc,
				destination = excluded.destination,
				remarks = excluded.remarks
		`, key, i, u.ULDNumber, u.ULDSHC, u.Destination, u.Remarks, u.Status)

		if isNew {
			t.seedHistory(key, &f.ULDs[i])
		}
	}
}

// seedHistory persists the initial history entries of a newly seen ULD.
func (t *Tracker) seedHistory(key string, u *cargo.ULD) {
	for _, ev := range u.StatusHistory {
		_, _ = t.db.Exec(`
			INSERT INTO status_history (flight_key, uld_number, status, changed_by, recorded_at)
			VALUES (?, ?, ?, ?, ?)
		`, key, u.ULDNumber, ev.Status, ev.ChangedBy, ev.Timestamp)
	}
}

// GetFlight returns the tracked flight for a key, or nil.
func (t *Tracker) GetFlight(key string) *cargo.Flight {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.flights[key]
}

// GetAllFlights returns all tracked flights sorted by identity key.
func (t *Tracker) GetAllFlights() []*cargo.Flight {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.flights))
	for key := range t.flights {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]*cargo.Flight, 0, len(keys))
	for _, key := range keys {
		result = append(result, t.flights[key])
	}
	return result
}

// Stats holds counts of tracked state.
type Stats struct {
	Flights      int
	ULDs         int
	HistoryRows  int
	DeliveredULD int
}

func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	var stats Stats
	stats.Flights = len(t.flights)
	for _, f := range t.flights {
		stats.ULDs += len(f.ULDs)
		for _, u := range f.ULDs {
			if u.Status == cargo.StatusBreakdownComplete {
				stats.DeliveredULD++
			}
		}
	}
	t.mu.RUnlock()

	_ = t.db.QueryRow("SELECT COUNT(*) FROM status_history").Scan(&stats.HistoryRows)
	return stats
}
