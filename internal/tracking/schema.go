// Package tracking persists flight and ULD state across ingestion runs.
package tracking

// schema contains the SQLite table definitions for flight tracking.
const schema = `
-- Flights discovered from imports, keyed on identity (number|eta|boarding point).
CREATE TABLE IF NOT EXISTS flights (
	key            TEXT PRIMARY KEY,
	flight_number  TEXT NOT NULL,
	eta            TEXT,
	boarding_point TEXT,
	uld_count      INTEGER NOT NULL DEFAULT 0,
	first_seen     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	import_count   INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_flights_number ON flights(flight_number);
CREATE INDEX IF NOT EXISTS idx_flights_last_seen ON flights(last_seen);

-- ULDs attached to a flight, holding the current lifecycle status.
CREATE TABLE IF NOT EXISTS ulds (
	flight_key  TEXT NOT NULL REFERENCES flights(key) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	uld_number  TEXT NOT NULL,
	uld_shc     TEXT,
	destination TEXT,
	remarks     TEXT,
	status      INTEGER NOT NULL DEFAULT 1,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (flight_key, uld_number)
);

CREATE INDEX IF NOT EXISTS idx_ulds_status ON ulds(status);

-- Append-only ULD status history.
CREATE TABLE IF NOT EXISTS status_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	flight_key  TEXT NOT NULL,
	uld_number  TEXT NOT NULL,
	status      INTEGER NOT NULL,
	changed_by  TEXT NOT NULL,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_status_history_uld ON status_history(flight_key, uld_number);
`
