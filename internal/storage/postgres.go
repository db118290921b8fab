package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uld_ingest/internal/cargo"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ConnString returns the pgx connection string for this configuration.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// PostgresDB wraps a PostgreSQL connection pool for flight and load plan storage.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	-- Flights keyed on identity (number|eta|boarding point).
	CREATE TABLE IF NOT EXISTS flights (
		key             TEXT PRIMARY KEY,
		flight_number   TEXT NOT NULL,
		eta             TEXT,
		boarding_point  TEXT,
		uld_count       INTEGER NOT NULL DEFAULT 0,
		first_seen      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		import_count    INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_flights_number ON flights(flight_number);
	CREATE INDEX IF NOT EXISTS idx_flights_last_seen ON flights(last_seen);

	-- ULDs on a flight with current status and full history.
	CREATE TABLE IF NOT EXISTS ulds (
		flight_key      TEXT NOT NULL REFERENCES flights(key) ON DELETE CASCADE,
		position        INTEGER NOT NULL,
		uld_number      TEXT NOT NULL,
		uld_shc         TEXT,
		destination     TEXT,
		remarks         TEXT,
		status          INTEGER NOT NULL DEFAULT 1,
		status_history  JSONB,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (flight_key, uld_number)
	);

	CREATE INDEX IF NOT EXISTS idx_ulds_status ON ulds(status);

	-- Parsed load plan documents, one per flight and date.
	CREATE TABLE IF NOT EXISTS load_plans (
		flight_number   TEXT NOT NULL,
		flight_date     TEXT NOT NULL,
		header_version  TEXT,
		uld_version     TEXT,
		document        JSONB NOT NULL,
		stored_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (flight_number, flight_date)
	);
	`

	_, err := d.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveFlight upserts a flight and all of its ULDs.
func (d *PostgresDB) SaveFlight(ctx context.Context, f *cargo.Flight) error {
	key := f.Key()
	_, err := d.pool.Exec(ctx, `
		INSERT INTO flights (key, flight_number, eta, boarding_point, uld_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			uld_count = EXCLUDED.uld_count,
			last_seen = NOW(),
			import_count = flights.import_count + 1
	`, key, f.FlightNumber, f.ETA, f.BoardingPoint, f.ULDCount)
	if err != nil {
		return fmt.Errorf("upsert flight %s: %w", key, err)
	}

	for i, u := range f.ULDs {
		history, err := json.Marshal(u.StatusHistory)
		if err != nil {
			return fmt.Errorf("marshal status history: %w", err)
		}
		_, err = d.pool.Exec(ctx, `
			INSERT INTO ulds (flight_key, position, uld_number, uld_shc, destination, remarks, status, status_history)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (flight_key, uld_number) DO UPDATE SET
				position = EXCLUDED.position,
				uld_shc = EXCLUDED.uld_shc,
				destination = EXCLUDED.destination,
				remarks = EXCLUDED.remarks,
				status = GREATEST(ulds.status, EXCLUDED.status),
				status_history = EXCLUDED.status_history,
				updated_at = NOW()
		`, key, i, u.ULDNumber, u.ULDSHC, u.Destination, u.Remarks, u.Status, history)
		if err != nil {
			return fmt.Errorf("upsert uld %s: %w", u.ULDNumber, err)
		}
	}
	return nil
}

// SaveFlights upserts a batch of flights.
func (d *PostgresDB) SaveFlights(ctx context.Context, flights []cargo.Flight) error {
	for i := range flights {
		if err := d.SaveFlight(ctx, &flights[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetFlight retrieves a flight and its ULDs by identity key.
// Returns nil without error when the flight is unknown.
func (d *PostgresDB) GetFlight(ctx context.Context, key string) (*cargo.Flight, error) {
	var f cargo.Flight
	err := d.pool.QueryRow(ctx, `
		SELECT flight_number, COALESCE(eta, ''), COALESCE(boarding_point, '')
		FROM flights WHERE key = $1
	`, key).Scan(&f.FlightNumber, &f.ETA, &f.BoardingPoint)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.pool.Query(ctx, `
		SELECT uld_number, COALESCE(uld_shc, ''), COALESCE(destination, ''),
		       COALESCE(remarks, ''), status, status_history
		FROM ulds WHERE flight_key = $1
		ORDER BY position
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u cargo.ULD
		var history []byte
		if err := rows.Scan(&u.ULDNumber, &u.ULDSHC, &u.Destination, &u.Remarks, &u.Status, &history); err != nil {
			return nil, fmt.Errorf("scan uld: %w", err)
		}
		if len(history) > 0 {
			_ = json.Unmarshal(history, &u.StatusHistory)
		}
		f.AddULD(u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveLoadPlan stores a parsed load plan document.
func (d *PostgresDB) SaveLoadPlan(ctx context.Context, plan *cargo.LoadPlanDetail) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal load plan: %w", err)
	}
	_, err = d.pool.Exec(ctx, `
		INSERT INTO load_plans (flight_number, flight_date, header_version, uld_version, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (flight_number, flight_date) DO UPDATE SET
			header_version = EXCLUDED.header_version,
			uld_version = EXCLUDED.uld_version,
			document = EXCLUDED.document,
			stored_at = NOW()
	`, plan.FlightNumber, plan.FlightDate, plan.HeaderVersion, plan.ULDVersion, doc)
	if err != nil {
		return fmt.Errorf("upsert load plan %s/%s: %w", plan.FlightNumber, plan.FlightDate, err)
	}
	return nil
}

// GetLoadPlan retrieves a stored load plan, or nil when absent.
func (d *PostgresDB) GetLoadPlan(ctx context.Context, flightNumber, flightDate string) (*cargo.LoadPlanDetail, error) {
	var doc []byte
	err := d.pool.QueryRow(ctx, `
		SELECT document FROM load_plans
		WHERE flight_number = $1 AND flight_date = $2
	`, flightNumber, flightDate).Scan(&doc)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var plan cargo.LoadPlanDetail
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal load plan: %w", err)
	}
	return &plan, nil
}
