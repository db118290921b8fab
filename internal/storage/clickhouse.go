// Package storage provides persistent storage for tracked flights, load plans
// and ingestion analytics.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for ingestion analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ingestion_events (
		ingested_at     DateTime64(3),
		source          String,
		format          LowCardinality(String),
		flights         UInt32,
		ulds            UInt32,
		rows_processed  UInt32,
		rows_skipped    UInt32,
		duration_ms     UInt32,
		error           String
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ingested_at)
	ORDER BY (format, ingested_at)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// IngestionEvent records one processed import for analytics.
type IngestionEvent struct {
	IngestedAt    time.Time
	Source        string
	Format        string
	Flights       uint32
	ULDs          uint32
	RowsProcessed uint32
	RowsSkipped   uint32
	DurationMS    uint32
	Error         string
}

// InsertEvent stores a single ingestion event.
func (d *ClickHouseDB) InsertEvent(ctx context.Context, ev IngestionEvent) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO ingestion_events (ingested_at, source, format, flights, ulds, rows_processed, rows_skipped, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.IngestedAt, ev.Source, ev.Format, ev.Flights, ev.ULDs, ev.RowsProcessed, ev.RowsSkipped, ev.DurationMS, ev.Error)
	if err != nil {
		return fmt.Errorf("insert ingestion event: %w", err)
	}
	return nil
}

// InsertEvents stores a batch of ingestion events efficiently.
func (d *ClickHouseDB) InsertEvents(ctx context.Context, events []IngestionEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO ingestion_events (ingested_at, source, format, flights, ulds, rows_processed, rows_skipped, duration_ms, error)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, ev := range events {
		err := batch.Append(ev.IngestedAt, ev.Source, ev.Format, ev.Flights, ev.ULDs,
			ev.RowsProcessed, ev.RowsSkipped, ev.DurationMS, ev.Error)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountByFormat returns event counts grouped by detected format.
func (d *ClickHouseDB) CountByFormat(ctx context.Context) (map[string]uint64, error) {
	counts := make(map[string]uint64)
	rows, err := d.conn.Query(ctx, "SELECT format, count() FROM ingestion_events GROUP BY format")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var format string
		var count uint64
		if err := rows.Scan(&format, &count); err != nil {
			return nil, fmt.Errorf("scan count by format: %w", err)
		}
		counts[format] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count by format: %w", err)
	}
	return counts, nil
}

// RecentEvents returns the most recent ingestion events, newest first.
func (d *ClickHouseDB) RecentEvents(ctx context.Context, limit int) ([]IngestionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.conn.Query(ctx, fmt.Sprintf(`
		SELECT ingested_at, source, format, flights, ulds, rows_processed, rows_skipped, duration_ms, error
		FROM ingestion_events
		ORDER BY ingested_at DESC
		LIMIT %d
	`, limit))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []IngestionEvent
	for rows.Next() {
		var ev IngestionEvent
		err := rows.Scan(&ev.IngestedAt, &ev.Source, &ev.Format, &ev.Flights, &ev.ULDs,
			&ev.RowsProcessed, &ev.RowsSkipped, &ev.DurationMS, &ev.Error)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
