package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Config holds database connection settings for both ClickHouse and PostgreSQL.
type Config struct {
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultConfig returns a configuration with default local development settings.
func DefaultConfig() Config {
	return Config{
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "uld_ingest",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "uld_state",
			User:     "uld",
			Password: "uld",
		},
	}
}

// ConfigFromEnv returns the default configuration overridden by ULD_CH_* and
// ULD_PG_* environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	envStr(&cfg.ClickHouse.Host, "ULD_CH_HOST")
	envInt(&cfg.ClickHouse.Port, "ULD_CH_PORT")
	envStr(&cfg.ClickHouse.Database, "ULD_CH_DATABASE")
	envStr(&cfg.ClickHouse.User, "ULD_CH_USER")
	envStr(&cfg.ClickHouse.Password, "ULD_CH_PASSWORD")

	envStr(&cfg.Postgres.Host, "ULD_PG_HOST")
	envInt(&cfg.Postgres.Port, "ULD_PG_PORT")
	envStr(&cfg.Postgres.Database, "ULD_PG_DATABASE")
	envStr(&cfg.Postgres.User, "ULD_PG_USER")
	envStr(&cfg.Postgres.Password, "ULD_PG_PASSWORD")

	return cfg
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DB wraps both ClickHouse and PostgreSQL connections.
type DB struct {
	CH *ClickHouseDB // ClickHouse for ingestion analytics.
	PG *PostgresDB   // PostgreSQL for flights and load plans.
}

// Open opens connections to both ClickHouse and PostgreSQL.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}

	pg, err := OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &DB{CH: ch, PG: pg}, nil
}

// Close closes both database connections.
func (d *DB) Close() error {
	var errs []error
	if d.CH != nil {
		if err := d.CH.Close(); err != nil {
			errs = append(errs, fmt.Errorf("clickhouse: %w", err))
		}
	}
	if d.PG != nil {
		d.PG.Close()
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// CreateSchemas creates the schemas in both databases.
func (d *DB) CreateSchemas(ctx context.Context) error {
	if err := d.CH.CreateSchema(ctx); err != nil {
		return fmt.Errorf("clickhouse schema: %w", err)
	}
	if err := d.PG.CreateSchema(ctx); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}
