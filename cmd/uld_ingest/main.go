// Command-line entry point for the ULD ingestion pipeline.
//
// Note about input formats
// ------------------------
// The ingestion router autodetects the document format from the file name and
// content. You may feed it any of these inputs:
//  1. ULD import workbooks/sheets: one flat row per ULD.
//  2. Allocation workbooks: side-by-side "Flight No"/"ETD"/"Routing" groups.
//  3. Morning wave summaries: delimited text with WAVE section headers.
//
// Multiple inputs are merged on flight identity before output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"uld_ingest/internal/cargo"
	"uld_ingest/internal/events"
	_ "uld_ingest/internal/extractors" // register all extractors via init()
	"uld_ingest/internal/loadplan"
	"uld_ingest/internal/registry"
	"uld_ingest/internal/router"
	"uld_ingest/internal/storage"
	"uld_ingest/internal/tracking"
	"uld_ingest/pkg/logger"
)

// IngestOut is the JSON document emitted by the ingest command.
type IngestOut struct {
	Flights []cargo.Flight  `json:"flights"`
	Sources []router.Result `json:"sources,omitempty"`
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "uld_ingest - commands:")
	fmt.Fprintln(w, "  ingest   - extract flights/ULDs from import files and output JSON")
	fmt.Fprintln(w, "  loadplan - parse a load plan text document and output JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  uld_ingest ingest -input file.xlsx [-input wave.csv ...] [-output out.json] [-pretty] [-stats]")
	fmt.Fprintln(w, "                    [-db tracking.db] [-nats nats://host:4222] [-persist]")
	fmt.Fprintln(w, "  uld_ingest loadplan -input plan.txt -flight EK0393 [-output out.json] [-pretty] [-persist]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Spreadsheet inputs are routed by sheet layout; text inputs by content.")
	fmt.Fprintln(w, "  - -persist reads ULD_PG_* / ULD_CH_* settings from the environment (.env supported).")
	fmt.Fprintln(w, "")
}

func main() {
	// Local development settings; missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "ingest":
		runIngest(os.Args[2:])
	case "loadplan":
		runLoadPlan(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

// multiFlag collects repeated -input flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	var inputs multiFlag
	fs.Var(&inputs, "input", "Input file (repeatable); spreadsheet or delimited text")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	withSources := fs.Bool("sources", false, "Include per-source results in the output")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	dbPath := fs.String("db", "", "SQLite tracking database (omit to skip tracking)")
	natsURL := fs.String("nats", "", "NATS server URL for lifecycle events (requires -db)")
	persist := fs.Bool("persist", false, "Persist flights and analytics to PostgreSQL/ClickHouse")
	_ = fs.Parse(args)

	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "ingest: at least one -input is required")
		os.Exit(2)
	}

	log := logger.NewLogger()

	// Ensure extractor priority ordering is stable.
	registry.Default().Sort()

	var merged []cargo.Flight
	var results []router.Result
	processed, skipped := 0, 0

	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal("failed to read input", "path", path, "error", err)
		}

		started := time.Now()
		res, err := router.Ingest(path, data)
		if err != nil {
			log.Fatal("ingest failed", "path", path, "error", err)
		}
		log.Info("ingested",
			"path", path,
			"format", res.Format,
			"flights", len(res.Flights),
			"processed", res.Stats.Processed,
			"skipped", res.Stats.Skipped,
			"duration", time.Since(started),
		)

		merged = cargo.MergeFlights(merged, res.Flights)
		results = append(results, *res)
		processed += res.Stats.Processed
		skipped += res.Stats.Skipped
	}

	if *dbPath != "" {
		trackFlights(log, *dbPath, *natsURL, merged)
	} else if *natsURL != "" {
		fmt.Fprintln(os.Stderr, "ingest: -nats requires -db")
		os.Exit(2)
	}

	if *persist {
		persistIngest(log, merged, results)
	}

	out := IngestOut{Flights: merged}
	if *withSources {
		out.Sources = results
	}
	writeJSON(*outPath, out, *pretty)

	if *showStats {
		ulds := 0
		for _, f := range merged {
			ulds += f.ULDCount
		}
		fmt.Fprintf(os.Stderr,
			"stats: inputs=%d flights=%d ulds=%d rows(processed=%d skipped=%d)\n",
			len(inputs), len(merged), ulds, processed, skipped,
		)
	}
}

// trackFlights merges the ingest result into the tracking database,
// publishing lifecycle events when a NATS URL is configured.
func trackFlights(log logger.Logger, dbPath, natsURL string, flights []cargo.Flight) {
	tracker, err := tracking.NewTracker(dbPath)
	if err != nil {
		log.Fatal("failed to open tracking database", "path", dbPath, "error", err)
	}
	defer func() { _ = tracker.Close() }()

	var pub *events.Publisher
	if natsURL != "" {
		pub, err = events.Connect(natsURL)
		if err != nil {
			log.Fatal("failed to connect to nats", "url", natsURL, "error", err)
		}
		defer pub.Close()

		tracker.OnFlightNew(func(f *cargo.Flight) {
			if err := pub.PublishFlightDiscovered(f); err != nil {
				log.Warn("failed to publish discovery", "flight", f.Key(), "error", err)
			}
		})
	}

	discovered := tracker.MergeIngest(flights)
	stats := tracker.GetStats()
	log.Info("tracking updated",
		"db", dbPath,
		"discovered", discovered,
		"flights", stats.Flights,
		"ulds", stats.ULDs,
	)
}

// persistIngest saves merged flights to PostgreSQL and records one analytics
// event per source in ClickHouse.
func persistIngest(log logger.Logger, flights []cargo.Flight, results []router.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, storage.ConfigFromEnv())
	if err != nil {
		log.Fatal("failed to open storage", "error", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.CreateSchemas(ctx); err != nil {
		log.Fatal("failed to create schemas", "error", err)
	}

	if err := db.PG.SaveFlights(ctx, flights); err != nil {
		log.Fatal("failed to save flights", "error", err)
	}

	now := time.Now().UTC()
	evs := make([]storage.IngestionEvent, 0, len(results))
	for _, res := range results {
		ulds := 0
		for _, f := range res.Flights {
			ulds += f.ULDCount
		}
		evs = append(evs, storage.IngestionEvent{
			IngestedAt:    now,
			Source:        res.Source,
			Format:        res.Format,
			Flights:       uint32(len(res.Flights)),
			ULDs:          uint32(ulds),
			RowsProcessed: uint32(res.Stats.Processed),
			RowsSkipped:   uint32(res.Stats.Skipped),
		})
	}
	if err := db.CH.InsertEvents(ctx, evs); err != nil {
		log.Warn("failed to record ingestion events", "error", err)
	}

	log.Info("persisted", "flights", len(flights), "events", len(evs))
}

func runLoadPlan(args []string) {
	fs := flag.NewFlagSet("loadplan", flag.ExitOnError)
	inPath := fs.String("input", "", "Load plan text file (default: stdin)")
	flight := fs.String("flight", "", "Flight number the plan belongs to (required)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	persist := fs.Bool("persist", false, "Persist the parsed plan to PostgreSQL")
	_ = fs.Parse(args)

	if *flight == "" {
		fmt.Fprintln(os.Stderr, "loadplan: -flight is required")
		os.Exit(2)
	}

	log := logger.NewLogger()

	var data []byte
	var err error
	if *inPath != "" {
		data, err = os.ReadFile(*inPath)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal("failed to read input", "error", err)
	}

	plan := loadplan.Parse(string(data), *flight)
	if plan == nil {
		log.Fatal("no load plan header found", "flight", *flight)
	}
	log.Info("parsed load plan",
		"flight", plan.FlightNumber,
		"date", plan.FlightDate,
		"sectors", len(plan.Sectors),
		"remarks", len(plan.Remarks),
	)

	if *persist {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pg, err := storage.OpenPostgres(ctx, storage.ConfigFromEnv().Postgres)
		if err != nil {
			log.Fatal("failed to open postgres", "error", err)
		}
		defer pg.Close()

		if err := pg.CreateSchema(ctx); err != nil {
			log.Fatal("failed to create schema", "error", err)
		}
		if err := pg.SaveLoadPlan(ctx, plan); err != nil {
			log.Fatal("failed to save load plan", "error", err)
		}
	}

	writeJSON(*outPath, plan, *pretty)
}

func writeJSON(path string, v any, pretty bool) {
	var enc []byte
	var err error
	if pretty {
		enc, err = json.MarshalIndent(v, "", "  ")
	} else {
		enc, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	_, _ = w.Write(enc)
	if w == os.Stdout {
		_, _ = w.Write([]byte("\n"))
	}
}
