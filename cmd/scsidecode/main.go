// scsidecode translates failed SCSI I/O entries from vmkernel logs into
// readable records: operation, device, path, and the host/device/plugin
// status triple with sense codes resolved against the SCSI reference
// tables, optionally enriched with host inventory names.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ovasik/scsidecode/internal/codes"
	"github.com/ovasik/scsidecode/internal/config"
	"github.com/ovasik/scsidecode/internal/decoder"
	"github.com/ovasik/scsidecode/internal/inventory"
	"github.com/ovasik/scsidecode/internal/record"
	"github.com/ovasik/scsidecode/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "translate":
			runTranslate(os.Args[2:])
			return
		case "fetch":
			runFetch(os.Args[2:])
			return
		case "query":
			runQuery(os.Args[2:])
			return
		case "version":
			fmt.Println("scsidecode", version)
			return
		}
	}

	// Default: decode a log stream.
	runDecode(os.Args[1:])
}

// --- decode (default) ---

func runDecode(args []string) {
	fs := flag.NewFlagSet("scsidecode", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	input := fs.String("input", "", "log file to decode (default stdin)")
	start := fs.String("start", "", "window start (RFC3339 or YYYY-MM-DD)")
	finish := fs.String("finish", "", "window finish (RFC3339 or YYYY-MM-DD)")
	mode := fs.String("mode", "", "presentation mode: raw, decoded, combined")
	invMode := fs.String("inventory", "", "enrichment source: live, cached, bundle")
	host := fs.String("host", "", "host identity for live/cached enrichment")
	endpoint := fs.String("endpoint", "", "management endpoint URL for live enrichment")
	bundleRoot := fs.String("bundle", "", "extracted support bundle root for bundle enrichment")
	cacheDir := fs.String("cache-dir", "", "inventory cache directory")
	tablesDir := fs.String("tables", "", "directory of reference table overrides")
	asJSON := fs.Bool("json", false, "emit records as JSON lines")
	persist := fs.Bool("store", false, "persist decoded records to the record database")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("scsidecode", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *mode, *invMode, *host, *endpoint, *bundleRoot, *cacheDir, *tablesDir)

	setupLogging(cfg.Log.Level)

	tables, err := codes.Load(cfg.Tables.Dir)
	if err != nil {
		slog.Error("failed to load code tables", "error", err)
		os.Exit(1)
	}

	opts := decoder.Options{Tables: tables}
	if opts.Start, err = parseTimeFlag(*start); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -start value %q: %v\n", *start, err)
		os.Exit(1)
	}
	if opts.Finish, err = parseTimeFlag(*finish); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -finish value %q: %v\n", *finish, err)
		os.Exit(1)
	}

	// Source the inventory snapshot once, before line processing. A
	// sourcing failure disables enrichment for the whole run but never
	// aborts it.
	ctx := context.Background()
	if src := inventorySource(cfg); src != nil {
		snap, err := src.Load(ctx)
		if err != nil {
			slog.Warn("inventory enrichment disabled, keeping raw identifiers",
				"source", src.Describe(), "error", err)
		} else {
			opts.Inventory = snap
			slog.Info("inventory snapshot loaded", "source", src.Describe())
		}
	}

	in := io.Reader(os.Stdin)
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	var db *store.DB
	var runID string
	if *persist {
		db, err = store.Open(cfg.DBPath())
		if err != nil {
			slog.Error("failed to open record database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if cfg.DB.Retention.Duration > 0 {
			if purged, err := db.Purge(cfg.DB.Retention.Duration); err != nil {
				slog.Warn("failed to purge old records", "error", err)
			} else if purged > 0 {
				slog.Info("purged old records", "count", purged)
			}
		}
		runID = store.NewRunID()
	}

	outMode := record.ParseMode(cfg.Output.Mode)
	enc := json.NewEncoder(os.Stdout)

	count := 0
	dec := decoder.New(in, opts)
	for dec.Scan() {
		rec := dec.Record()
		count++

		if *asJSON {
			if err := enc.Encode(rec); err != nil {
				slog.Error("failed to encode record", "id", rec.ID, "error", err)
			}
		} else {
			printRecord(rec, outMode)
		}

		if db != nil {
			if err := db.Insert(runID, rec); err != nil {
				slog.Error("failed to store record", "id", rec.ID, "error", err)
			}
		}
	}
	if err := dec.Err(); err != nil {
		slog.Error("error reading input", "error", err)
		os.Exit(1)
	}

	if !*asJSON {
		fmt.Printf("Total: %d record(s)\n", count)
	}
	if db != nil {
		slog.Info("records stored", "run_id", runID, "count", count)
	}
}

// applyFlagOverrides lets command-line flags win over the config file.
func applyFlagOverrides(cfg *config.Config, mode, invMode, host, endpoint, bundleRoot, cacheDir, tablesDir string) {
	if mode != "" {
		cfg.Output.Mode = mode
	}
	if invMode != "" {
		cfg.Inventory.Mode = invMode
	}
	if host != "" {
		cfg.Inventory.Host = host
	}
	if endpoint != "" {
		cfg.Inventory.Endpoint = endpoint
	}
	if bundleRoot != "" {
		cfg.Inventory.BundleRoot = bundleRoot
	}
	if cacheDir != "" {
		cfg.Inventory.CacheDir = cacheDir
	}
	if tablesDir != "" {
		cfg.Tables.Dir = tablesDir
	}
}

// inventorySource builds the configured enrichment source, or nil when
// enrichment is off.
func inventorySource(cfg *config.Config) inventory.Source {
	switch strings.ToLower(cfg.Inventory.Mode) {
	case "live":
		client := inventory.NewHTTPClient(cfg.Inventory.Endpoint, &http.Client{Timeout: 30 * time.Second})
		return inventory.Live{Client: client, Host: cfg.Inventory.Host, CacheDir: cfg.Inventory.CacheDir}
	case "cached", "cache":
		return inventory.Cached{Host: cfg.Inventory.Host, CacheDir: cfg.Inventory.CacheDir}
	case "bundle":
		return inventory.Bundle{Root: cfg.Inventory.BundleRoot}
	default:
		return nil
	}
}

func printRecord(rec record.Record, mode record.Mode) {
	ts := rec.Timestamp.UTC().Format("2006-01-02 15:04:05.000")
	fmt.Printf("#%d  %s  [%s]\n", rec.ID, ts, rec.Type.Label())

	printField("Cmd", rec.OpCode, mode)
	printField("World", rec.SourceWorld, mode)
	printField("Device", rec.TargetDevice, mode)
	if rec.Datastore != "" {
		fmt.Printf("    %-9s %s\n", "Datastore:", rec.Datastore)
	}
	printField("Path", rec.Path, mode)
	printField("Adapter", rec.Adapter, mode)

	fmt.Printf("    Status:   H:%s | D:%s | P:%s\n",
		rec.HostStatus.Render(mode),
		rec.DeviceStatus.Render(mode),
		rec.PluginStatus.Render(mode))

	if rec.SenseValid != "" {
		fmt.Printf("    Sense:    %s | key %s | additional %s\n",
			rec.SenseValid,
			rec.SenseKey.Render(mode),
			rec.AdditionalSense.Render(mode))
	}
	if rec.Action != "" {
		fmt.Printf("    Action:   %s\n", rec.Action)
	}
	fmt.Println()
}

func printField(label string, f record.Field, mode record.Mode) {
	if f.Code == "" && f.Text == "" {
		return
	}
	fmt.Printf("    %-9s %s\n", label+":", f.Render(mode))
}

// --- translate subcommand ---

func runTranslate(args []string) {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	tablesDir := fs.String("tables", "", "directory of reference table overrides")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: scsidecode translate [flags] <category> <value>")
		fmt.Fprintln(os.Stderr, "categories: opcode, hoststatus, devicestatus, pluginstatus, sensekey, additionalsense")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *tablesDir != "" {
		cfg.Tables.Dir = *tablesDir
	}

	setupLogging("error")

	tables, err := codes.Load(cfg.Tables.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading code tables: %v\n", err)
		os.Exit(1)
	}

	cat, ok := codes.ParseCategory(rest[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown category %q\n", rest[0])
		os.Exit(2)
	}

	desc, ok := tables.Translate(cat, rest[1])
	if !ok {
		fmt.Printf("%s %s: no match\n", cat, rest[1])
		os.Exit(1)
	}
	fmt.Printf("%s %s: %s\n", cat, rest[1], desc)
}

// --- fetch subcommand ---

// runFetch performs a standalone live inventory fetch so the persisted
// cache files can serve later offline runs.
func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	host := fs.String("host", "", "host identity to fetch inventory for")
	endpoint := fs.String("endpoint", "", "management endpoint URL")
	cacheDir := fs.String("cache-dir", "", "inventory cache directory")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, "", "live", *host, *endpoint, "", *cacheDir, "")

	setupLogging(cfg.Log.Level)

	if cfg.Inventory.Host == "" || cfg.Inventory.Endpoint == "" {
		fmt.Fprintln(os.Stderr, "error: fetch requires -host and -endpoint (or config values)")
		os.Exit(2)
	}

	src := inventorySource(cfg)
	if _, err := src.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error fetching inventory: %v\n", err)
		os.Exit(1)
	}

	dir := cfg.Inventory.CacheDir
	if dir == "" {
		dir = inventory.DefaultCacheDir()
	}
	fmt.Printf("Inventory for %s cached under %s\n", cfg.Inventory.Host, dir)
}

// --- query subcommand ---

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "24h", "time window (e.g. 24h, 7d, 30d)")
	device := fs.String("device", "", "filter by device id")
	run := fs.String("run", "", "filter by run id")
	limit := fs.Int("limit", 50, "max records to show")
	top := fs.Bool("top", false, "show worst failing devices instead of records")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	since, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	if *top {
		sums, err := db.TopDevices(time.Now().Add(-since), *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "query error: %v\n", err)
			os.Exit(1)
		}
		if len(sums) == 0 {
			fmt.Println("No records found.")
			return
		}
		for _, s := range sums {
			fmt.Printf("%5d  %-44s last %s\n", s.Count, s.Device,
				s.Last.Local().Format("2006-01-02 15:04:05"))
		}
		return
	}

	recs, err := db.Query(store.QueryFilter{
		Since:  time.Now().Add(-since),
		Device: *device,
		RunID:  *run,
		Limit:  *limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(recs) == 0 {
		fmt.Println("No records found.")
		return
	}

	mode := record.ParseMode(cfg.Output.Mode)
	for _, rec := range recs {
		printRecord(rec.Record, mode)
	}
	fmt.Printf("Total: %d record(s)\n", len(recs))
}

// --- utilities ---

// timeFlagLayouts are the accepted -start/-finish formats.
var timeFlagLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeFlagLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseDuration extends time.ParseDuration with support for "d" (days)
// suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
