package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dbehnke/fecsim/internal/config"
	"github.com/dbehnke/fecsim/internal/database"
	"github.com/dbehnke/fecsim/internal/metrics"
)

const (
	VERSION = "1.0.0"

	FORMAT_TEXT = "text"
	FORMAT_YAML = "yaml"
)

func main() {
	var (
		configFile = flag.String("config", getDefaultConfig(), "Configuration file path")
		demo       = flag.Bool("demo", false, "Run the fixed demonstration scenarios and exit")
		format     = flag.String("format", FORMAT_TEXT, "Output format: text or yaml")
		history    = flag.String("history", "", "Print stored runs of a codec name, sweep ID or run ID and exit")
		limit      = flag.Int("limit", 50, "Maximum runs printed by -history for a codec")
		purge      = flag.Bool("purge", false, "Delete every stored run and exit")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("fecsim v%s\n", VERSION)
		return
	}
	if *format != FORMAT_TEXT && *format != FORMAT_YAML {
		log.Fatalf("Unknown output format %q", *format)
	}

	// Handle non-flag arguments (config file)
	if flag.NArg() > 0 {
		*configFile = flag.Arg(0)
	}

	cfg := config.NewConfig(*configFile)
	if err := cfg.Load(); err != nil {
		if !*demo || !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config: %v", err)
		}
		// The demo needs no configuration
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	simLog := log.New(log.Writer(), "[SIM] ", log.LstdFlags)

	if *demo {
		if err := runDemo(os.Stdout, *format, cfg.GetSeed(), simLog, cfg.GetDebug()); err != nil {
			log.Fatalf("Demo failed: %v", err)
		}
		return
	}

	log.Printf("fecsim v%s starting with config: %s", VERSION, *configFile)

	// Result store, always opened for -history and -purge
	var db *database.DB
	if cfg.GetDatabaseEnabled() || *history != "" || *purge {
		var dbLog *log.Logger
		if cfg.GetDatabaseDebug() {
			dbLog = log.New(log.Writer(), "[DB] ", log.LstdFlags)
		}
		db, err = database.NewDB(database.Config{Path: cfg.GetDatabasePath()}, dbLog)
		if err != nil {
			log.Fatalf("Failed to open result store: %v", err)
		}
		defer db.Close()

		if err := db.Runs().HealthCheck(); err != nil {
			log.Fatalf("Result store health check failed: %v", err)
		}
	}

	if *purge {
		if err := runPurge(db.Runs(), log.New(log.Writer(), "[DB] ", log.LstdFlags)); err != nil {
			log.Fatalf("Purge failed: %v", err)
		}
		return
	}
	if *history != "" {
		if err := runHistory(os.Stdout, *format, db.Runs(), *history, *limit); err != nil {
			log.Fatalf("History failed: %v", err)
		}
		return
	}

	// Optional Prometheus endpoint
	var collector *metrics.Collector
	if cfg.GetMetricsEnabled() {
		reg := prometheus.NewRegistry()
		collector = metrics.NewCollector(reg)
		server := startMetricsServer(cfg.GetMetricsAddress(), reg, log.New(log.Writer(), "[METRICS] ", log.LstdFlags))
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			server.Shutdown(shutdownCtx)
		}()
	}

	if err := runSweep(ctx, os.Stdout, *format, cfg, simLog, collector, db); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("Sweep cancelled")
			return
		}
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("fecsim finished")
}

// setupLogging routes the standard logger according to the [Log] section.
// DisplayLevel 0 silences logging.
func setupLogging(cfg *config.Config) (*os.File, error) {
	log.SetFlags(log.LstdFlags)

	if cfg.GetLogDisplayLevel() == 0 {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	if cfg.GetLogFilePath() == "" {
		log.SetOutput(os.Stderr)
		return nil, nil
	}

	file, err := os.OpenFile(cfg.GetLogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}

func startMetricsServer(address string, reg *prometheus.Registry, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("Serving metrics on %s/metrics", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	return server
}

func getDefaultConfig() string {
	// Check for config file in current directory first
	if _, err := os.Stat("fecsim.ini"); err == nil {
		return "fecsim.ini"
	}

	// Check system location
	systemConfig := "/etc/fecsim.ini"
	if _, err := os.Stat(systemConfig); err == nil {
		return systemConfig
	}

	// Default to current directory
	return "fecsim.ini"
}
