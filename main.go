package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type CLIConfig struct {
	Port     int
	Dataset  string
	Passes   string
	Order    string
	Once     bool
	LogLevel string

	ClickHouseEnabled bool
	CHHost            string
	CHPort            int
	CHUser            string
	CHPass            string
	CHDB              string
	CHSecure          bool
	CHMaxRows         int
}

func main() {
	_ = godotenv.Load()

	cfg := CLIConfig{}

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 8093), "HTTP port")
	flag.StringVar(&cfg.Dataset, "dataset", envString("RANKORDER_DATASET", ""), "Path to a dataset YAML file")
	flag.StringVar(&cfg.Passes, "passes", envString("RANKORDER_PASSES", ""), "Comma separated pass columns (overrides the dataset plan)")
	flag.StringVar(&cfg.Order, "order", envString("RANKORDER_ORDER", ""), "Output order: ranked|input (overrides the dataset plan)")
	flag.BoolVar(&cfg.Once, "once", false, "Rank the dataset, print JSON lines to stdout and exit")
	flag.StringVar(&cfg.LogLevel, "log-level", envString("LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	// ClickHouse flags (env-backed defaults)
	flag.BoolVar(&cfg.ClickHouseEnabled, "clickhouse", envBool("CLICKHOUSE_ENABLED", false), "Enable the ClickHouse row source")
	flag.StringVar(&cfg.CHHost, "ch-host", envString("CLICKHOUSE_HOST", "localhost"), "ClickHouse host")
	flag.IntVar(&cfg.CHPort, "ch-port", envInt("CLICKHOUSE_PORT", 9000), "ClickHouse native port")
	flag.StringVar(&cfg.CHUser, "ch-user", envString("CLICKHOUSE_USER", "default"), "ClickHouse user")
	flag.StringVar(&cfg.CHPass, "ch-pass", envString("CLICKHOUSE_PASS", ""), "ClickHouse password")
	flag.StringVar(&cfg.CHDB, "ch-db", envString("CLICKHOUSE_DB", "default"), "ClickHouse database")
	flag.BoolVar(&cfg.CHSecure, "ch-secure", envBool("CLICKHOUSE_SECURE", false), "Use TLS to ClickHouse")
	flag.IntVar(&cfg.CHMaxRows, "ch-max-rows", envInt("CLICKHOUSE_MAX_ROWS", 100_000), "Reject query results longer than this")

	flag.Parse()

	log := NewLogger(cfg.LogLevel)
	run := NewRunContext(time.Now())

	var ds *Dataset
	if cfg.Dataset != "" {
		var err error
		ds, err = LoadDataset(cfg.Dataset)
		if err != nil {
			log.Errorf("failed to load dataset: %v", err)
			os.Exit(1)
		}
		if err := overridePlan(&ds.Plan, cfg.Passes, cfg.Order); err != nil {
			log.Errorf("bad plan override: %v", err)
			os.Exit(1)
		}
		log.Infof("loaded dataset name=%q rows=%d passes=%v (%s)", ds.Name, len(ds.Rows), ds.Plan.Passes, filepath.Base(cfg.Dataset))
	}

	metrics := NewMetrics(run.Start, version, commit, buildDate)

	if cfg.Once {
		if ds == nil {
			log.Errorf("-once needs -dataset")
			os.Exit(2)
		}
		if err := rankOnce(os.Stdout, ds, metrics); err != nil {
			log.Errorf("rank failed: %v", err)
			os.Exit(1)
		}
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(reg); err != nil {
		log.Errorf("metrics register failed: %v", err)
		os.Exit(1)
	}

	var ch *ClickHouseSource
	if cfg.ClickHouseEnabled {
		ctxInit, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		var err error
		ch, err = NewClickHouseSource(ctxInit, ClickHouseConfig{
			Enabled: true,
			Host:    cfg.CHHost,
			Port:    cfg.CHPort,
			User:    cfg.CHUser,
			Pass:    cfg.CHPass,
			DB:      cfg.CHDB,
			Secure:  cfg.CHSecure,
			MaxRows: cfg.CHMaxRows,
		}, log)
		cancel()
		if err != nil {
			log.Errorf("clickhouse init failed (continuing without CH): %v", err)
			ch = nil
		}
	} else {
		log.Infof("clickhouse disabled")
	}

	httpSrv := NewHTTPServer(HTTPConfig{
		Addr:     fmt.Sprintf(":%d", cfg.Port),
		Log:      log,
		Dataset:  ds,
		CH:       ch,
		Run:      run,
		M:        metrics,
		Gatherer: reg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("http listening on http://localhost:%d run_id=%s", cfg.Port, run.ID)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Infof("shutting down...")
	_ = httpSrv.Shutdown(shCtx)
	ch.Close()
	log.Infof("bye")
}

// rankOnce writes one JSON object per ranked row.
func rankOnce(w io.Writer, ds *Dataset, m *Metrics) error {
	start := time.Now()
	out, err := ApplyPlan(ds.Rows, ds.Plan)
	m.ObservePlan(SourceCLI, len(ds.Rows), time.Since(start), err)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, r := range out {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func overridePlan(p *Plan, passes, order string) error {
	if passes != "" {
		p.Passes = cleanPasses(strings.Split(passes, ","))
	}
	if order != "" {
		p.Order = normOrder(order)
	}
	return p.validate()
}

func envString(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
