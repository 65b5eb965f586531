package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseConfig struct {
	Enabled bool
	Host    string
	Port    int
	User    string
	Pass    string
	DB      string
	Secure  bool
	MaxRows int
}

// ClickHouseSource loads rows to rank from read-only SELECT queries.
type ClickHouseSource struct {
	cfg ClickHouseConfig
	db  *sql.DB
	log *Logger
}

func (c *ClickHouseSource) Addr() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
}
func (c *ClickHouseSource) Database() string {
	if c == nil {
		return ""
	}
	return c.cfg.DB
}
func (c *ClickHouseSource) Secure() bool {
	if c == nil {
		return false
	}
	return c.cfg.Secure
}

func (c *ClickHouseSource) Close() {
	if c == nil || c.db == nil {
		return
	}
	_ = c.db.Close()
}

var safeIdentRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateIdent(s string) error {
	if s == "" {
		return fmt.Errorf("empty identifier")
	}
	if !safeIdentRe.MatchString(s) {
		return fmt.Errorf("unsafe identifier %q (allowed: [a-zA-Z0-9_])", s)
	}
	return nil
}

func (cfg ClickHouseConfig) withDefaults() ClickHouseConfig {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port <= 0 {
		cfg.Port = 9000
	}
	if cfg.User == "" {
		cfg.User = "default"
	}
	if cfg.DB == "" {
		cfg.DB = "default"
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 100_000
	}
	return cfg
}

func (cfg ClickHouseConfig) options() *clickhouse.Options {
	opt := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.DB,
			Username: cfg.User,
			Password: cfg.Pass,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 10,
		},
		MaxOpenConns:    4,
		MaxIdleConns:    4,
		ConnMaxLifetime: 30 * time.Minute,
	}
	if cfg.Secure {
		opt.TLS = &tls.Config{}
	}
	return opt
}

// NewClickHouseSource returns nil, nil when the source is disabled.
func NewClickHouseSource(ctx context.Context, cfg ClickHouseConfig, log *Logger) (*ClickHouseSource, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg = cfg.withDefaults()
	if err := validateIdent(cfg.DB); err != nil {
		return nil, err
	}

	db := clickhouse.OpenDB(cfg.options())
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping failed: %w", err)
	}

	log.Infof("clickhouse ready addr=%s:%d db=%s max_rows=%d", cfg.Host, cfg.Port, cfg.DB, cfg.MaxRows)

	return &ClickHouseSource{cfg: cfg, db: db, log: log}, nil
}

// LoadRows runs a gated SELECT and turns every result row into a Row. The
// idColumn value becomes the row id; with no idColumn the 1-based row number
// is used. A result longer than MaxRows fails rather than being ranked
// partially.
func (c *ClickHouseSource) LoadRows(ctx context.Context, query, idColumn string) ([]Row, error) {
	clean, ok, reason := validateQuery(query)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsafeQuery, reason)
	}
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("clickhouse not configured")
	}

	rows, err := c.db.QueryContext(ctx, clean)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([][]any, 0, 256)
	for rows.Next() {
		if len(out) >= c.cfg.MaxRows {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyRows, c.cfg.MaxRows)
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.log.Debugf("clickhouse loaded rows=%d cols=%d", len(out), len(cols))
	return rowsFromColumns(cols, out, idColumn)
}

func rowsFromColumns(cols []string, vals [][]any, idColumn string) ([]Row, error) {
	idIdx := -1
	if idColumn != "" {
		for i, c := range cols {
			if c == idColumn {
				idIdx = i
				break
			}
		}
		if idIdx < 0 {
			return nil, fmt.Errorf("%w %q in query result", ErrUnknownColumn, idColumn)
		}
	}

	out := make([]Row, 0, len(vals))
	for n, rv := range vals {
		r := Row{Values: make(map[string]any, len(cols))}
		for i, c := range cols {
			r.Values[c] = normalizeSQLValue(rv[i])
		}
		if idIdx >= 0 {
			r.ID = fmt.Sprint(r.Values[cols[idIdx]])
		} else {
			r.ID = strconv.Itoa(n + 1)
		}
		out = append(out, r)
	}
	return cleanRows(out)
}

func normalizeSQLValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	default:
		return v
	}
}
