package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rankorder/rank"
)

const (
	maxBody  = 1 << 20 // 1MB
	maxLimit = 10_000
)

type HTTPConfig struct {
	Addr     string
	Log      *Logger
	Dataset  *Dataset // optional
	CH       *ClickHouseSource
	Run      RunContext
	M        *Metrics
	Gatherer prometheus.Gatherer
}

type HTTPServer struct {
	cfg HTTPConfig
}

func NewHTTPServer(cfg HTTPConfig) *http.Server {
	hs := &HTTPServer{cfg: cfg}
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      hs.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func (hs *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", hs.handleHealth)
	mux.HandleFunc("GET /run", hs.handleRun)
	mux.HandleFunc("GET /dataset", hs.handleDataset)

	mux.HandleFunc("POST /rank", hs.handleRank)
	mux.HandleFunc("GET /rank/dataset", hs.handleRankDataset)
	mux.HandleFunc("POST /rank/query", hs.handleRankQuery)

	if hs.cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(hs.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (hs *HTTPServer) handleRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":        hs.cfg.Run.ID,
		"run_start":     hs.cfg.Run.Start.Format(time.RFC3339Nano),
		"run_start_ms":  hs.cfg.Run.Start.UnixMilli(),
		"clickhouse_on": hs.cfg.CH != nil,
	})
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := hs.cfg.M.Snapshot()

	snap["run"] = map[string]any{
		"run_id":       hs.cfg.Run.ID,
		"run_start":    hs.cfg.Run.Start.Format(time.RFC3339Nano),
		"run_start_ms": hs.cfg.Run.Start.UnixMilli(),
	}

	if ds := hs.cfg.Dataset; ds != nil {
		snap["dataset"] = map[string]any{"loaded": true, "name": ds.Name, "rows": len(ds.Rows)}
	} else {
		snap["dataset"] = map[string]any{"loaded": false}
	}

	if hs.cfg.CH != nil {
		snap["clickhouse_conn"] = map[string]any{
			"enabled": true,
			"addr":    hs.cfg.CH.Addr(),
			"db":      hs.cfg.CH.Database(),
			"secure":  hs.cfg.CH.Secure(),
		}
	} else {
		snap["clickhouse_conn"] = map[string]any{"enabled": false}
	}

	writeJSON(w, http.StatusOK, snap)
}

func (hs *HTTPServer) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds := hs.cfg.Dataset
	if ds == nil {
		writeError(w, http.StatusNotFound, "no dataset loaded")
		return
	}
	cols := map[string]struct{}{}
	for _, row := range ds.Rows {
		for c := range row.Values {
			cols[c] = struct{}{}
		}
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	slices.Sort(names)
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    ds.Name,
		"path":    ds.Path,
		"rows":    len(ds.Rows),
		"columns": names,
		"plan":    ds.Plan,
	})
}

type rankReq struct {
	Rows   []Row    `json:"rows"`
	Passes []string `json:"passes"`
	Order  string   `json:"order"`
	Limit  int      `json:"limit"`
}

type queryReq struct {
	SQL      string   `json:"sql"`
	IDColumn string   `json:"id_column"`
	Passes   []string `json:"passes"`
	Order    string   `json:"order"`
	Limit    int      `json:"limit"`
}

type rankResp struct {
	Source string      `json:"source"`
	RunID  string      `json:"run_id"`
	Passes []string    `json:"passes"`
	Order  string      `json:"order"`
	Count  int         `json:"count"`
	Rows   []RankedRow `json:"rows"`
}

func (hs *HTTPServer) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankReq
	if err := decodeBody(w, r, &req); err != nil {
		hs.reject(w, SourceRequest, http.StatusBadRequest, err)
		return
	}
	rows, err := cleanRows(req.Rows)
	if err != nil {
		hs.reject(w, SourceRequest, http.StatusBadRequest, err)
		return
	}
	hs.rank(w, SourceRequest, rows, Plan{
		Passes: cleanPasses(req.Passes),
		Order:  normOrder(req.Order),
		Limit:  req.Limit,
	})
}

func (hs *HTTPServer) handleRankDataset(w http.ResponseWriter, r *http.Request) {
	ds := hs.cfg.Dataset
	if ds == nil {
		writeError(w, http.StatusNotFound, "no dataset loaded")
		return
	}

	plan := ds.Plan
	q := r.URL.Query()
	if v := q.Get("passes"); v != "" {
		plan.Passes = cleanPasses(strings.Split(v, ","))
	}
	if v := q.Get("order"); v != "" {
		plan.Order = normOrder(v)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxLimit {
			hs.reject(w, SourceDataset, http.StatusBadRequest, fmt.Errorf("%w %q", ErrBadLimit, v))
			return
		}
		plan.Limit = n
	}

	hs.rank(w, SourceDataset, ds.Rows, plan)
}

func (hs *HTTPServer) handleRankQuery(w http.ResponseWriter, r *http.Request) {
	if hs.cfg.CH == nil {
		writeError(w, http.StatusServiceUnavailable, "ClickHouse not configured")
		return
	}
	var req queryReq
	if err := decodeBody(w, r, &req); err != nil {
		hs.reject(w, SourceClickHouse, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rows, err := hs.cfg.CH.LoadRows(ctx, req.SQL, strings.TrimSpace(req.IDColumn))
	if err != nil {
		hs.reject(w, SourceClickHouse, errStatus(err, http.StatusBadGateway), err)
		return
	}
	hs.rank(w, SourceClickHouse, rows, Plan{
		Passes: cleanPasses(req.Passes),
		Order:  normOrder(req.Order),
		Limit:  req.Limit,
	})
}

func (hs *HTTPServer) rank(w http.ResponseWriter, source string, rows []Row, plan Plan) {
	if plan.Limit < 0 || plan.Limit > maxLimit {
		hs.reject(w, source, http.StatusBadRequest, fmt.Errorf("%w %d", ErrBadLimit, plan.Limit))
		return
	}

	start := time.Now()
	out, err := ApplyPlan(rows, plan)
	hs.cfg.M.ObservePlan(source, len(rows), time.Since(start), err)
	if err != nil {
		hs.cfg.Log.Warnf("rank source=%s rows=%d passes=%v: %v", source, len(rows), plan.Passes, err)
		writeError(w, errStatus(err, http.StatusInternalServerError), err.Error())
		return
	}

	order := plan.Order
	if order == "" {
		order = OrderRanked
	}
	writeJSON(w, http.StatusOK, rankResp{
		Source: source,
		RunID:  hs.cfg.Run.ID,
		Passes: plan.Passes,
		Order:  order,
		Count:  len(out),
		Rows:   out,
	})
}

// reject answers a request that failed before a plan could run. It still
// counts as a failed plan.
func (hs *HTTPServer) reject(w http.ResponseWriter, source string, status int, err error) {
	hs.cfg.M.ObserveRejected(source)
	hs.cfg.Log.Warnf("rank source=%s rejected: %v", source, err)
	writeError(w, status, err.Error())
}

// errStatus maps caller mistakes to 400 and everything else to def.
func errStatus(err error, def int) int {
	var ik *rank.IncomparableKeyError
	switch {
	case errors.Is(err, rank.ErrEmptyInput),
		errors.Is(err, ErrNoPasses),
		errors.Is(err, ErrUnknownColumn),
		errors.Is(err, ErrBadOrder),
		errors.Is(err, ErrDuplicateRow),
		errors.Is(err, ErrBadLimit),
		errors.Is(err, ErrUnsafeQuery),
		errors.As(err, &ik):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	default:
		return def
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	return nil
}

func normOrder(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
