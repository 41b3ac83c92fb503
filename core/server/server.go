/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/google/taxinomia-loans/core/charts"
	"github.com/google/taxinomia-loans/core/csvimport"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/grouping"
	"github.com/google/taxinomia-loans/core/logging"
	"github.com/google/taxinomia-loans/core/metrics"
	"github.com/google/taxinomia-loans/core/query"
	"github.com/google/taxinomia-loans/core/rendering"
	"github.com/google/taxinomia-loans/core/tables"
	"github.com/google/taxinomia-loans/core/views"
)

// Options configures the dashboard pages and charts.
type Options struct {
	Title     string
	GridLimit int
	Chart     charts.Options
	// ChartRateLimit caps chart renders per second; 0 disables the limit.
	ChartRateLimit int
}

// Server represents the application server with all its dependencies.
// The dataset is sealed and shared read-only by every request.
type Server struct {
	dataset  *tables.DataTable
	stats    *csvimport.LoadStats
	renderer *rendering.PageRenderer
	logger   *logging.Logger
	opts     Options

	chartLimiter *rate.Limiter
}

// NewServer creates a new server over a loaded dataset
func NewServer(dataset *tables.DataTable, stats *csvimport.LoadStats, logger *logging.Logger, opts Options) (*Server, error) {
	if dataset == nil {
		return nil, fmt.Errorf("no dataset loaded")
	}
	if !dataset.Sealed() {
		return nil, fmt.Errorf("dataset must be sealed before serving")
	}
	renderer, err := rendering.NewPageRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	if stats == nil {
		stats = &csvimport.LoadStats{Rows: dataset.Length()}
	}

	s := &Server{
		dataset:  dataset,
		stats:    stats,
		renderer: renderer,
		logger:   logger,
		opts:     opts,
	}
	if opts.ChartRateLimit > 0 {
		s.chartLimiter = rate.NewLimiter(rate.Limit(opts.ChartRateLimit), opts.ChartRateLimit)
	}
	return s, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /analysis", s.handleAnalysis)
	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/loans", s.handleLoans)
	mux.HandleFunc("GET /chart/{name}", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRequestLogging(mux)
}

func (s *Server) viewOptions() views.Options {
	return views.Options{Title: s.opts.Title, GridLimit: s.opts.GridLimit}
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries map[string]time.Duration
	order   []string
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{entries: map[string]time.Duration{}, start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	if _, ok := tc.entries[operation]; !ok {
		tc.order = append(tc.order, operation)
	}
	tc.entries[operation] += duration
}

// Total returns the time elapsed since the collector was created
func (tc *TimingCollector) Total() time.Duration {
	return time.Since(tc.start)
}

func (s *Server) logTimings(r *http.Request, tc *TimingCollector) {
	event := s.logger.Debug().Str("path", r.URL.Path)
	for _, op := range tc.order {
		event = event.Dur(op, tc.entries[op])
	}
	event.Dur("total", tc.Total()).Msg("Request timings")
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	vm := views.BuildHomeViewModel(s.dataset, s.viewOptions(), s.stats.Warnings())
	s.renderPage(w, r, func(buf *bytes.Buffer) error { return s.renderer.RenderHome(buf, vm) })
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	vm := views.BuildAboutViewModel(s.viewOptions())
	s.renderPage(w, r, func(buf *bytes.Buffer) error { return s.renderer.RenderAbout(buf, vm) })
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	timing := NewTimingCollector()

	sel, err := views.ParseSelection(r.URL)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	buildStart := time.Now()
	vm, err := views.BuildAnalysisViewModel(s.dataset, sel, s.viewOptions())
	timing.Record("build", time.Since(buildStart))
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	renderStart := time.Now()
	s.renderPage(w, r, func(buf *bytes.Buffer) error { return s.renderer.RenderAnalysis(buf, vm) })
	timing.Record("render", time.Since(renderStart))
	s.logTimings(r, timing)
}

// renderPage renders into a buffer first so a template error never leaves a
// half-written page behind.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.pageError(w, r, fmt.Errorf("template rendering: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

type measureJSON struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type summaryJSON struct {
	Group    string            `json:"group"`
	Measures []measureJSON     `json:"measures"`
	Rows     []grouping.Row    `json:"rows"`
	Totals   []float64         `json:"totals"`
	Records  int               `json:"records"`
	Request  map[string]string `json:"request"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := query.NewSummaryQuery(r.URL)
	req, err := q.Resolve()
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	summary, err := grouping.Summarize(s.dataset, req)
	if err != nil {
		s.apiError(w, r, err)
		return
	}

	order := "asc"
	if req.Descending {
		order = "desc"
	}
	resp := summaryJSON{
		Group:   summary.GroupKey.Name(),
		Rows:    summary.Rows,
		Totals:  summary.Totals,
		Records: summary.Records,
		Request: map[string]string{
			"sort":  req.SortBy.String(),
			"order": order,
			"limit": strconv.Itoa(req.Limit),
		},
	}
	for _, m := range summary.Measures {
		resp.Measures = append(resp.Measures, measureJSON{Name: m.Name(), Label: m.Label()})
	}
	s.writeJSON(w, r, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	key, err := metrics.KeyMetrics(s.dataset)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	quality, err := metrics.LoanQuality(s.dataset)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	statuses, err := metrics.StatusSummary(s.dataset)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.writeJSON(w, r, map[string]any{
		"key":      key,
		"quality":  quality,
		"statuses": statuses,
	})
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.apiError(w, r, &query.ConfigurationError{Setting: "limit", Value: v})
			return
		}
		limit = n
	}
	keys, err := metrics.ParseGridSort(r.URL.Query().Get("sort"))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	rows, err := metrics.SortedLoanGrid(s.dataset, keys, limit)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.writeJSON(w, r, map[string]any{
		"total": s.dataset.Length(),
		"loans": rows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, map[string]any{
		"status":  "ok",
		"records": s.dataset.Length(),
	})
}

var (
	// errUnknownChart is returned for chart names that are not served.
	errUnknownChart = errors.New("unknown chart")
	// errChartBusy is returned when the request gave up waiting for the chart limiter.
	errChartBusy = errors.New("chart rendering busy")
)

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	m := query.Count()
	if name := r.URL.Query().Get("measure"); name != "" {
		parsed, err := query.ParseMeasure(name)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		m = parsed
	}

	if s.chartLimiter != nil {
		if err := s.chartLimiter.Wait(r.Context()); err != nil {
			s.apiError(w, r, fmt.Errorf("%w: %v", errChartBusy, err))
			return
		}
	}

	png, err := s.renderChart(r.PathValue("name"), m)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=300")
	_, _ = w.Write(png)
}

func (s *Server) renderChart(name string, m query.Measure) ([]byte, error) {
	switch name {
	case "quality":
		q, err := metrics.LoanQuality(s.dataset)
		if err != nil {
			return nil, err
		}
		return charts.Donut("Good vs Bad Loans", []charts.Point{
			{Label: q.Good.Name, Value: q.Good.Share, Color: charts.ColorGood},
			{Label: q.Bad.Name, Value: q.Bad.Share, Color: charts.ColorBad},
		}, s.opts.Chart)
	case "trend":
		points, err := metrics.MonthlyTrend(s.dataset, m)
		if err != nil {
			return nil, err
		}
		return charts.Area(m.Label()+" Over Time", chartPoints(points), s.opts.Chart)
	case "employment":
		points, err := metrics.Breakdown(s.dataset, fields.EmpLength, m)
		if err != nil {
			return nil, err
		}
		return charts.Bars(fmt.Sprintf("Employees by Length of Service (%s)", m.Label()), chartPoints(points), s.opts.Chart)
	case "purpose":
		points, err := metrics.Breakdown(s.dataset, fields.Purpose, m)
		if err != nil {
			return nil, err
		}
		return charts.Bars(fmt.Sprintf("Loan Purpose Analysis (%s)", m.Label()), chartPoints(points), s.opts.Chart)
	case "term":
		points, err := metrics.TermDistribution(s.dataset)
		if err != nil {
			return nil, err
		}
		return charts.Donut("Loan Term Distribution", chartPoints(points), s.opts.Chart)
	default:
		return nil, fmt.Errorf("%w %q", errUnknownChart, name)
	}
}

func chartPoints(points []metrics.Point) []charts.Point {
	out := make([]charts.Point, len(points))
	for i, p := range points {
		out[i] = charts.Point{Label: p.Label, Value: p.Value}
	}
	return out
}

// statusFor maps an error to an HTTP status. Request errors (unknown
// field, wrong field kind, unknown measure or setting) are the caller's.
// A chart with nothing to draw is a property of the data, not a fault.
func statusFor(err error) int {
	var schemaErr *fields.SchemaError
	var mismatch *fields.TypeMismatchError
	var cfgErr *query.ConfigurationError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &mismatch), errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, errUnknownChart):
		return http.StatusNotFound
	case errors.Is(err, charts.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errChartBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logError(r *http.Request, status int, err error) {
	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("request_id", requestIDFrom(r)).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logError(r, status, err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logError(r, status, err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.apiError(w, r, fmt.Errorf("encoding response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
