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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/taxinomia-loans/core/fixtures"
	"github.com/google/taxinomia-loans/core/logging"
	"github.com/google/taxinomia-loans/core/tables"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	ds := fixtures.Load(t, fixtures.Portfolio()...)
	s, err := NewServer(ds, nil, logging.NewLoggerWithOutput("info", &logs), Options{Title: "Loan Test", GridLimit: 5})
	require.NoError(t, err)
	return s, &logs
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestNewServerRequiresSealedDataset(t *testing.T) {
	_, err := NewServer(nil, nil, nil, Options{})
	assert.Error(t, err)

	_, err = NewServer(tables.NewDataTable(), nil, nil, Options{})
	assert.Error(t, err)
}

func TestPages(t *testing.T) {
	s, logs := newTestServer(t)

	for _, path := range []string{"/", "/analysis", "/about"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, s, path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), "Loan Test")
			assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		})
	}
	assert.Contains(t, logs.String(), `"message":"HTTP request"`)
}

func TestRequestIDIsReused(t *testing.T) {
	s, logs := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"request_id":"abc-123"`)
}

func TestAnalysisMeasureSelection(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/analysis?trend_measure=sum:loan_amount")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total Funded Amount")

	rec = get(t, s, "/analysis?purpose_measure=median:dti")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "configuration error")
}

func TestSummaryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/summary?group=loan_status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryJSON
	decode(t, rec, &resp)
	assert.Equal(t, "loan_status", resp.Group)
	assert.Equal(t, 10, resp.Records)
	require.Len(t, resp.Rows, 3)

	var got []string
	for _, row := range resp.Rows {
		got = append(got, row.Group)
	}
	assert.Equal(t, []string{"Charged Off", "Current", "Fully Paid"}, got)
	assert.Equal(t, []float64{2}, resp.Rows[0].Values)
	assert.Equal(t, []float64{6}, resp.Rows[2].Values)
	assert.Equal(t, "count", resp.Measures[0].Name)
	assert.Equal(t, "asc", resp.Request["order"])
}

func TestSummaryEndpointMultipleMeasures(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/summary?group=term&measure=count&measure=sum:loan_amount&order=desc&sort_measure=1&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryJSON
	decode(t, rec, &resp)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "36 months", resp.Rows[0].Group)
	assert.Equal(t, []float64{7, 67000}, resp.Rows[0].Values)
	assert.Equal(t, []float64{10, 114000}, resp.Totals)
}

func TestSummaryEndpointErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		target string
		want   string
	}{
		{"/api/summary?group=salary", "schema error"},
		{"/api/summary?group=loan_amount", "type mismatch"},
		{"/api/summary?group=purpose&measure=sum:purpose", "type mismatch"},
		{"/api/summary?group=purpose&measure=median:dti", "configuration error"},
		{"/api/summary?group=purpose&order=sideways", "configuration error"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			decode(t, rec, &body)
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Key struct {
			Applications int     `json:"applications"`
			Funded       float64 `json:"funded"`
			Received     float64 `json:"received"`
		} `json:"key"`
		Quality struct {
			Total int `json:"total"`
			Good  struct {
				Applications int     `json:"applications"`
				Share        float64 `json:"share"`
			} `json:"good"`
		} `json:"quality"`
		Statuses []struct {
			Status string `json:"status"`
		} `json:"statuses"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 10, resp.Key.Applications)
	assert.Equal(t, 114000.0, resp.Key.Funded)
	assert.Equal(t, 92900.0, resp.Key.Received)
	assert.Equal(t, 10, resp.Quality.Total)
	assert.Equal(t, 8, resp.Quality.Good.Applications)
	assert.InDelta(t, 80, resp.Quality.Good.Share, 1e-9)
	assert.Len(t, resp.Statuses, 3)
}

func TestLoansEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/loans?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int `json:"total"`
		Loans []struct {
			ID        string   `json:"id"`
			IssueDate string   `json:"issue_date"`
			Amount    *float64 `json:"loan_amount"`
		} `json:"loans"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 10, resp.Total)
	require.Len(t, resp.Loans, 2)
	assert.Equal(t, "1", resp.Loans[0].ID)
	assert.Equal(t, "2021-01-11", resp.Loans[0].IssueDate)
	require.NotNil(t, resp.Loans[0].Amount)
	assert.Equal(t, 10000.0, *resp.Loans[0].Amount)

	rec = get(t, s, "/api/loans?limit=many")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/api/loans?limit=1&sort=-loan_amount")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	require.Len(t, resp.Loans, 1)
	assert.Equal(t, "8", resp.Loans[0].ID)

	rec = get(t, s, "/api/loans?sort=salary")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	for _, name := range []string{"quality", "trend", "employment", "purpose", "term"} {
		t.Run(name, func(t *testing.T) {
			rec := get(t, s, "/chart/"+name)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
		})
	}

	rec := get(t, s, "/chart/trend?measure=sum:total_payment")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/chart/pie")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/chart/trend?measure=sum:grade")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartSingleMonthTrend(t *testing.T) {
	// both loans were issued in January 2021
	ds := fixtures.Load(t, fixtures.Portfolio()[:2]...)
	s, err := NewServer(ds, nil, nil, Options{})
	require.NoError(t, err)

	rec := get(t, s, "/chart/trend")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestChartWithoutClassifiedLoans(t *testing.T) {
	loan := fixtures.Portfolio()[0]
	loan.LoanStatus = "Issued"
	ds := fixtures.Load(t, loan)
	s, err := NewServer(ds, nil, nil, Options{})
	require.NoError(t, err)

	rec := get(t, s, "/chart/quality")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no data to chart")

	rec = get(t, s, "/chart/term")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMethods(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(10), health["records"])

	post := httptest.NewRecorder()
	s.Handler().ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/api/summary?group=term", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, post.Code)

	missing := get(t, s, "/nowhere")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestChartRateLimit(t *testing.T) {
	ds := fixtures.Load(t, fixtures.Portfolio()...)
	s, err := NewServer(ds, nil, nil, Options{ChartRateLimit: 1})
	require.NoError(t, err)
	require.NotNil(t, s.chartLimiter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/term", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
