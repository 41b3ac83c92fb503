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

// Package metrics computes the dashboard figures of the loan portfolio. Every
// figure is a summary produced by the grouping engine; nothing here reads
// rows directly except the loan grid.
package metrics

import (
	"github.com/google/taxinomia-loans/core/dates"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/grouping"
	"github.com/google/taxinomia-loans/core/query"
	"github.com/google/taxinomia-loans/core/tables"
)

// Loan status values that classify a loan as good or bad.
const (
	StatusFullyPaid  = "Fully Paid"
	StatusCurrent    = "Current"
	StatusChargedOff = "Charged Off"
)

// IsGood reports whether a loan status counts as a good loan.
func IsGood(status string) bool {
	return status == StatusFullyPaid || status == StatusCurrent
}

// IsBad reports whether a loan status counts as a bad loan.
func IsBad(status string) bool {
	return status == StatusChargedOff
}

// statusMeasures are the columns of the loan status summary, in table order.
var statusMeasures = []query.Measure{
	query.Count(),
	query.Sum(fields.LoanAmount),
	query.Sum(fields.TotalPayment),
	query.Mean(fields.IntRate),
	query.Mean(fields.DTI),
}

// Figures is one set of portfolio figures. Rates are fractions (0.12 = 12%).
type Figures struct {
	Applications    int     `json:"applications"`
	Funded          float64 `json:"funded"`
	Received        float64 `json:"received"`
	AvgInterestRate float64 `json:"avg_interest_rate"`
	AvgDTI          float64 `json:"avg_dti"`
}

func figuresOf(values []float64) Figures {
	return Figures{
		Applications:    int(values[0]),
		Funded:          values[1],
		Received:        values[2],
		AvgInterestRate: values[3],
		AvgDTI:          values[4],
	}
}

func statusSummary(ds *tables.DataTable) (*grouping.Summary, error) {
	return grouping.Summarize(ds, query.Request{
		GroupKey: fields.LoanStatus.Name(),
		Measures: statusMeasures,
		SortBy:   query.SortByGroup,
	})
}

// KeyMetrics returns the portfolio-wide figures.
func KeyMetrics(ds *tables.DataTable) (Figures, error) {
	s, err := statusSummary(ds)
	if err != nil {
		return Figures{}, err
	}
	return figuresOf(s.Totals), nil
}

// StatusRow is one line of the loan status summary.
type StatusRow struct {
	Status string `json:"status"`
	Figures
}

// StatusSummary returns the figures of every loan status, ordered by status.
func StatusSummary(ds *tables.DataTable) ([]StatusRow, error) {
	s, err := statusSummary(ds)
	if err != nil {
		return nil, err
	}
	rows := make([]StatusRow, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = StatusRow{Status: r.Label, Figures: figuresOf(r.Values)}
	}
	return rows, nil
}

// Segment aggregates the loans of one quality class.
type Segment struct {
	Name         string  `json:"name"`
	Applications int     `json:"applications"`
	Funded       float64 `json:"funded"`
	Received     float64 `json:"received"`
	// Share is the percentage of all applications in the segment.
	Share float64 `json:"share"`
}

// Quality splits the portfolio into good and bad loans. Statuses that are
// neither only count towards Total.
type Quality struct {
	Good  Segment `json:"good"`
	Bad   Segment `json:"bad"`
	Total int     `json:"total"`
}

// LoanQuality returns the good versus bad loan split.
func LoanQuality(ds *tables.DataTable) (Quality, error) {
	s, err := statusSummary(ds)
	if err != nil {
		return Quality{}, err
	}
	q := Quality{
		Good:  Segment{Name: "Good Loans"},
		Bad:   Segment{Name: "Bad Loans"},
		Total: s.Records,
	}
	for _, r := range s.Rows {
		var seg *Segment
		switch {
		case IsGood(r.Group):
			seg = &q.Good
		case IsBad(r.Group):
			seg = &q.Bad
		default:
			continue
		}
		seg.Applications += r.Records
		seg.Funded += r.Values[1]
		seg.Received += r.Values[2]
	}
	if q.Total > 0 {
		q.Good.Share = float64(q.Good.Applications) / float64(q.Total) * 100
		q.Bad.Share = float64(q.Bad.Applications) / float64(q.Total) * 100
	}
	return q, nil
}

// Point is one labelled value of a chart series.
type Point struct {
	Group string  `json:"group"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MonthlyTrend reduces every issue month with m, in chronological order.
// Records with an unparseable issue date are reported last, under "unknown".
func MonthlyTrend(ds *tables.DataTable, m query.Measure) ([]Point, error) {
	s, err := grouping.Summarize(ds, query.Request{
		GroupKey: fields.IssueMonth.Name(),
		Measures: []query.Measure{m},
		SortBy:   query.SortByGroup,
	})
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(s.Rows))
	for i, r := range s.Rows {
		points[i] = Point{Group: r.Group, Label: dates.MonthLabel(r.Group), Value: r.Values[0]}
	}
	return points, nil
}

// Breakdown reduces every value of f with m, smallest first.
func Breakdown(ds *tables.DataTable, f fields.Field, m query.Measure) ([]Point, error) {
	values, err := grouping.Aggregate(ds, f.Name(), m)
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Group: v.Group, Label: grouping.LabelFor(v.Group), Value: v.Value}
	}
	return points, nil
}

// TermDistribution counts the loans of every term, most frequent first.
func TermDistribution(ds *tables.DataTable) ([]Point, error) {
	s, err := grouping.Summarize(ds, query.Request{
		GroupKey:   fields.Term.Name(),
		Measures:   []query.Measure{query.Count()},
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(s.Rows))
	for i, r := range s.Rows {
		points[i] = Point{Group: r.Group, Label: r.Label, Value: r.Values[0]}
	}
	return points, nil
}
