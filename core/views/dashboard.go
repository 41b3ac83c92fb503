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

// Package views builds the view models consumed by the page templates. All
// figures are computed and formatted here; templates only lay them out.
package views

import (
	"fmt"
	"net/url"

	"github.com/google/safehtml"

	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/format"
	"github.com/google/taxinomia-loans/core/metrics"
	"github.com/google/taxinomia-loans/core/query"
	"github.com/google/taxinomia-loans/core/tables"
)

// Menu entries, in navigation order.
const (
	PageHome     = "Home"
	PageAnalysis = "Analysis"
	PageAbout    = "About"
)

var menu = []struct {
	label string
	path  string
}{
	{PageHome, "/"},
	{PageAnalysis, "/analysis"},
	{PageAbout, "/about"},
}

// NavItem is one entry of the navigation menu.
type NavItem struct {
	Label  string
	URL    safehtml.URL
	Active bool
}

// Page carries what every page shares.
type Page struct {
	Title string
	Nav   []NavItem
}

// NewPage builds the page frame with the active menu entry marked.
func NewPage(title, active string) Page {
	p := Page{Title: title}
	for _, m := range menu {
		p.Nav = append(p.Nav, NavItem{
			Label:  m.label,
			URL:    safehtml.URLSanitized(m.path),
			Active: m.label == active,
		})
	}
	return p
}

// Options configures the dashboard.
type Options struct {
	Title     string
	GridLimit int
}

// Tile is one headline figure.
type Tile struct {
	Label string
	Value string
}

// MeasureOption is one entry of a measure select.
type MeasureOption struct {
	Name     string
	Label    string
	Selected bool
}

// ChartPanel is a chart with its measure select.
type ChartPanel struct {
	Title    string
	Param    safehtml.Identifier
	ImageURL safehtml.URL
	Options  []MeasureOption
	// Keep carries the other panels' selections through the form.
	Keep     []Hidden
	// Rows repeat the plotted values as text.
	Rows     []Tile
}

// Hidden is a hidden form input.
type Hidden struct {
	Name  safehtml.Identifier
	Value string
}

// StatusTableRow is one formatted line of the loan status summary.
type StatusTableRow struct {
	Status          string
	Applications    string
	Funded          string
	Received        string
	AvgInterestRate string
	AvgDTI          string
}

// GridRow is one formatted loan grid row, cells in GridHeaders order.
type GridRow struct {
	Cells []string
}

// AnalysisViewModel contains everything the analysis page shows.
type AnalysisViewModel struct {
	Page

	KeyMetrics   []Tile
	Good         []Tile
	Bad          []Tile
	QualityChart safehtml.URL
	StatusRows   []StatusTableRow

	Trend      ChartPanel
	Employment ChartPanel
	Purpose    ChartPanel

	TermChart safehtml.URL
	TermRows  []Tile

	GridHeaders []string
	GridRows    []GridRow
	GridShown   int
	GridTotal   int
	LoansURL    safehtml.URL
}

// Select parameters of the analysis page, one per chart.
const (
	ParamTrend      = "trend_measure"
	ParamEmployment = "employment_measure"
	ParamPurpose    = "purpose_measure"
)

var paramIDs = map[string]safehtml.Identifier{
	ParamTrend:      safehtml.IdentifierFromConstant(ParamTrend),
	ParamEmployment: safehtml.IdentifierFromConstant(ParamEmployment),
	ParamPurpose:    safehtml.IdentifierFromConstant(ParamPurpose),
}

// Selection holds the measure chosen for each selectable chart.
type Selection struct {
	Trend      query.Measure
	Employment query.Measure
	Purpose    query.Measure
}

// DefaultSelection selects applications everywhere.
func DefaultSelection() Selection {
	return Selection{Trend: query.Count(), Employment: query.Count(), Purpose: query.Count()}
}

// ParseSelection reads the measure selects from the URL. Absent parameters
// keep the default; unknown measures are an error.
func ParseSelection(u *url.URL) (Selection, error) {
	sel := DefaultSelection()
	q := u.Query()
	for param, target := range map[string]*query.Measure{
		ParamTrend:      &sel.Trend,
		ParamEmployment: &sel.Employment,
		ParamPurpose:    &sel.Purpose,
	} {
		name := q.Get(param)
		if name == "" {
			continue
		}
		m, err := query.ParseMeasure(name)
		if err != nil {
			return Selection{}, err
		}
		*target = m
	}
	return sel, nil
}

// params returns the non-default selections as form inputs, skipping one.
func (s Selection) params(skip string) []Hidden {
	var out []Hidden
	for _, p := range []struct {
		name string
		m    query.Measure
	}{
		{ParamTrend, s.Trend},
		{ParamEmployment, s.Employment},
		{ParamPurpose, s.Purpose},
	} {
		if p.name != skip && p.m != query.Count() {
			out = append(out, Hidden{Name: paramIDs[p.name], Value: p.m.Name()})
		}
	}
	return out
}

// ChartURL returns the image URL of a named chart for measure m.
func ChartURL(name string, m query.Measure) safehtml.URL {
	u := url.URL{Path: "/chart/" + name}
	if m != query.Count() {
		u.RawQuery = url.Values{"measure": {m.Name()}}.Encode()
	}
	return safehtml.URLSanitized(u.String())
}

func measureOptions(selected query.Measure) []MeasureOption {
	var opts []MeasureOption
	found := false
	for _, m := range query.SelectableMeasures() {
		opts = append(opts, MeasureOption{Name: m.Name(), Label: m.Label(), Selected: m == selected})
		found = found || m == selected
	}
	if !found {
		opts = append(opts, MeasureOption{Name: selected.Name(), Label: selected.Label(), Selected: true})
	}
	return opts
}

// FormatMeasure formats a measure value the way its tiles show it.
func FormatMeasure(m query.Measure, v float64) string {
	switch {
	case m.Kind == query.MeasureCount:
		return format.Integer(int(v))
	case m.Field == fields.IntRate || m.Field == fields.DTI:
		return format.Percent(v)
	default:
		return format.Currency(v)
	}
}

func pointTiles(m query.Measure, points []metrics.Point) []Tile {
	tiles := make([]Tile, len(points))
	for i, p := range points {
		tiles[i] = Tile{Label: p.Label, Value: FormatMeasure(m, p.Value)}
	}
	return tiles
}

// BuildAnalysisViewModel computes and formats every section of the analysis page.
func BuildAnalysisViewModel(ds *tables.DataTable, sel Selection, opts Options) (AnalysisViewModel, error) {
	vm := AnalysisViewModel{Page: NewPage(opts.Title, PageAnalysis)}

	key, err := metrics.KeyMetrics(ds)
	if err != nil {
		return vm, fmt.Errorf("key metrics: %w", err)
	}
	vm.KeyMetrics = []Tile{
		{query.LabelApplications, format.Thousands(float64(key.Applications))},
		{query.LabelFunded, format.Millions(key.Funded)},
		{query.LabelReceived, format.Millions(key.Received)},
		{"Average Interest Rate", format.Percent(key.AvgInterestRate)},
		{"Average DTI", format.Percent(key.AvgDTI)},
	}

	quality, err := metrics.LoanQuality(ds)
	if err != nil {
		return vm, fmt.Errorf("loan quality: %w", err)
	}
	vm.Good = segmentTiles("Good", quality.Good)
	vm.Bad = segmentTiles("Bad", quality.Bad)
	vm.QualityChart = ChartURL("quality", query.Count())

	statuses, err := metrics.StatusSummary(ds)
	if err != nil {
		return vm, fmt.Errorf("status summary: %w", err)
	}
	for _, s := range statuses {
		vm.StatusRows = append(vm.StatusRows, StatusTableRow{
			Status:          s.Status,
			Applications:    format.Integer(s.Applications),
			Funded:          format.Currency(s.Funded),
			Received:        format.Currency(s.Received),
			AvgInterestRate: format.Percent(s.AvgInterestRate),
			AvgDTI:          format.Percent(s.AvgDTI),
		})
	}

	trend, err := metrics.MonthlyTrend(ds, sel.Trend)
	if err != nil {
		return vm, fmt.Errorf("monthly trend: %w", err)
	}
	vm.Trend = ChartPanel{
		Title:    sel.Trend.Label() + " Over Time",
		Param:    paramIDs[ParamTrend],
		Keep:     sel.params(ParamTrend),
		ImageURL: ChartURL("trend", sel.Trend),
		Options:  measureOptions(sel.Trend),
		Rows:     pointTiles(sel.Trend, trend),
	}

	employment, err := metrics.Breakdown(ds, fields.EmpLength, sel.Employment)
	if err != nil {
		return vm, fmt.Errorf("employment breakdown: %w", err)
	}
	vm.Employment = ChartPanel{
		Title:    fmt.Sprintf("Employees by Length of Service (%s)", sel.Employment.Label()),
		Param:    paramIDs[ParamEmployment],
		Keep:     sel.params(ParamEmployment),
		ImageURL: ChartURL("employment", sel.Employment),
		Options:  measureOptions(sel.Employment),
		Rows:     pointTiles(sel.Employment, employment),
	}

	purpose, err := metrics.Breakdown(ds, fields.Purpose, sel.Purpose)
	if err != nil {
		return vm, fmt.Errorf("purpose breakdown: %w", err)
	}
	vm.Purpose = ChartPanel{
		Title:    fmt.Sprintf("Loan Purpose Analysis (%s)", sel.Purpose.Label()),
		Param:    paramIDs[ParamPurpose],
		Keep:     sel.params(ParamPurpose),
		ImageURL: ChartURL("purpose", sel.Purpose),
		Options:  measureOptions(sel.Purpose),
		Rows:     pointTiles(sel.Purpose, purpose),
	}

	terms, err := metrics.TermDistribution(ds)
	if err != nil {
		return vm, fmt.Errorf("term distribution: %w", err)
	}
	vm.TermChart = ChartURL("term", query.Count())
	vm.TermRows = pointTiles(query.Count(), terms)

	grid, err := metrics.LoanGrid(ds, opts.GridLimit)
	if err != nil {
		return vm, fmt.Errorf("loan grid: %w", err)
	}
	for _, f := range metrics.GridColumns {
		vm.GridHeaders = append(vm.GridHeaders, f.DisplayName())
	}
	for _, r := range grid {
		vm.GridRows = append(vm.GridRows, GridRow{Cells: []string{
			r.ID, r.Purpose, r.HomeOwnership, r.Grade, r.SubGrade, r.IssueDate,
			format.Optional(r.LoanAmount, format.Currency),
			format.Optional(r.IntRate, format.Percent),
			format.Optional(r.Installment, format.Currency),
			format.Optional(r.TotalPayment, format.Currency),
		}})
	}
	vm.GridShown = len(grid)
	vm.GridTotal = ds.Length()
	vm.LoansURL = safehtml.URLSanitized("/api/loans")

	return vm, nil
}

func segmentTiles(name string, s metrics.Segment) []Tile {
	return []Tile{
		{name + " Loan Applications", format.Integer(s.Applications)},
		{name + " Loan Funded Amount", format.Millions(s.Funded)},
		{name + " Loan Received Amount", format.Millions(s.Received)},
		{name + " Loan Share", format.Percent(s.Share / 100)},
	}
}

// HomeViewModel is the landing page.
type HomeViewModel struct {
	Page
	Records      int
	Summary      []Tile
	SummaryURL   safehtml.URL
	Groupable    []string
	DataWarnings []string
}

// BuildHomeViewModel summarizes the loaded dataset for the landing page.
func BuildHomeViewModel(ds *tables.DataTable, opts Options, warnings []string) HomeViewModel {
	vm := HomeViewModel{
		Page:         NewPage(opts.Title, PageHome),
		Records:      ds.Length(),
		DataWarnings: warnings,
	}
	vm.Summary = []Tile{
		{"Records", format.Integer(ds.Length())},
		{"Columns", format.Integer(len(ds.GetColumnNames()))},
	}
	for _, f := range fields.Groupable() {
		if ds.HasColumn(f) {
			vm.Groupable = append(vm.Groupable, f.Name())
		}
	}
	example := &query.SummaryQuery{Path: "/api/summary", Group: fields.LoanStatus.Name(), Measures: []string{"count", "sum:loan_amount"}}
	vm.SummaryURL = example.ToSafeURL()
	return vm
}

// AboutViewModel is the about page.
type AboutViewModel struct {
	Page
	Attributes []Tile
}

// BuildAboutViewModel lists the analysed loan attributes.
func BuildAboutViewModel(opts Options) AboutViewModel {
	vm := AboutViewModel{Page: NewPage(opts.Title, PageAbout)}
	for _, f := range fields.Required {
		vm.Attributes = append(vm.Attributes, Tile{Label: f.DisplayName(), Value: f.Kind().String()})
	}
	return vm
}
