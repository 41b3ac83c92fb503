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

package grouping

import (
	"fmt"
	"sort"

	"github.com/google/taxinomia-loans/core/aggregates"
	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/query"
	"github.com/google/taxinomia-loans/core/tables"
)

// GroupValue is one (group value, scalar) pair of a single-measure aggregation.
type GroupValue struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// Row is one group of a Summary. Values and Contributing are indexed like
// Summary.Measures.
type Row struct {
	Group   string    `json:"group"`
	Label   string    `json:"label"`
	Records int       `json:"records"`
	Values  []float64 `json:"values"`
	// Contributing counts the non-missing values behind each measure. It lets
	// a caller tell a mean of 0 from a mean over no values.
	Contributing []int `json:"contributing"`
}

// Summary is the reduced, ordered result of a request.
type Summary struct {
	GroupKey fields.Field
	Measures []query.Measure
	Rows     []Row
	// Totals reduces the whole dataset with each measure.
	Totals []float64
	// Records is the number of rows in the dataset.
	Records int
}

// Aggregate partitions ds by groupKey and reduces each group with measure.
// Pairs are ordered ascending by value, ties by group value.
func Aggregate(ds *tables.DataTable, groupKey string, measure query.Measure) ([]GroupValue, error) {
	summary, err := Summarize(ds, query.Request{
		GroupKey: groupKey,
		Measures: []query.Measure{measure},
	})
	if err != nil {
		return nil, err
	}
	result := make([]GroupValue, len(summary.Rows))
	for i, row := range summary.Rows {
		result[i] = GroupValue{Group: row.Group, Value: row.Values[0]}
	}
	return result, nil
}

// Summarize computes every measure of req for every group of req.GroupKey.
// Measures are validated before the dataset is partitioned.
func Summarize(ds *tables.DataTable, req query.Request) (*Summary, error) {
	if ds == nil {
		return nil, fmt.Errorf("no dataset loaded")
	}
	if len(req.Measures) == 0 {
		return nil, &query.ConfigurationError{Setting: "measure", Value: ""}
	}
	if req.SortMeasure < 0 || req.SortMeasure >= len(req.Measures) {
		return nil, &query.ConfigurationError{Setting: "sort_measure", Value: fmt.Sprint(req.SortMeasure)}
	}
	if req.Limit < 0 {
		return nil, &query.ConfigurationError{Setting: "limit", Value: fmt.Sprint(req.Limit)}
	}

	valueCols := make([]*columns.Float64Column, len(req.Measures))
	for i, m := range req.Measures {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if m.Kind == query.MeasureCount {
			continue
		}
		col, err := ds.Float64Column(m.Field)
		if err != nil {
			return nil, err
		}
		valueCols[i] = col
	}

	groups, err := Partition(ds, req.GroupKey)
	if err != nil {
		return nil, err
	}

	totals := make([]*aggregates.NumericAggState, len(req.Measures))
	for i := range totals {
		totals[i] = aggregates.NewNumericAggState()
	}

	rows := make([]Row, len(groups))
	for g, group := range groups {
		row := Row{
			Group:        group.Value,
			Label:        group.Label(),
			Records:      group.Length(),
			Values:       make([]float64, len(req.Measures)),
			Contributing: make([]int, len(req.Measures)),
		}
		for i, m := range req.Measures {
			state := aggregates.Reduce(valueCols[i], group.Indices)
			row.Values[i] = state.Value(m.Kind)
			row.Contributing[i] = int(state.Count)
			if m.Kind == query.MeasureCount {
				row.Contributing[i] = int(state.Records)
			}
			totals[i].Combine(state)
		}
		rows[g] = row
	}

	sortRows(rows, req)
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}

	summary := &Summary{
		GroupKey: fields.Field(req.GroupKey),
		Measures: req.Measures,
		Rows:     rows,
		Totals:   make([]float64, len(req.Measures)),
		Records:  ds.Length(),
	}
	for i, m := range req.Measures {
		summary.Totals[i] = totals[i].Value(m.Kind)
	}
	return summary, nil
}

// sortRows orders rows by the sort measure (or by group value) with ties
// broken by group value ascending, whatever the direction.
func sortRows(rows []Row, req query.Request) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var c int
		if req.SortBy == query.SortByGroup {
			c = CompareGroupValues(a.Group, b.Group)
		} else {
			c = columns.CompareFloat64s(a.Values[req.SortMeasure], b.Values[req.SortMeasure])
		}
		if req.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return CompareGroupValues(a.Group, b.Group) < 0
	})
}

// CompareGroupValues orders group values lexically, except that the missing
// group "" sorts last instead of first. Month buckets therefore sort
// chronologically, "unknown" after them.
func CompareGroupValues(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	case a < b:
		return -1
	default:
		return 1
	}
}
