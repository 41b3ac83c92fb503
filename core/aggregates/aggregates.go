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

// Package aggregates provides the reducer states used by the grouping engine.
// A state is filled from one partition of the dataset and can be combined
// with the state of another partition, so totals can be derived from the
// per-group states without a second pass over the rows.
package aggregates

import (
	"math"

	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/query"
)

// NumericAggState stores intermediate state for a numeric reduction.
// Records counts every row offered to the state; Count only the rows whose
// value was present.
type NumericAggState struct {
	Records int64   // Rows in the partition, missing values included
	Count   int64   // Number of non-missing values
	Sum     float64 // Sum of non-missing values
}

// NewNumericAggState creates a new empty numeric aggregate state.
func NewNumericAggState() *NumericAggState {
	return &NumericAggState{}
}

// Add adds a single value to the aggregate state. NaN is a missing value: it
// counts as a record but does not contribute.
func (s *NumericAggState) Add(value float64) {
	s.Records++
	if math.IsNaN(value) {
		return
	}
	s.Count++
	s.Sum += value
}

// Combine merges another numeric state into this one.
func (s *NumericAggState) Combine(o *NumericAggState) {
	if o == nil || o.Records == 0 {
		return
	}
	s.Records += o.Records
	if o.Count == 0 {
		return
	}
	s.Count += o.Count
	s.Sum += o.Sum
}

// Avg returns the mean of the non-missing values, or 0 when there are none.
func (s *NumericAggState) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Value returns the scalar for the given measure kind.
func (s *NumericAggState) Value(kind query.MeasureKind) float64 {
	switch kind {
	case query.MeasureCount:
		return float64(s.Records)
	case query.MeasureSum:
		return s.Sum
	case query.MeasureMean:
		return s.Avg()
	default:
		return math.NaN()
	}
}

// Reduce builds a state from the column values at indices. A nil column
// yields a cardinality-only state.
func Reduce(col *columns.Float64Column, indices []uint32) *NumericAggState {
	s := NewNumericAggState()
	if col == nil {
		s.Records = int64(len(indices))
		return s
	}
	for _, i := range indices {
		v, err := col.GetValue(i)
		if err != nil {
			continue
		}
		s.Add(v)
	}
	return s
}
