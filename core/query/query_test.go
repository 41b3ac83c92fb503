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

package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/taxinomia-loans/core/fields"
)

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in   string
		want Measure
	}{
		{"count", Count()},
		{"sum:loan_amount", Sum(fields.LoanAmount)},
		{"mean:int_rate", Mean(fields.IntRate)},
		{"avg:dti", Mean(fields.DTI)},
		{"Total Loan Applications", Count()},
		{"Total Amount Received", Sum(fields.TotalPayment)},
		{"Total Funded Amount", Sum(fields.LoanAmount)},
		{" Avg DTI ", Mean(fields.DTI)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMeasure(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMeasureErrors(t *testing.T) {
	t.Run("unknown name", func(t *testing.T) {
		_, err := ParseMeasure("median:loan_amount")
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "measure", cfgErr.Setting)
	})

	t.Run("sum of a categorical field", func(t *testing.T) {
		_, err := ParseMeasure("sum:purpose")
		var mismatch *fields.TypeMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, fields.Purpose, mismatch.Field)
	})

	t.Run("mean of an unknown field", func(t *testing.T) {
		_, err := ParseMeasure("mean:salary")
		var schemaErr *fields.SchemaError
		require.True(t, errors.As(err, &schemaErr))
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := ParseMeasure("sum:")
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})
}

func TestMeasureNamesAndLabels(t *testing.T) {
	assert.Equal(t, "count", Count().Name())
	assert.Equal(t, "sum:loan_amount", Sum(fields.LoanAmount).Name())
	assert.Equal(t, LabelFunded, Sum(fields.LoanAmount).Label())
	assert.Equal(t, "Total Installment Amount", Sum(fields.Installment).Label())

	for _, m := range SelectableMeasures() {
		parsed, err := ParseMeasure(m.Label())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestSummaryQueryResolve(t *testing.T) {
	u, _ := url.Parse("/api/summary?group=purpose&measure=count,sum:loan_amount&measure=mean:int_rate&order=desc&sort_measure=sum:loan_amount&limit=3")
	req, err := NewSummaryQuery(u).Resolve()
	require.NoError(t, err)

	assert.Equal(t, "purpose", req.GroupKey)
	assert.Equal(t, []Measure{Count(), Sum(fields.LoanAmount), Mean(fields.IntRate)}, req.Measures)
	assert.Equal(t, 1, req.SortMeasure)
	assert.True(t, req.Descending)
	assert.Equal(t, SortByValue, req.SortBy)
	assert.Equal(t, 3, req.Limit)
}

func TestSummaryQueryDefaults(t *testing.T) {
	u, _ := url.Parse("/api/summary?group=term")
	req, err := NewSummaryQuery(u).Resolve()
	require.NoError(t, err)

	assert.Equal(t, []Measure{Count()}, req.Measures)
	assert.False(t, req.Descending)
	assert.Equal(t, 0, req.Limit)
}

func TestSummaryQueryRejectsBadSettings(t *testing.T) {
	for _, raw := range []string{
		"/api/summary?group=term&order=sideways",
		"/api/summary?group=term&sort=random",
		"/api/summary?group=term&limit=-1",
		"/api/summary?group=term&measure=count&sort_measure=4",
		"/api/summary?group=term&measure=count&sort_measure=sum:loan_amount",
		"/api/summary?group=term&measure=bogus",
	} {
		t.Run(raw, func(t *testing.T) {
			u, _ := url.Parse(raw)
			_, err := NewSummaryQuery(u).Resolve()
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestSummaryQueryURLRoundTrip(t *testing.T) {
	q := &SummaryQuery{Path: "/api/summary", Group: "emp_length", Measures: []string{"sum:total_payment"}, Order: "desc"}
	parsed := NewSummaryQuery(q.URL())

	assert.Equal(t, q.Group, parsed.Group)
	assert.Equal(t, q.Measures, parsed.Measures)
	assert.Equal(t, q.Order, parsed.Order)
	assert.Equal(t, "/api/summary", parsed.Path)
}
