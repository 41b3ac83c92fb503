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

package metrics

import (
	"math"
	"strings"

	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/dates"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/tables"
)

// GridColumns are the loan grid columns, in display order.
var GridColumns = []fields.Field{
	fields.ID, fields.Purpose, fields.HomeOwnership, fields.Grade, fields.SubGrade,
	fields.IssueDate, fields.LoanAmount, fields.IntRate, fields.Installment, fields.TotalPayment,
}

// LoanRow is one record of the loan grid. A nil amount is a missing value.
type LoanRow struct {
	ID            string   `json:"id"`
	Purpose       string   `json:"purpose"`
	HomeOwnership string   `json:"home_ownership"`
	Grade         string   `json:"grade"`
	SubGrade      string   `json:"sub_grade"`
	IssueDate     string   `json:"issue_date"`
	LoanAmount    *float64 `json:"loan_amount"`
	IntRate       *float64 `json:"int_rate"`
	Installment   *float64 `json:"installment"`
	TotalPayment  *float64 `json:"total_payment"`
}

// LoanGrid returns the first limit records in file order; limit 0 returns all.
func LoanGrid(ds *tables.DataTable, limit int) ([]LoanRow, error) {
	return SortedLoanGrid(ds, nil, limit)
}

// ParseGridSort parses a comma separated list of field names, each
// optionally prefixed with "-" for descending order.
func ParseGridSort(s string) ([]tables.SortKey, error) {
	var keys []tables.SortKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, descending := strings.CutPrefix(part, "-")
		f, err := fields.Lookup(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, tables.SortKey{Field: f, Descending: descending})
	}
	return keys, nil
}

// SortedLoanGrid returns up to limit records ordered by keys. Missing values
// sort last; ties keep file order.
func SortedLoanGrid(ds *tables.DataTable, keys []tables.SortKey, limit int) ([]LoanRow, error) {
	strs := map[fields.Field]*columns.StringColumn{}
	nums := map[fields.Field]*columns.Float64Column{}
	for _, f := range GridColumns {
		if f.IsNumeric() {
			col, err := ds.Float64Column(f)
			if err != nil {
				return nil, err
			}
			nums[f] = col
			continue
		}
		col, err := ds.StringColumn(f)
		if err != nil {
			return nil, err
		}
		strs[f] = col
	}

	order, err := ds.SortedTopK(ds.AllIndices(), keys, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]LoanRow, len(order))
	for i, idx := range order {
		str := func(f fields.Field) string {
			v, _ := strs[f].GetValue(idx)
			return v
		}
		num := func(f fields.Field) *float64 {
			v, err := nums[f].GetValue(idx)
			if err != nil || math.IsNaN(v) {
				return nil
			}
			return &v
		}
		rows[i] = LoanRow{
			ID:            str(fields.ID),
			Purpose:       str(fields.Purpose),
			HomeOwnership: str(fields.HomeOwnership),
			Grade:         str(fields.Grade),
			SubGrade:      str(fields.SubGrade),
			IssueDate:     dates.GridDate(str(fields.IssueDate)),
			LoanAmount:    num(fields.LoanAmount),
			IntRate:       num(fields.IntRate),
			Installment:   num(fields.Installment),
			TotalPayment:  num(fields.TotalPayment),
		}
	}
	return rows, nil
}
