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

package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/dates"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/tables"
)

// maxMagnitude bounds the absolute sum of a numeric column so that every
// group sum and mean stays finite.
const maxMagnitude = math.MaxFloat64 / 2

// ImportOptions configures CSV import behavior
type ImportOptions struct {
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
	// RequiredFields must all be present in the header
	RequiredFields []fields.Field
}

// DefaultOptions returns default import options
func DefaultOptions() ImportOptions {
	return ImportOptions{
		Delimiter:      ',',
		RequiredFields: fields.Required,
	}
}

// LoadStats describes data-quality findings of one import.
type LoadStats struct {
	Rows int
	// MissingNumeric counts empty or unparseable cells per numeric column.
	MissingNumeric map[string]int
	// UnknownMonths counts rows whose issue date fell into the unknown bucket.
	UnknownMonths int
	// DuplicateIDs is set when the id column is not unique.
	DuplicateIDs bool
	// ExtraColumns lists header columns that are not catalogued fields.
	ExtraColumns []string
}

// Warnings describes the data-quality findings for operators, one line each.
func (s *LoadStats) Warnings() []string {
	var out []string
	names := make([]string, 0, len(s.MissingNumeric))
	for name := range s.MissingNumeric {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, fmt.Sprintf("%d %s values missing or not numeric", s.MissingNumeric[name], name))
	}
	if s.UnknownMonths > 0 {
		out = append(out, fmt.Sprintf("%d issue dates could not be parsed and are reported as %q", s.UnknownMonths, dates.UnknownBucket))
	}
	if s.DuplicateIDs {
		out = append(out, "loan ids are not unique")
	}
	if len(s.ExtraColumns) > 0 {
		out = append(out, fmt.Sprintf("columns outside the loan schema: %s", strings.Join(s.ExtraColumns, ", ")))
	}
	return out
}

// ImportFromFile imports a CSV file and returns a sealed DataTable
func ImportFromFile(filepath string, options ImportOptions) (*tables.DataTable, *LoadStats, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ImportFromReader(file, options)
}

// ImportFromReader imports CSV data from an io.Reader and returns a sealed DataTable.
// A missing required column is reported as a *fields.SchemaError before any
// row is read.
func ImportFromReader(reader io.Reader, options ImportOptions) (*tables.DataTable, *LoadStats, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}

	if err := checkRequired(headers, options.RequiredFields); err != nil {
		return nil, nil, err
	}

	stats := &LoadStats{MissingNumeric: make(map[string]int)}

	stringCols := make(map[int]*columns.StringColumn)
	float64Cols := make(map[int]*columns.Float64Column)
	ordered := make([]columns.IDataColumn, 0, len(headers)+1)
	issueDateIdx := -1

	for i, header := range headers {
		if fields.Known(header) {
			f := fields.Field(header)
			if f.Derived() {
				// derived columns are always recomputed
				continue
			}
			if f == fields.IssueDate {
				issueDateIdx = i
			}
			if f.IsNumeric() {
				col := columns.NewFloat64Column(columns.NewFieldColumnDef(f))
				float64Cols[i] = col
				ordered = append(ordered, col)
				continue
			}
			col := columns.NewStringColumn(columns.NewFieldColumnDef(f))
			stringCols[i] = col
			ordered = append(ordered, col)
			continue
		}
		stats.ExtraColumns = append(stats.ExtraColumns, header)
		col := columns.NewStringColumn(columns.NewColumnDef(header, header, fields.KindCategorical))
		stringCols[i] = col
		ordered = append(ordered, col)
	}

	var monthCol *columns.StringColumn
	if issueDateIdx >= 0 {
		monthCol = columns.NewStringColumn(columns.NewFieldColumnDef(fields.IssueMonth))
		ordered = append(ordered, monthCol)
	}

	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		stats.Rows++

		for i := range headers {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}

			if col, ok := stringCols[i]; ok {
				col.Append(value)
			} else if col, ok := float64Cols[i]; ok {
				if err := col.AppendString(value); err != nil {
					stats.MissingNumeric[headers[i]]++
				}
			}
		}

		if monthCol != nil {
			value := ""
			if issueDateIdx < len(row) {
				value = row[issueDateIdx]
			}
			bucket := dates.MonthBucket(value)
			if bucket == dates.UnknownBucket {
				stats.UnknownMonths++
			}
			monthCol.Append(bucket)
		}
	}

	if stats.Rows == 0 {
		return nil, nil, fmt.Errorf("CSV file has no data rows")
	}

	for i, col := range float64Cols {
		if m := col.Magnitude(); m > maxMagnitude {
			return nil, nil, fmt.Errorf("column %q: values too large to aggregate", headers[i])
		}
	}

	for _, col := range stringCols {
		col.FinalizeColumn()
	}
	if idCol, ok := findStringColumn(stringCols, fields.ID); ok {
		stats.DuplicateIDs = !idCol.IsKey()
	}

	table := tables.NewDataTable()
	for _, col := range ordered {
		if err := table.AddColumn(col); err != nil {
			return nil, nil, fmt.Errorf("failed to build table: %w", err)
		}
	}
	table.Seal()

	return table, stats, nil
}

// checkRequired returns a SchemaError naming every required column absent
// from the header.
func checkRequired(headers []string, required []fields.Field) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, f := range required {
		if !present[f.Name()] {
			missing = append(missing, f.Name())
		}
	}
	if len(missing) > 0 {
		return &fields.SchemaError{Missing: missing, Reason: "required column absent"}
	}
	return nil
}

func findStringColumn(cols map[int]*columns.StringColumn, f fields.Field) (*columns.StringColumn, bool) {
	for _, col := range cols {
		if col.ColumnDef().Name() == f.Name() {
			return col, true
		}
	}
	return nil, false
}
