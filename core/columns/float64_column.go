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

package columns

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float64Column stores numeric loan values. NaN marks a missing or
// unparseable cell; the statistics methods skip NaN entries.
type Float64Column struct {
	columnDef *ColumnDef
	data      []float64
	missing   int
}

// NewFloat64Column creates a new float64 column.
func NewFloat64Column(columnDef *ColumnDef) *Float64Column {
	return &Float64Column{
		columnDef: columnDef,
		data:      make([]float64, 0),
	}
}

// ColumnDef returns the column definition.
func (c *Float64Column) ColumnDef() *ColumnDef {
	return c.columnDef
}

// Length returns the number of rows in the column.
func (c *Float64Column) Length() int {
	return len(c.data)
}

// GetString returns the string representation of the value at the given index.
// Missing values are returned as an empty string.
func (c *Float64Column) GetString(i uint32) (string, error) {
	if int(i) >= len(c.data) {
		return "", fmt.Errorf("index %d out of bounds (length: %d)", i, len(c.data))
	}
	return FormatFloat64(c.data[i]), nil
}

// FormatFloat64 formats a float64 value for display.
// NaN (missing) formats as an empty string.
func FormatFloat64(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// GetValue returns the float64 value at the given index.
func (c *Float64Column) GetValue(i uint32) (float64, error) {
	if int(i) >= len(c.data) {
		return 0, fmt.Errorf("index %d out of bounds (length: %d)", i, len(c.data))
	}
	return c.data[i], nil
}

// Append adds a float64 value to the column.
func (c *Float64Column) Append(value float64) {
	if math.IsNaN(value) {
		c.missing++
	}
	c.data = append(c.data, value)
}

// AppendString parses and adds a float64 from a string. Empty or
// unparseable input is stored as missing and reported through the error.
func (c *Float64Column) AppendString(s string) error {
	v, err := ParseFloat64(s)
	if err != nil {
		c.Append(math.NaN())
		return err
	}
	c.Append(v)
	return nil
}

// ParseFloat64 parses a numeric cell. Surrounding whitespace and thousands
// separators are ignored; an empty cell is an error.
func ParseFloat64(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), fmt.Errorf("empty value")
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), err
	}
	if math.IsInf(v, 0) {
		return math.NaN(), fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

// IsKey always reports false; numeric columns are never identifiers here.
func (c *Float64Column) IsKey() bool {
	return false
}

// Missing returns the number of NaN cells.
func (c *Float64Column) Missing() int {
	return c.missing
}

// Magnitude returns the sum of the absolute non-missing values. No sum or
// mean over any subset of rows exceeds it.
func (c *Float64Column) Magnitude() float64 {
	var total float64
	for _, v := range c.data {
		if !math.IsNaN(v) {
			total += math.Abs(v)
		}
	}
	return total
}
