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
)

// StringColumn stores categorical and free-text values as-is.
// An empty string is a legitimate value and groups like any other.
type StringColumn struct {
	columnDef *ColumnDef
	data      []string
	isKey     bool
}

// NewStringColumn creates a new string column
func NewStringColumn(columnDef *ColumnDef) *StringColumn {
	return &StringColumn{
		columnDef: columnDef,
		data:      make([]string, 0),
	}
}

func (c *StringColumn) Append(value string) {
	c.data = append(c.data, value)
}

func (c *StringColumn) Length() int {
	return len(c.data)
}

func (c *StringColumn) ColumnDef() *ColumnDef {
	return c.columnDef
}

func (c *StringColumn) GetValue(i uint32) (string, error) {
	if i >= uint32(len(c.data)) {
		return "", fmt.Errorf("index %d out of bounds (length: %d)", i, len(c.data))
	}
	return c.data[i], nil
}

// GetString returns the string value at index i
func (c *StringColumn) GetString(i uint32) (string, error) {
	return c.GetValue(i)
}

// IsKey returns whether all values in the column are unique
func (c *StringColumn) IsKey() bool {
	return c.isKey
}

// FinalizeColumn should be called after all data has been added to detect uniqueness.
func (c *StringColumn) FinalizeColumn() {
	seen := make(map[string]struct{}, len(c.data))
	c.isKey = true
	for _, value := range c.data {
		if _, exists := seen[value]; exists {
			c.isKey = false
			return
		}
		seen[value] = struct{}{}
	}
}

// GroupIndices partitions indices by value. Group keys are assigned in
// first-seen order and values[key] is the value shared by that group, so the
// partition is stable for a given input order. Out of range indices are skipped.
func (c *StringColumn) GroupIndices(indices []uint32) (groups map[uint32][]uint32, values []string) {
	groups = map[uint32][]uint32{}
	valueToGroupKey := map[string]uint32{}
	for _, i := range indices {
		if int(i) >= len(c.data) {
			continue
		}
		value := c.data[i]
		if groupKey, ok := valueToGroupKey[value]; ok {
			groups[groupKey] = append(groups[groupKey], i)
		} else {
			groupKey := uint32(len(values))
			valueToGroupKey[value] = groupKey
			values = append(values, value)
			groups[groupKey] = []uint32{i}
		}
	}
	return groups, values
}
