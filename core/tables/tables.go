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

// Package tables holds the loaded loan dataset.
//
// A DataTable is built column by column and then sealed. After Seal it is
// never written again, so a single table can be shared by any number of
// concurrent readers without locking.
package tables

import (
	"fmt"

	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/fields"
)

type DataTable struct {
	columns map[string]columns.IDataColumn
	order   []string
	length  int
	sealed  bool
}

func NewDataTable() *DataTable {
	return &DataTable{
		columns: make(map[string]columns.IDataColumn),
	}
}

// AddColumn registers a fully populated column. All columns must have the
// same length and names must be unique.
func (dt *DataTable) AddColumn(col columns.IDataColumn) error {
	if dt.sealed {
		return fmt.Errorf("table is sealed")
	}
	name := col.ColumnDef().Name()
	if _, exists := dt.columns[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(dt.order) > 0 && col.Length() != dt.length {
		return fmt.Errorf("column %q has %d rows, table has %d", name, col.Length(), dt.length)
	}
	dt.columns[name] = col
	dt.order = append(dt.order, name)
	dt.length = col.Length()
	return nil
}

// Seal makes the table read-only.
func (dt *DataTable) Seal() {
	dt.sealed = true
}

// Sealed reports whether Seal has been called.
func (dt *DataTable) Sealed() bool {
	return dt.sealed
}

func (dt *DataTable) GetColumn(name string) columns.IDataColumn {
	return dt.columns[name]
}

// GetColumnNames returns column names in the order they were added.
func (dt *DataTable) GetColumnNames() []string {
	names := make([]string, len(dt.order))
	copy(names, dt.order)
	return names
}

// Length returns the number of records.
func (dt *DataTable) Length() int {
	return dt.length
}

// HasColumn reports whether the table carries the field.
func (dt *DataTable) HasColumn(f fields.Field) bool {
	_, ok := dt.columns[f.Name()]
	return ok
}

// AllIndices returns every row index in order.
func (dt *DataTable) AllIndices() []uint32 {
	indices := make([]uint32, dt.length)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return indices
}

// StringColumn returns the string column for f, or a SchemaError when the
// table does not carry it.
func (dt *DataTable) StringColumn(f fields.Field) (*columns.StringColumn, error) {
	col, ok := dt.columns[f.Name()]
	if !ok {
		return nil, &fields.SchemaError{Missing: []string{f.Name()}}
	}
	sc, ok := col.(*columns.StringColumn)
	if !ok {
		return nil, &fields.TypeMismatchError{Field: f, Operation: "string access", Want: fields.KindCategorical}
	}
	return sc, nil
}

// Float64Column returns the numeric column for f, or a SchemaError when the
// table does not carry it.
func (dt *DataTable) Float64Column(f fields.Field) (*columns.Float64Column, error) {
	col, ok := dt.columns[f.Name()]
	if !ok {
		return nil, &fields.SchemaError{Missing: []string{f.Name()}}
	}
	fc, ok := col.(*columns.Float64Column)
	if !ok {
		return nil, &fields.TypeMismatchError{Field: f, Operation: "numeric access", Want: fields.KindNumeric}
	}
	return fc, nil
}
