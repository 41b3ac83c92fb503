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

// Package grouping is the aggregation engine: it partitions a dataset by the
// value of one categorical field and reduces each partition with one or more
// measures.
//
// Terminology:
// * the field the rows are partitioned by is the group key
// * a group is the set of rows sharing one value of the group key
// * the groups of a partition are disjoint and together cover every row
// Rows whose group key is empty form a group of their own.
package grouping

import (
	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/tables"
)

// MissingLabel is the display label of the group of empty values.
const MissingLabel = "(missing)"

type Group struct {
	Value   string
	Indices []uint32
}

func (g *Group) Length() int {
	return len(g.Indices)
}

// Label returns the display label of the group.
func (g *Group) Label() string {
	return LabelFor(g.Value)
}

// LabelFor returns the display label of a group value.
func LabelFor(value string) string {
	if value == "" {
		return MissingLabel
	}
	return value
}

// Partition splits every row of ds by the value of groupKey. Groups appear in
// the order their value is first seen. The key must be a catalogued
// categorical field carried by the dataset: an unknown or absent field is a
// *fields.SchemaError, any other kind a *fields.TypeMismatchError.
func Partition(ds *tables.DataTable, groupKey string) ([]*Group, error) {
	col, err := groupColumn(ds, groupKey)
	if err != nil {
		return nil, err
	}
	return partitionColumn(col, ds.AllIndices()), nil
}

func groupColumn(ds *tables.DataTable, groupKey string) (*columns.StringColumn, error) {
	f, err := fields.Lookup(groupKey)
	if err != nil {
		return nil, err
	}
	if !f.IsGroupable() {
		return nil, &fields.TypeMismatchError{Field: f, Operation: "group", Want: fields.KindCategorical}
	}
	return ds.StringColumn(f)
}

func partitionColumn(col *columns.StringColumn, indices []uint32) []*Group {
	groupedIndices, values := col.GroupIndices(indices)
	groups := make([]*Group, len(values))
	for key, value := range values {
		groups[key] = &Group{
			Value:   value,
			Indices: groupedIndices[uint32(key)],
		}
	}
	return groups
}
