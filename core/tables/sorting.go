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

package tables

import (
	"container/heap"
	"sort"

	"github.com/google/taxinomia-loans/core/columns"
	"github.com/google/taxinomia-loans/core/fields"
)

// SortKey orders records by one field.
type SortKey struct {
	Field      fields.Field
	Descending bool
}

// sortableColumn holds a column reference and its sort direction
type sortableColumn struct {
	col        columns.IDataColumn
	descending bool
}

// compareRows compares two row indices using multi-column sort order.
// Missing values stay last in both directions and ties fall back to row
// order, so the result is deterministic.
func compareRows(cols []sortableColumn, i, j uint32) int {
	for _, sc := range cols {
		cmp := columns.CompareAtIndex(sc.col, i, j)
		if cmp == 0 {
			continue
		}
		if sc.descending && columns.MissingAt(sc.col, i) == columns.MissingAt(sc.col, j) {
			return -cmp
		}
		return cmp
	}
	switch {
	case i < j:
		return -1
	case i > j:
		return 1
	}
	return 0
}

// topKHeap implements a max-heap for top-K selection: the worst of the K
// best rows seen so far sits at the top.
type topKHeap struct {
	indices []uint32
	cols    []sortableColumn
}

func (h *topKHeap) Len() int { return len(h.indices) }

func (h *topKHeap) Less(i, j int) bool {
	return compareRows(h.cols, h.indices[i], h.indices[j]) > 0
}

func (h *topKHeap) Swap(i, j int) {
	h.indices[i], h.indices[j] = h.indices[j], h.indices[i]
}

func (h *topKHeap) Push(x interface{}) {
	h.indices = append(h.indices, x.(uint32))
}

func (h *topKHeap) Pop() interface{} {
	old := h.indices
	n := len(old)
	x := old[n-1]
	h.indices = old[0 : n-1]
	return x
}

func (h *topKHeap) peek() uint32 {
	return h.indices[0]
}

// SortedTopK returns up to limit row indices ordered by keys (all rows when
// limit is 0). An unknown key is a *fields.SchemaError. The input slice is
// not modified.
//
// Selection is heap based, O(n log k) instead of O(n log n) for a full sort.
func (dt *DataTable) SortedTopK(indices []uint32, keys []SortKey, limit int) ([]uint32, error) {
	sortableCols := make([]sortableColumn, 0, len(keys))
	for _, k := range keys {
		col, ok := dt.columns[k.Field.Name()]
		if !ok {
			return nil, &fields.SchemaError{Missing: []string{k.Field.Name()}}
		}
		sortableCols = append(sortableCols, sortableColumn{col: col, descending: k.Descending})
	}

	if limit <= 0 || limit > len(indices) {
		limit = len(indices)
	}
	if len(sortableCols) == 0 {
		return append([]uint32(nil), indices[:limit]...), nil
	}

	if limit == len(indices) {
		return sortIndices(append([]uint32(nil), indices...), sortableCols), nil
	}

	h := &topKHeap{
		indices: append(make([]uint32, 0, limit), indices[:limit]...),
		cols:    sortableCols,
	}
	heap.Init(h)

	for _, idx := range indices[limit:] {
		if compareRows(sortableCols, idx, h.peek()) < 0 {
			heap.Pop(h)
			heap.Push(h, idx)
		}
	}

	return sortIndices(h.indices, sortableCols), nil
}

func sortIndices(indices []uint32, cols []sortableColumn) []uint32 {
	sort.Slice(indices, func(i, j int) bool {
		return compareRows(cols, indices[i], indices[j]) < 0
	})
	return indices
}
