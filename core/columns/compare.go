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
	"math"
	"strings"
)

// CompareAtIndex compares values at indices i and j for the given column.
// Returns -1 if value[i] < value[j], 0 if equal, 1 if value[i] > value[j].
// Missing values (empty strings, NaN) order after every other value.
// Out of range indices compare as equal.
func CompareAtIndex(col IDataColumn, i, j uint32) int {
	if int(i) >= col.Length() || int(j) >= col.Length() {
		return 0
	}
	switch c := col.(type) {
	case *StringColumn:
		a, b := c.data[i], c.data[j]
		if a == "" || b == "" {
			return compareMissing(a == "", b == "")
		}
		return strings.Compare(a, b)
	case *Float64Column:
		return CompareFloat64s(c.data[i], c.data[j])
	}
	return 0
}

// MissingAt reports whether the value at i is missing.
func MissingAt(col IDataColumn, i uint32) bool {
	if int(i) >= col.Length() {
		return false
	}
	switch c := col.(type) {
	case *StringColumn:
		return c.data[i] == ""
	case *Float64Column:
		return math.IsNaN(c.data[i])
	}
	return false
}

func compareMissing(aMissing, bMissing bool) int {
	switch {
	case aMissing == bMissing:
		return 0
	case aMissing:
		return 1
	default:
		return -1
	}
}

// CompareFloat64s orders numbers ascending with NaN after every other value.
func CompareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
