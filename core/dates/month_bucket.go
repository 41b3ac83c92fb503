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

// Package dates derives calendar buckets from loan issue dates.
//
// Issue dates arrive as DD-MM-YYYY text. A date that cannot be parsed, or
// that names a day the month does not have, is a data-quality problem of a
// single record: it lands in the UnknownBucket instead of failing the load.
package dates

import (
	"strings"
	"time"
)

const (
	// UnknownBucket collects records whose issue date did not parse.
	UnknownBucket = "unknown"

	// IssueDateLayout accepts one- or two-digit day and month.
	IssueDateLayout = "2-1-2006"

	monthBucketLayout = "2006-01"
	gridDateLayout    = "2006-01-02"
)

// ParseIssueDate parses a DD-MM-YYYY issue date.
func ParseIssueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(IssueDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthBucket returns the "YYYY-MM" bucket of an issue date, or UnknownBucket.
func MonthBucket(issueDate string) string {
	t, ok := ParseIssueDate(issueDate)
	if !ok {
		return UnknownBucket
	}
	return t.Format(monthBucketLayout)
}

// MonthLabel returns the abbreviated month name of a bucket ("2021-04" -> "Apr").
// Buckets that are not "YYYY-MM" are returned unchanged.
func MonthLabel(bucket string) string {
	t, err := time.Parse(monthBucketLayout, bucket)
	if err != nil {
		return bucket
	}
	return t.Format("Jan")
}

// GridDate formats an issue date as YYYY-MM-DD for tabular display.
// Unparseable input is shown as-is.
func GridDate(issueDate string) string {
	t, ok := ParseIssueDate(issueDate)
	if !ok {
		return strings.TrimSpace(issueDate)
	}
	return t.Format(gridDateLayout)
}
