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
	"net/url"
	"strconv"
	"strings"

	"github.com/google/safehtml"
)

// SortBy selects what a summary is ordered by.
type SortBy int

const (
	// SortByValue orders rows by the scalar of the sort measure.
	SortByValue SortBy = iota
	// SortByGroup orders rows by group value (chronological for month buckets).
	SortByGroup
)

// String returns the URL form of the sort mode.
func (s SortBy) String() string {
	if s == SortByGroup {
		return "group"
	}
	return "value"
}

// Request is a fully resolved aggregation request.
type Request struct {
	GroupKey    string
	Measures    []Measure
	SortBy      SortBy
	SortMeasure int // index into Measures
	Descending  bool
	Limit       int // 0 = all groups
}

// SummaryQuery represents the parsed state of a summary URL. Values are kept
// raw; Resolve validates them.
type SummaryQuery struct {
	// Base path (e.g., "/api/summary")
	Path string

	Group       string
	Measures    []string
	Sort        string
	SortMeasure string
	Order       string
	Limit       string
}

// NewSummaryQuery creates a SummaryQuery from a URL
func NewSummaryQuery(u *url.URL) *SummaryQuery {
	q := u.Query()
	state := &SummaryQuery{
		Path:        u.Path,
		Group:       strings.TrimSpace(q.Get("group")),
		Sort:        strings.TrimSpace(q.Get("sort")),
		SortMeasure: strings.TrimSpace(q.Get("sort_measure")),
		Order:       strings.TrimSpace(q.Get("order")),
		Limit:       strings.TrimSpace(q.Get("limit")),
	}

	// measure may repeat or carry a comma separated list
	for _, v := range q["measure"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				state.Measures = append(state.Measures, part)
			}
		}
	}
	return state
}

// Resolve turns the raw query into a Request. Unknown measures, sort modes,
// orders or limits fail with a *ConfigurationError. The group key is checked
// by the engine, which knows the dataset.
func (s *SummaryQuery) Resolve() (Request, error) {
	req := Request{GroupKey: s.Group}

	if len(s.Measures) == 0 {
		req.Measures = []Measure{Count()}
	}
	for _, name := range s.Measures {
		m, err := ParseMeasure(name)
		if err != nil {
			return Request{}, err
		}
		req.Measures = append(req.Measures, m)
	}

	switch s.Sort {
	case "", "value":
		req.SortBy = SortByValue
	case "group":
		req.SortBy = SortByGroup
	default:
		return Request{}, &ConfigurationError{Setting: "sort", Value: s.Sort}
	}

	switch s.Order {
	case "", "asc":
	case "desc":
		req.Descending = true
	default:
		return Request{}, &ConfigurationError{Setting: "order", Value: s.Order}
	}

	if s.SortMeasure != "" {
		idx, err := s.sortMeasureIndex(req.Measures)
		if err != nil {
			return Request{}, err
		}
		req.SortMeasure = idx
	}

	if s.Limit != "" {
		limit, err := strconv.Atoi(s.Limit)
		if err != nil || limit < 0 {
			return Request{}, &ConfigurationError{Setting: "limit", Value: s.Limit}
		}
		req.Limit = limit
	}

	return req, nil
}

// sortMeasureIndex accepts either an index or a measure name.
func (s *SummaryQuery) sortMeasureIndex(measures []Measure) (int, error) {
	if idx, err := strconv.Atoi(s.SortMeasure); err == nil {
		if idx < 0 || idx >= len(measures) {
			return 0, &ConfigurationError{Setting: "sort_measure", Value: s.SortMeasure}
		}
		return idx, nil
	}
	m, err := ParseMeasure(s.SortMeasure)
	if err != nil {
		return 0, err
	}
	for i, candidate := range measures {
		if candidate == m {
			return i, nil
		}
	}
	return 0, &ConfigurationError{Setting: "sort_measure", Value: s.SortMeasure}
}

// URL encodes the query back into a relative URL.
func (s *SummaryQuery) URL() *url.URL {
	q := url.Values{}
	if s.Group != "" {
		q.Set("group", s.Group)
	}
	for _, m := range s.Measures {
		q.Add("measure", m)
	}
	if s.Sort != "" {
		q.Set("sort", s.Sort)
	}
	if s.SortMeasure != "" {
		q.Set("sort_measure", s.SortMeasure)
	}
	if s.Order != "" {
		q.Set("order", s.Order)
	}
	if s.Limit != "" {
		q.Set("limit", s.Limit)
	}
	return &url.URL{Path: s.Path, RawQuery: q.Encode()}
}

// ToSafeURL converts the query to a safehtml.URL
func (s *SummaryQuery) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.URL().String())
}
