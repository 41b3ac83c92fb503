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
	"fmt"
	"strings"

	"github.com/google/taxinomia-loans/core/fields"
)

// MeasureKind is the reduction applied to a group of records.
type MeasureKind int

const (
	// MeasureCount is the number of records in the group.
	MeasureCount MeasureKind = iota
	// MeasureSum is the arithmetic sum of a numeric field, ignoring missing values.
	MeasureSum
	// MeasureMean is the arithmetic mean of a numeric field over non-missing values.
	MeasureMean
)

// String returns the string representation of the measure kind.
func (k MeasureKind) String() string {
	switch k {
	case MeasureCount:
		return "count"
	case MeasureSum:
		return "sum"
	case MeasureMean:
		return "mean"
	default:
		return "unknown"
	}
}

// Measure declares how a group of records is reduced to a scalar.
type Measure struct {
	Kind  MeasureKind
	Field fields.Field // empty for MeasureCount
}

// Count counts records.
func Count() Measure {
	return Measure{Kind: MeasureCount}
}

// Sum sums a numeric field.
func Sum(f fields.Field) Measure {
	return Measure{Kind: MeasureSum, Field: f}
}

// Mean averages a numeric field.
func Mean(f fields.Field) Measure {
	return Measure{Kind: MeasureMean, Field: f}
}

// Name returns the canonical identifier: "count", "sum:loan_amount", "mean:int_rate".
func (m Measure) Name() string {
	if m.Kind == MeasureCount {
		return "count"
	}
	return m.Kind.String() + ":" + m.Field.Name()
}

// Label returns the dashboard label of the measure.
func (m Measure) Label() string {
	for label, known := range labelled {
		if known == m {
			return label
		}
	}
	switch m.Kind {
	case MeasureCount:
		return "Number of Records"
	case MeasureSum:
		return "Total " + m.Field.DisplayName()
	case MeasureMean:
		return "Avg " + m.Field.DisplayName()
	}
	return m.Name()
}

// Validate checks the measure against the field catalogue: Sum and Mean need
// a known numeric field.
func (m Measure) Validate() error {
	switch m.Kind {
	case MeasureCount:
		return nil
	case MeasureSum, MeasureMean:
		if !fields.Known(m.Field.Name()) {
			return &fields.SchemaError{Missing: []string{m.Field.Name()}, Reason: "unknown field"}
		}
		return fields.RequireKind(m.Field, fields.KindNumeric, m.Kind.String())
	default:
		return &ConfigurationError{Setting: "measure", Value: fmt.Sprintf("kind %d", int(m.Kind))}
	}
}

// Dashboard labels, as offered by the measure selects.
const (
	LabelApplications = "Total Loan Applications"
	LabelFunded       = "Total Funded Amount"
	LabelReceived     = "Total Amount Received"
	LabelInterestRate = "Avg Interest Rate"
	LabelDTI          = "Avg DTI"
)

var labelled = map[string]Measure{
	LabelApplications: Count(),
	LabelFunded:       Sum(fields.LoanAmount),
	LabelReceived:     Sum(fields.TotalPayment),
	LabelInterestRate: Mean(fields.IntRate),
	LabelDTI:          Mean(fields.DTI),
}

// SelectableMeasures returns the measures offered by the dashboard selects, in menu order.
func SelectableMeasures() []Measure {
	return []Measure{Count(), Sum(fields.TotalPayment), Sum(fields.LoanAmount)}
}

// ParseMeasure resolves a canonical identifier or a dashboard label.
// Unknown names are a *ConfigurationError; a known shape naming a bad field
// fails Validate.
func ParseMeasure(name string) (Measure, error) {
	name = strings.TrimSpace(name)
	if m, ok := labelled[name]; ok {
		return m, nil
	}
	if name == "count" {
		return Count(), nil
	}
	kind, field, ok := strings.Cut(name, ":")
	if !ok || field == "" {
		return Measure{}, &ConfigurationError{Setting: "measure", Value: name}
	}
	var m Measure
	switch kind {
	case "sum":
		m = Sum(fields.Field(field))
	case "mean", "avg":
		m = Mean(fields.Field(field))
	default:
		return Measure{}, &ConfigurationError{Setting: "measure", Value: name}
	}
	if err := m.Validate(); err != nil {
		return Measure{}, err
	}
	return m, nil
}

// ConfigurationError reports an unknown measure, sort mode or other request setting.
type ConfigurationError struct {
	Setting string
	Value   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: unknown %s %q", e.Setting, e.Value)
}
