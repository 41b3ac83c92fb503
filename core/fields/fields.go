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

// Package fields is the closed catalogue of loan record attributes.
// Every column name used by the loader, the aggregation engine and the
// dashboard is resolved through Lookup, so a misspelled name fails once with a
// SchemaError instead of silently producing an empty column.
package fields

import (
	"sort"
)

// Kind classifies how a field may be used.
type Kind int

const (
	// KindIdentifier is a per-record identifier. It can be counted but not grouped or summed.
	KindIdentifier Kind = iota
	// KindCategorical is a grouping attribute.
	KindCategorical
	// KindNumeric can be summed or averaged.
	KindNumeric
	// KindDate is a raw date string.
	KindDate
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Field is one known loan attribute.
type Field string

const (
	ID            Field = "id"
	LoanAmount    Field = "loan_amount"
	TotalPayment  Field = "total_payment"
	IntRate       Field = "int_rate"
	DTI           Field = "dti"
	LoanStatus    Field = "loan_status"
	EmpLength     Field = "emp_length"
	Purpose       Field = "purpose"
	Term          Field = "term"
	IssueDate     Field = "issue_date"
	HomeOwnership Field = "home_ownership"
	Grade         Field = "grade"
	SubGrade      Field = "sub_grade"
	Installment   Field = "installment"

	// IssueMonth is derived from IssueDate at load time ("YYYY-MM" or "unknown").
	IssueMonth Field = "issue_month"
)

type fieldInfo struct {
	kind        Kind
	displayName string
	derived     bool
}

var catalogue = map[Field]fieldInfo{
	ID:            {KindIdentifier, "Loan ID", false},
	LoanAmount:    {KindNumeric, "Loan Amount", false},
	TotalPayment:  {KindNumeric, "Total Payment", false},
	IntRate:       {KindNumeric, "Interest Rate", false},
	DTI:           {KindNumeric, "DTI", false},
	LoanStatus:    {KindCategorical, "Loan Status", false},
	EmpLength:     {KindCategorical, "Length of Service", false},
	Purpose:       {KindCategorical, "Loan Purpose", false},
	Term:          {KindCategorical, "Term", false},
	IssueDate:     {KindDate, "Issue Date", false},
	HomeOwnership: {KindCategorical, "Home Ownership", false},
	Grade:         {KindCategorical, "Loan Grade", false},
	SubGrade:      {KindCategorical, "Sub Grade", false},
	Installment:   {KindNumeric, "Installment Amount", false},
	IssueMonth:    {KindCategorical, "Month", true},
}

// Required lists the columns an input file must carry, in file order.
var Required = []Field{
	ID, LoanAmount, TotalPayment, IntRate, DTI, LoanStatus, EmpLength,
	Purpose, Term, IssueDate, HomeOwnership, Grade, SubGrade, Installment,
}

// Lookup resolves a column name to a known field.
func Lookup(name string) (Field, error) {
	f := Field(name)
	if _, ok := catalogue[f]; !ok {
		return "", &SchemaError{Missing: []string{name}, Reason: "unknown field"}
	}
	return f, nil
}

// Known reports whether name is in the catalogue.
func Known(name string) bool {
	_, ok := catalogue[Field(name)]
	return ok
}

// Name returns the column name.
func (f Field) Name() string {
	return string(f)
}

// Kind returns the field kind. Unknown fields report KindIdentifier.
func (f Field) Kind() Kind {
	return catalogue[f].kind
}

// DisplayName returns the label used in tables and chart axes.
func (f Field) DisplayName() string {
	if info, ok := catalogue[f]; ok {
		return info.displayName
	}
	return string(f)
}

// Derived reports whether the field is computed at load time rather than read.
func (f Field) Derived() bool {
	return catalogue[f].derived
}

// IsNumeric reports whether the field can be summed or averaged.
func (f Field) IsNumeric() bool {
	return f.Kind() == KindNumeric
}

// IsGroupable reports whether the field can be used as a grouping key.
func (f Field) IsGroupable() bool {
	return f.Kind() == KindCategorical
}

// All returns every known field sorted by name.
func All() []Field {
	result := make([]Field, 0, len(catalogue))
	for f := range catalogue {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Groupable returns the fields usable as grouping keys, sorted by name.
func Groupable() []Field {
	var result []Field
	for _, f := range All() {
		if f.IsGroupable() {
			result = append(result, f)
		}
	}
	return result
}
