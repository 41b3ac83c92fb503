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

// Package fixtures builds small loan datasets for tests.
package fixtures

import (
	"strings"
	"testing"

	"github.com/google/taxinomia-loans/core/csvimport"
	"github.com/google/taxinomia-loans/core/fields"
	"github.com/google/taxinomia-loans/core/tables"
)

// Loan is one CSV row. Numeric values are kept as text so tests can feed
// empty or malformed cells.
type Loan struct {
	ID            string
	LoanAmount    string
	TotalPayment  string
	IntRate       string
	DTI           string
	LoanStatus    string
	EmpLength     string
	Purpose       string
	Term          string
	IssueDate     string
	HomeOwnership string
	Grade         string
	SubGrade      string
	Installment   string
}

func (l Loan) cells() []string {
	return []string{
		l.ID, l.LoanAmount, l.TotalPayment, l.IntRate, l.DTI, l.LoanStatus,
		l.EmpLength, l.Purpose, l.Term, l.IssueDate, l.HomeOwnership,
		l.Grade, l.SubGrade, l.Installment,
	}
}

// CSV renders loans with the full required header.
func CSV(loans ...Loan) string {
	var sb strings.Builder
	header := make([]string, len(fields.Required))
	for i, f := range fields.Required {
		header[i] = f.Name()
	}
	sb.WriteString(strings.Join(header, ","))
	sb.WriteString("\n")
	for _, l := range loans {
		sb.WriteString(strings.Join(l.cells(), ","))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Load imports loans into a sealed table and fails the test on error.
func Load(t testing.TB, loans ...Loan) *tables.DataTable {
	t.Helper()
	table, _, err := csvimport.ImportFromReader(strings.NewReader(CSV(loans...)), csvimport.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return table
}

// Portfolio is a ten-loan dataset covering every status, both terms,
// a missing employment length and one impossible issue date.
func Portfolio() []Loan {
	return []Loan{
		{"1", "10000", "11500", "0.10", "0.12", "Fully Paid", "10+ years", "car", " 36 months", "11-01-2021", "RENT", "B", "B4", "322.7"},
		{"2", "5000", "5600", "0.12", "0.20", "Fully Paid", "1 year", "debt_consolidation", " 36 months", "15-01-2021", "MORTGAGE", "B", "B2", "166.1"},
		{"3", "20000", "8000", "0.18", "0.25", "Charged Off", "10+ years", "debt_consolidation", " 60 months", "03-02-2021", "RENT", "D", "D1", "508.2"},
		{"4", "15000", "9000", "0.14", "0.10", "Current", "3 years", "home_improvement", " 60 months", "20-02-2021", "OWN", "C", "C3", "349.0"},
		{"5", "8000", "9100", "0.08", "0.05", "Fully Paid", "< 1 year", "credit_card", " 36 months", "02-03-2021", "RENT", "A", "A5", "250.7"},
		{"6", "12000", "3000", "0.20", "0.28", "Charged Off", "5 years", "small_business", " 60 months", "09-03-2021", "RENT", "E", "E2", "319.2"},
		{"7", "7000", "7900", "0.11", "0.15", "Fully Paid", "", "car", " 36 months", "25-03-2021", "MORTGAGE", "B", "B1", "229.1"},
		{"8", "25000", "27500", "0.09", "", "Fully Paid", "10+ years", "debt_consolidation", " 36 months", "04-04-2021", "MORTGAGE", "A", "A4", "794.6"},
		{"9", "3000", "1200", "0.16", "0.22", "Current", "2 years", "credit_card", " 36 months", "31-02-2021", "RENT", "C", "C5", "105.5"},
		{"10", "9000", "10100", "0.13", "0.18", "Fully Paid", "1 year", "debt_consolidation", " 36 months", "18-04-2021", "RENT", "B", "B5", "303.2"},
	}
}
