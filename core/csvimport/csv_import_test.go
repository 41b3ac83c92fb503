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

package csvimport

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/taxinomia-loans/core/fields"
)

const header = "id,loan_amount,total_payment,int_rate,dti,loan_status,emp_length,purpose,term,issue_date,home_ownership,grade,sub_grade,installment"

func loansCSV(rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestImportLoanCSV(t *testing.T) {
	csvData := loansCSV(
		"1,10000,11500,0.10,0.12,Fully Paid,10+ years,car, 36 months,11-01-2021,RENT,B,B4,322.7",
		"2,5000,5600,0.12,,Charged Off,1 year,credit_card, 60 months,31-02-2021,OWN,C,C1,166.1",
	)

	table, stats, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	if table.Length() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Length())
	}
	if !table.Sealed() {
		t.Error("expected the table to be sealed")
	}

	// 14 input columns plus the derived month
	names := table.GetColumnNames()
	if len(names) != 15 {
		t.Errorf("expected 15 columns, got %d: %v", len(names), names)
	}
	if names[len(names)-1] != fields.IssueMonth.Name() {
		t.Errorf("expected issue_month last, got %q", names[len(names)-1])
	}

	amounts, err := table.Float64Column(fields.LoanAmount)
	if err != nil {
		t.Fatalf("loan_amount: %v", err)
	}
	if got := amounts.Magnitude(); got != 15000 {
		t.Errorf("expected loan_amount total 15000, got %v", got)
	}

	dti, err := table.Float64Column(fields.DTI)
	if err != nil {
		t.Fatalf("dti: %v", err)
	}
	if v, _ := dti.GetValue(1); !math.IsNaN(v) {
		t.Errorf("expected missing dti to be NaN, got %v", v)
	}

	term, _ := table.StringColumn(fields.Term)
	if v, _ := term.GetValue(0); v != "36 months" {
		t.Errorf("expected trimmed term, got %q", v)
	}

	months, _ := table.StringColumn(fields.IssueMonth)
	if v, _ := months.GetValue(0); v != "2021-01" {
		t.Errorf("expected month 2021-01, got %q", v)
	}
	if v, _ := months.GetValue(1); v != "unknown" {
		t.Errorf("expected impossible date in unknown bucket, got %q", v)
	}

	if stats.Rows != 2 || stats.UnknownMonths != 1 || stats.MissingNumeric["dti"] != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.DuplicateIDs {
		t.Error("ids are unique")
	}
}

func TestImportMissingRequiredColumns(t *testing.T) {
	csvData := "id,loan_amount,loan_status\n1,100,Current\n"

	_, _, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	var schemaErr *fields.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 11 {
		t.Errorf("expected 11 missing columns, got %v", schemaErr.Missing)
	}
	if schemaErr.Missing[0] != "total_payment" {
		t.Errorf("expected missing columns in catalogue order, got %v", schemaErr.Missing)
	}
}

func TestImportWithRelaxedRequirements(t *testing.T) {
	csvData := "loan_status,loan_amount,branch\nCurrent,100,north\nFully Paid,oops,south\n"
	options := ImportOptions{RequiredFields: []fields.Field{fields.LoanStatus}}

	table, stats, err := ImportFromReader(strings.NewReader(csvData), options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	if table.HasColumn(fields.IssueMonth) {
		t.Error("no issue_month without issue_date")
	}
	if !reflect.DeepEqual(stats.ExtraColumns, []string{"branch"}) {
		t.Errorf("expected branch as extra column, got %v", stats.ExtraColumns)
	}
	if stats.MissingNumeric["loan_amount"] != 1 {
		t.Errorf("expected one unparseable amount, got %v", stats.MissingNumeric)
	}
	if table.GetColumn("branch") == nil {
		t.Error("extra columns are kept")
	}
}

func TestImportWithDelimiter(t *testing.T) {
	csvData := "loan_status;loan_amount\nCurrent;1,000.50\n"
	options := ImportOptions{Delimiter: ';', RequiredFields: []fields.Field{fields.LoanStatus, fields.LoanAmount}}

	table, _, err := ImportFromReader(strings.NewReader(csvData), options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	amounts, _ := table.Float64Column(fields.LoanAmount)
	if v, _ := amounts.GetValue(0); v != 1000.5 {
		t.Errorf("expected 1000.5, got %v", v)
	}
}

func TestImportDerivedColumnIsRecomputed(t *testing.T) {
	csvData := "loan_status,issue_date,issue_month\nCurrent,05-06-2022,1999-01\n"
	options := ImportOptions{RequiredFields: []fields.Field{fields.LoanStatus}}

	table, _, err := ImportFromReader(strings.NewReader(csvData), options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	months, _ := table.StringColumn(fields.IssueMonth)
	if v, _ := months.GetValue(0); v != "2022-06" {
		t.Errorf("expected recomputed month 2022-06, got %q", v)
	}
}

func TestImportByteOrderMark(t *testing.T) {
	csvData := "\ufeffloan_status\nCurrent\n"
	options := ImportOptions{RequiredFields: []fields.Field{fields.LoanStatus}}

	if _, _, err := ImportFromReader(strings.NewReader(csvData), options); err != nil {
		t.Fatalf("expected BOM to be ignored, got %v", err)
	}
}

func TestImportDuplicateIDs(t *testing.T) {
	csvData := loansCSV(
		"7,1,1,0.1,0.1,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,1",
		"7,1,1,0.1,0.1,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,1",
	)
	_, stats, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	if !stats.DuplicateIDs {
		t.Error("expected duplicate ids to be reported")
	}
	warnings := strings.Join(stats.Warnings(), "\n")
	if !strings.Contains(warnings, "not unique") {
		t.Errorf("expected duplicate warning, got %q", warnings)
	}
}

func TestImportRejectsOverflowingColumn(t *testing.T) {
	csvData := loansCSV(
		"1,1e308,90,0.1,0.2,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,10",
		"2,1e308,90,0.1,0.2,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,10",
	)
	_, _, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), `"loan_amount"`) {
		t.Fatalf("expected loan_amount to be rejected, got %v", err)
	}

	csvData = loansCSV(
		"1,1e307,90,0.1,0.2,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,10",
		"2,-1e307,90,0.1,0.2,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,10",
	)
	if _, _, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions()); err != nil {
		t.Fatalf("expected large finite values to load, got %v", err)
	}
}

func TestImportEmptyCSV(t *testing.T) {
	_, _, err := ImportFromReader(strings.NewReader(""), DefaultOptions())
	if err == nil {
		t.Error("expected error for empty CSV")
	}
}

func TestImportHeaderOnly(t *testing.T) {
	_, _, err := ImportFromReader(strings.NewReader(header+"\n"), DefaultOptions())
	if err == nil {
		t.Error("expected error for header-only CSV")
	}
}

func TestImportFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loans.csv")
	csvData := loansCSV("1,100,90,0.1,0.2,Current,1 year,car,36 months,01-01-2021,RENT,A,A1,10")
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}

	table, _, err := ImportFromFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import file: %v", err)
	}
	if table.Length() != 1 {
		t.Errorf("expected 1 row, got %d", table.Length())
	}

	if _, _, err := ImportFromFile(filepath.Join(t.TempDir(), "absent.csv"), DefaultOptions()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadStatsWarnings(t *testing.T) {
	stats := &LoadStats{
		MissingNumeric: map[string]int{"dti": 2, "int_rate": 1},
		UnknownMonths:  3,
	}
	want := []string{
		"2 dti values missing or not numeric",
		"1 int_rate values missing or not numeric",
		`3 issue dates could not be parsed and are reported as "unknown"`,
	}
	if got := stats.Warnings(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}
