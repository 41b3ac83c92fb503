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

package fields

import (
	"fmt"
	"strings"
)

// SchemaError reports columns that are unknown or absent from a dataset.
type SchemaError struct {
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing column"
	}
	return fmt.Sprintf("schema error: %s: %s", reason, strings.Join(e.Missing, ", "))
}

// TypeMismatchError reports a field used in a way its kind does not allow,
// e.g. summing a categorical column or grouping by a numeric one.
type TypeMismatchError struct {
	Field     Field
	Operation string
	Want      Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s requires a %s field, %q is %s",
		e.Operation, e.Want, e.Field, e.Field.Kind())
}

// RequireKind returns a TypeMismatchError unless f has the wanted kind.
func RequireKind(f Field, want Kind, operation string) error {
	if f.Kind() != want {
		return &TypeMismatchError{Field: f, Operation: operation, Want: want}
	}
	return nil
}
