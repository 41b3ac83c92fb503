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
	"github.com/google/taxinomia-loans/core/fields"
)

type ColumnDef struct {
	name        string
	displayName string
	kind        fields.Kind
}

// NewColumnDef creates a new ColumnDef with the given name and display name
func NewColumnDef(name, displayName string, kind fields.Kind) *ColumnDef {
	return &ColumnDef{
		name:        name,
		displayName: displayName,
		kind:        kind,
	}
}

// NewFieldColumnDef creates the ColumnDef for a catalogued field.
func NewFieldColumnDef(f fields.Field) *ColumnDef {
	return NewColumnDef(f.Name(), f.DisplayName(), f.Kind())
}

func (cd *ColumnDef) Name() string {
	return cd.name
}

func (cd *ColumnDef) DisplayName() string {
	return cd.displayName
}

func (cd *ColumnDef) Kind() fields.Kind {
	return cd.kind
}

// IDataColumn is the read-only view every column type offers.
type IDataColumn interface {
	ColumnDef() *ColumnDef
	Length() int
	GetString(i uint32) (string, error)
	IsKey() bool
}
