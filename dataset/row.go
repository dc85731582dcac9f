/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dataset

import (
	"sort"

	"github.com/rulego/indicators/utils/cast"
)

// Row maps a schema field name to a cell value: float64, string or nil.
type Row map[string]any

// Get returns the value stored under the exact field name.
func (r Row) Get(name string) any {
	return r[name]
}

// Dataset is a read-only ordered set of rows sharing one schema.
// Every row carries every schema field, nil when the answer is missing.
type Dataset struct {
	schema *Schema
	rows   []Row
}

// New normalises raw records against schema.
// Source keys match schema names exactly first and case-insensitively second.
// Numeric cells are stored as float64; values that cannot be parsed are kept
// as text so COUNT still sees them while numeric aggregations skip them.
func New(schema *Schema, records []map[string]any) *Dataset {
	if schema == nil {
		schema = NewSchema()
	}
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = normalizeRow(schema, rec)
	}
	return &Dataset{schema: schema, rows: rows}
}

// FromRecords infers the schema from the records and builds a dataset.
// Columns are the union of record keys in lexical order.
func FromRecords(records []map[string]any, threshold float64) *Dataset {
	return New(InferSchema(Columns(records), records, threshold), records)
}

// Columns returns the union of keys across records, sorted.
func Columns(records []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func normalizeRow(schema *Schema, rec map[string]any) Row {
	var folded map[string]any
	row := make(Row, len(schema.fields))
	for _, f := range schema.fields {
		v, ok := rec[f.Name]
		if !ok {
			if folded == nil {
				folded = make(map[string]any, len(rec))
				for k, val := range rec {
					folded[NormalizeName(k)] = val
				}
			}
			v = folded[NormalizeName(f.Name)]
		}
		row[f.Name] = normalizeValue(f.Kind, v)
	}
	return row
}

func normalizeValue(kind Kind, v any) any {
	if v == nil {
		return nil
	}
	if kind == KindNumeric {
		if cast.IsBlank(v) {
			return nil
		}
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
		return cast.ToString(v)
	}
	if s, ok := v.(string); ok {
		return s
	}
	return cast.ToString(v)
}

// Schema returns the dataset schema.
func (d *Dataset) Schema() *Schema {
	if d == nil {
		return nil
	}
	return d.schema
}

// Rows returns the rows. Callers must not modify them.
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	return d.rows
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Records returns the rows as plain maps, for storage and transport.
func (d *Dataset) Records() []map[string]any {
	out := make([]map[string]any, d.Len())
	for i, r := range d.Rows() {
		out[i] = map[string]any(r)
	}
	return out
}

// IsNull reports whether a cell counts as a missing answer: nil or blank text.
func IsNull(v any) bool {
	return cast.IsBlank(v)
}

// Numbers collects the numeric values of a column, skipping nulls and text.
func (d *Dataset) Numbers(name string) []float64 {
	var out []float64
	for _, r := range d.Rows() {
		if f, ok := r[name].(float64); ok {
			out = append(out, f)
		}
	}
	return out
}
