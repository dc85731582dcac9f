/*
 * Copyright 2025 The RuleGo Authors.
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

// Package table renders row maps as aligned text tables.
package table

import (
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/rulego/indicators/utils/cast"
)

// Columns orders the union of keys in data. Keys listed in fieldOrder come
// first in that order; the rest follow alphabetically.
func Columns(data []map[string]any, fieldOrder []string) []string {
	set := make(map[string]bool)
	for _, row := range data {
		for col := range row {
			set[col] = true
		}
	}
	columns := make([]string, 0, len(set))
	for _, field := range fieldOrder {
		if set[field] {
			columns = append(columns, field)
			delete(set, field)
		}
	}
	rest := make([]string, 0, len(set))
	for col := range set {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

// PrintTableFromSlice writes data to w as a bordered table.
// Nothing is written for empty data.
func PrintTableFromSlice(w io.Writer, data []map[string]any, fieldOrder []string) {
	if len(data) == 0 {
		return
	}
	columns := Columns(data, fieldOrder)

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for _, row := range data {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok && v != nil {
				cells[i] = cast.ToString(v)
			}
		}
		tw.Append(cells)
	}
	tw.Render()
}
