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

// Package stats computes the per-column summary statistics attached to
// compute reports.
package stats

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/rulego/indicators/dataset"
)

// ColumnSummary describes the numeric values of one column.
// Fields other than Count are omitted when there are no values; Std needs at
// least two values.
type ColumnSummary struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Sum    *float64 `json:"sum,omitempty"`
	Q1     *float64 `json:"q1,omitempty"`
	Q3     *float64 `json:"q3,omitempty"`
}

// Summarize describes every numeric column of ds, keyed by field name.
func Summarize(ds *dataset.Dataset) map[string]ColumnSummary {
	out := make(map[string]ColumnSummary)
	for _, f := range ds.Schema().Fields() {
		if f.IsNumeric() {
			out[f.Name] = Describe(ds.Numbers(f.Name))
		}
	}
	return out
}

var builtins = []struct {
	name string
	fn   func(stats.Float64Data) (float64, error)
	set  func(*ColumnSummary, *float64)
}{
	{"mean", stats.Mean, func(s *ColumnSummary, v *float64) { s.Mean = v }},
	{"median", stats.Median, func(s *ColumnSummary, v *float64) { s.Median = v }},
	{"min", stats.Min, func(s *ColumnSummary, v *float64) { s.Min = v }},
	{"max", stats.Max, func(s *ColumnSummary, v *float64) { s.Max = v }},
	{"sum", stats.Sum, func(s *ColumnSummary, v *float64) { s.Sum = v }},
}

// Describe summarises values. NaN and infinite values are ignored.
func Describe(values []float64) ColumnSummary {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	s := ColumnSummary{Count: len(data)}
	if len(data) == 0 {
		return s
	}

	for _, b := range builtins {
		if v, err := b.fn(data); err == nil {
			b.set(&s, finite(v))
		}
	}
	if len(data) > 1 {
		if v, err := stats.StandardDeviationSample(data); err == nil {
			s.Std = finite(v)
		}
	}

	sort.Float64s(data)
	s.Q1 = finite(stat.Quantile(0.25, stat.LinInterp, data, nil))
	s.Q3 = finite(stat.Quantile(0.75, stat.LinInterp, data, nil))
	return s
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
