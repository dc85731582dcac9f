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

package aggregator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rulego/indicators/utils/cast"
)

// AggregateType is the upper-case name of an aggregation function.
type AggregateType string

const (
	Count      AggregateType = "COUNT"
	Sum        AggregateType = "SUM"
	Avg        AggregateType = "AVG"
	Min        AggregateType = "MIN"
	Max        AggregateType = "MAX"
	Percentage AggregateType = "PERCENTAGE"
)

// ErrEmpty is returned by functions that have no meaningful value without input.
var ErrEmpty = errors.New("empty aggregation")

// Context carries dataset-level facts some functions need at Result time.
type Context struct {
	// TotalRows is the size of the full dataset, before filtering.
	TotalRows int
}

// AggregatorFunction accumulates row values into a single number.
// Add receives the cell value (float64, string or nil) or the per-row result
// of an argument expression. Null values are ignored by every function.
type AggregatorFunction interface {
	New() AggregatorFunction
	Add(value any)
	Result(ctx Context) (float64, error)
}

func isNull(v any) bool {
	return cast.IsBlank(v)
}

// number extracts a numeric cell. Text left in numeric columns is skipped.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case nil, string, bool:
		return 0, false
	default:
		f, err := cast.ToFloat64E(n)
		return f, err == nil
	}
}

type CountAggregator struct {
	count int
}

func (c *CountAggregator) New() AggregatorFunction {
	return &CountAggregator{}
}

func (c *CountAggregator) Add(v any) {
	if !isNull(v) {
		c.count++
	}
}

func (c *CountAggregator) Result(Context) (float64, error) {
	return float64(c.count), nil
}

type SumAggregator struct {
	sum decimal.Decimal
}

func (s *SumAggregator) New() AggregatorFunction {
	return &SumAggregator{}
}

func (s *SumAggregator) Add(v any) {
	if f, ok := number(v); ok {
		s.sum = s.sum.Add(decimal.NewFromFloat(f))
	}
}

func (s *SumAggregator) Result(Context) (float64, error) {
	return s.sum.InexactFloat64(), nil
}

type AvgAggregator struct {
	sum   decimal.Decimal
	count int64
}

func (a *AvgAggregator) New() AggregatorFunction {
	return &AvgAggregator{}
}

func (a *AvgAggregator) Add(v any) {
	if f, ok := number(v); ok {
		a.sum = a.sum.Add(decimal.NewFromFloat(f))
		a.count++
	}
}

func (a *AvgAggregator) Result(Context) (float64, error) {
	if a.count == 0 {
		return 0, ErrEmpty
	}
	return a.sum.Div(decimal.NewFromInt(a.count)).InexactFloat64(), nil
}

type MinAggregator struct {
	value float64
	seen  bool
}

func (m *MinAggregator) New() AggregatorFunction {
	return &MinAggregator{}
}

func (m *MinAggregator) Add(v any) {
	if f, ok := number(v); ok && (!m.seen || f < m.value) {
		m.value = f
		m.seen = true
	}
}

func (m *MinAggregator) Result(Context) (float64, error) {
	if !m.seen {
		return 0, ErrEmpty
	}
	return m.value, nil
}

type MaxAggregator struct {
	value float64
	seen  bool
}

func (m *MaxAggregator) New() AggregatorFunction {
	return &MaxAggregator{}
}

func (m *MaxAggregator) Add(v any) {
	if f, ok := number(v); ok && (!m.seen || f > m.value) {
		m.value = f
		m.seen = true
	}
}

func (m *MaxAggregator) Result(Context) (float64, error) {
	if !m.seen {
		return 0, ErrEmpty
	}
	return m.value, nil
}

// PercentageAggregator counts non-null values as a share of all dataset rows.
type PercentageAggregator struct {
	CountAggregator
}

func (p *PercentageAggregator) New() AggregatorFunction {
	return &PercentageAggregator{}
}

func (p *PercentageAggregator) Result(ctx Context) (float64, error) {
	if ctx.TotalRows <= 0 {
		return 0, ErrEmpty
	}
	return float64(p.count) / float64(ctx.TotalRows) * 100, nil
}
