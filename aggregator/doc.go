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

/*
Package aggregator provides the incremental aggregation functions available
inside indicator formulas.

Each function is created empty, fed one value per row with Add, and asked for
its Result once the scan is over. Results are always finite float64 values or
an error; a function never panics on unexpected input.

# Built-in Functions

	COUNT(field)       rows where field is not null
	SUM(field)         sum of numeric values, 0 when there are none
	AVG(field)         arithmetic mean, error on empty input
	MIN(field)         smallest value, error on empty input
	MAX(field)         largest value, error on empty input
	PERCENTAGE(field)  COUNT(field) / total rows * 100

SUM and AVG accumulate in decimal so that 0.1 + 0.2 sums to exactly 0.3.

# Registry

Names are case-insensitive and stored upper-case. The tokenizer asks the
registry for the keyword list, so a registered function is immediately usable
in formulas:

	aggregator.Register(aggregator.Descriptor{
		Name:    "DISTINCT",
		Numeric: false,
		New:     func() aggregator.AggregatorFunction { return &distinct{} },
	})
*/
package aggregator
