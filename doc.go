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
Package indicators evaluates monitoring and evaluation indicators over survey
data.

An indicator is a formula such as

	(COUNT(Vaccinated) / COUNT(Total Population)) * 100

evaluated against a dataset of survey responses, optionally restricted by
filter criteria. The Engine offers the three operations a formula builder needs:

	Validate  check syntax and, given a schema, field names and kinds
	Preview   evaluate one formula and report the value or a positioned error
	Compute   evaluate a batch of indicators concurrently

# Getting Started

	ds := dataset.FromRecords(records, dataset.DefaultNumericThreshold)
	engine := indicators.New()

	v := engine.Validate("SUM(Amount) / COUNT(Amount)", ds.Schema())
	if !v.Valid {
		fmt.Println(v.Details.Pretty("SUM(Amount) / COUNT(Amount)"))
	}

	res := engine.Preview(ctx, "SUM(Amount)", ds, condition.Criteria{"District": "North"})
	fmt.Println(res.Status, res.Value, res.RowsProcessed, res.TotalRows)

Formula errors are returned as data: Preview and Compute never fail as a
whole because of a bad formula, they report it in the result.

# Configuration

	engine := indicators.New(
		indicators.WithLogger(logger.NewLogger(logger.DEBUG, os.Stderr)),
		indicators.WithMaxRows(500000),
		indicators.WithTimeout(5*time.Second),
		indicators.WithCacheSize(1024),
		indicators.WithConcurrency(8),
		indicators.WithRegisterer(prometheus.DefaultRegisterer),
	)

Compiled formulas are cached by source text. The engine exports Prometheus
counters and histograms for validations, evaluations and cache lookups.
*/
package indicators
