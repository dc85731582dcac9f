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

package indicators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
	"github.com/rulego/indicators/formula"
	"github.com/rulego/indicators/logger"
	"github.com/rulego/indicators/stats"
)

const (
	DefaultCacheSize   = 512
	DefaultConcurrency = 4
)

// Engine validates and evaluates indicator formulas.
// An Engine is safe for concurrent use.
//
// Example:
//
//	engine := indicators.New(indicators.WithMaxRows(1_000_000))
//	res := engine.Preview(ctx, "(COUNT(Vaccinated) / COUNT(Total Population)) * 100", ds, nil)
//	if res.OK() {
//		fmt.Println(res.Value)
//	}
type Engine struct {
	logger      logger.Logger
	maxRows     int
	timeout     time.Duration
	cacheSize   int
	concurrency int
	registerer  prometheus.Registerer

	cache   *formulaCache
	metrics *metrics
}

// New creates an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		cacheSize:   DefaultCacheSize,
		concurrency: DefaultConcurrency,
	}
	for _, option := range options {
		option(e)
	}
	if e.logger == nil {
		e.logger = logger.GetDefault()
	}
	e.logger = e.logger.With("component", "engine")
	e.metrics = newMetrics(e.registerer)
	e.cache = newFormulaCache(e.cacheSize, e.metrics)
	return e
}

// Compile parses a formula, reusing a cached tree when available.
func (e *Engine) Compile(src string) (*formula.Expression, error) {
	return e.cache.compile(src)
}

// PurgeCache drops every cached formula.
func (e *Engine) PurgeCache() {
	e.cache.purge()
}

// Validate checks a formula without evaluating it. With a nil schema only the
// syntax and structure are checked.
func (e *Engine) Validate(src string, schema *dataset.Schema) ValidationResult {
	start := time.Now()
	res := e.validate(src, schema)
	status := statusSuccess
	if !res.Valid {
		status = statusError
		e.logger.Debug("formula %q rejected: %v", src, res.Details)
	}
	e.observe(operationValidate, status, start)
	return res
}

func (e *Engine) validate(src string, schema *dataset.Schema) ValidationResult {
	expr, err := e.Compile(src)
	if err == nil {
		err = expr.Check(schema)
	}
	if err != nil {
		fe, ok := formula.AsError(err)
		if !ok {
			fe = &formula.Error{Stage: formula.StageParse, Message: err.Error(), Position: formula.NoPosition}
		}
		return ValidationResult{Valid: false, Message: fe.Message, Error: fe.Message, Details: fe}
	}
	if schema == nil {
		return ValidationResult{Valid: true, Message: "Formula is valid"}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Formula is valid: references %d of %d survey fields", referencedFields(expr, schema), schema.Len()),
	}
}

// referencedFields counts the distinct schema fields expr refers to.
func referencedFields(expr *formula.Expression, schema *dataset.Schema) int {
	seen := make(map[string]struct{})
	for _, name := range expr.Fields() {
		if f, err := schema.Resolve(name); err == nil {
			seen[f.Name] = struct{}{}
		}
	}
	return len(seen)
}

// Preview evaluates a formula over ds after applying criteria.
func (e *Engine) Preview(ctx context.Context, src string, ds *dataset.Dataset, criteria condition.Criteria) PreviewResult {
	start := time.Now()
	res := e.evaluate(ctx, src, ds, criteria)
	e.observe(operationPreview, res.Status, start)
	return res
}

func (e *Engine) evaluate(ctx context.Context, src string, ds *dataset.Dataset, criteria condition.Criteria) PreviewResult {
	expr, err := e.Compile(src)
	if err != nil {
		return errorResult(err)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	res, err := expr.Evaluate(ctx, ds, criteria, formula.WithMaxRows(e.maxRows))
	if err != nil {
		return errorResult(err)
	}
	return successResult(res)
}

// Compute evaluates every indicator over ds concurrently. A failing indicator
// is reported in its result entry and never stops the others.
// Results are returned in the order of specs.
func (e *Engine) Compute(ctx context.Context, ds *dataset.Dataset, specs []IndicatorSpec) ComputeReport {
	report := ComputeReport{
		RunID:      uuid.NewString(),
		ComputedAt: time.Now().UTC(),
		TotalRows:  ds.Len(),
		Results:    make([]IndicatorResult, len(specs)),
	}
	log := e.logger.With("run_id", report.RunID)
	log.Info("computing %d indicators over %d rows", len(specs), report.TotalRows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			start := time.Now()
			res := e.evaluate(gctx, spec.Formula, ds, spec.Filter)
			e.observe(operationCompute, res.Status, start)
			if !res.OK() {
				log.Warn("indicator %d (%s) failed: %s", spec.ID, spec.Name, res.Error)
			}
			report.Results[i] = IndicatorResult{IndicatorID: spec.ID, IndicatorName: spec.Name, PreviewResult: res}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Results {
		if r.OK() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	report.SummaryStatistics = stats.Summarize(ds)
	log.Info("computed %d indicators: %d succeeded, %d failed", len(specs), report.Succeeded, report.Failed)
	return report
}

func (e *Engine) observe(operation, status string, start time.Time) {
	e.metrics.evaluations.WithLabelValues(operation, status).Inc()
	e.metrics.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
