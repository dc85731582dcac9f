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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	operationValidate = "validate"
	operationPreview  = "preview"
	operationCompute  = "compute"

	statusSuccess = "success"
	statusError   = "error"
)

type metrics struct {
	evaluations   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheRequests *prometheus.CounterVec
}

// newMetrics creates the engine collectors. A nil registerer leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		evaluations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "indicators",
			Name:      "evaluations_total",
			Help:      "Total number of formula validations and evaluations by outcome.",
		}, []string{"operation", "status"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "indicators",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent validating or evaluating formulas.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		cacheRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "indicators",
			Name:      "formula_cache_requests_total",
			Help:      "Compiled formula cache lookups by result.",
		}, []string{"result"}),
	}
}
