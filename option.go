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
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rulego/indicators/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine.
//
// Example:
//
//	engine := indicators.New(indicators.WithLogger(logger.NewLogger(logger.DEBUG, os.Stderr)))
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.logger = log
	}
}

// WithLogOutput logs to output at level.
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(e *Engine) {
		e.logger = logger.NewLogger(level, output)
	}
}

// WithDiscardLog disables engine logging.
func WithDiscardLog() Option {
	return func(e *Engine) {
		e.logger = logger.NewDiscardLogger()
	}
}

// WithMaxRows limits the number of dataset rows a single evaluation may scan.
// Zero means unlimited.
func WithMaxRows(n int) Option {
	return func(e *Engine) {
		e.maxRows = n
	}
}

// WithTimeout bounds each evaluation. Zero means no timeout beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithCacheSize sets the number of compiled formulas kept in memory.
// Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// WithRegisterer registers the engine metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// WithConcurrency sets how many indicators Compute evaluates at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}
