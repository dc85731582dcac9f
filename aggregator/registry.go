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
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Descriptor registers an aggregation function under a formula keyword.
type Descriptor struct {
	Name AggregateType
	// Numeric functions require every field they reference to be numeric.
	// Non-numeric functions accept any field kind when given a bare field.
	Numeric bool
	New     func() AggregatorFunction
}

var (
	aggregatorRegistry = make(map[AggregateType]Descriptor)
	registryMutex      sync.RWMutex
)

func init() {
	for _, d := range []Descriptor{
		{Name: Count, New: func() AggregatorFunction { return &CountAggregator{} }},
		{Name: Sum, Numeric: true, New: func() AggregatorFunction { return &SumAggregator{} }},
		{Name: Avg, Numeric: true, New: func() AggregatorFunction { return &AvgAggregator{} }},
		{Name: Min, Numeric: true, New: func() AggregatorFunction { return &MinAggregator{} }},
		{Name: Max, Numeric: true, New: func() AggregatorFunction { return &MaxAggregator{} }},
		{Name: Percentage, New: func() AggregatorFunction { return &PercentageAggregator{} }},
	} {
		aggregatorRegistry[d.Name] = d
	}
}

// Register adds or replaces a function in the global registry.
func Register(d Descriptor) error {
	name := AggregateType(strings.ToUpper(strings.TrimSpace(string(d.Name))))
	if name == "" {
		return fmt.Errorf("aggregator name is required")
	}
	if strings.ContainsAny(string(name), "()+-*/, \t") {
		return fmt.Errorf("invalid aggregator name %q", d.Name)
	}
	if d.New == nil {
		return fmt.Errorf("aggregator %s has no constructor", name)
	}
	d.Name = name
	registryMutex.Lock()
	defer registryMutex.Unlock()
	aggregatorRegistry[name] = d
	return nil
}

// Unregister removes a function. Built-in functions can be removed too.
func Unregister(name string) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	delete(aggregatorRegistry, AggregateType(strings.ToUpper(name)))
}

// Lookup finds a function by case-insensitive name.
func Lookup(name string) (Descriptor, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	d, ok := aggregatorRegistry[AggregateType(strings.ToUpper(name))]
	return d, ok
}

// Names returns the registered keywords in lexical order.
func Names() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	names := make([]string, 0, len(aggregatorRegistry))
	for n := range aggregatorRegistry {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}

// Create returns a fresh instance of the named function.
func Create(name string) (AggregatorFunction, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("aggregator function %s not found", name)
	}
	return d.New(), nil
}
