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

// Package cast converts loosely typed survey cell values into the numbers and
// strings the engine works with.
package cast

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ToFloat64E converts a cell value to a finite float64.
// Strings are trimmed before parsing. Booleans, NaN and infinities are rejected
// so that yes/no answers never leak into numeric aggregation.
func ToFloat64E(x any) (float64, error) {
	switch v := x.(type) {
	case nil:
		return 0, fmt.Errorf("invalid operation: float(nil)")
	case bool:
		return 0, fmt.Errorf("invalid operation: float(bool)")
	case string:
		x = strings.TrimSpace(v)
		if x == "" {
			return 0, fmt.Errorf("invalid operation: float(\"\")")
		}
	}
	f, err := cast.ToFloat64E(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid operation: float(%v) is not finite", x)
	}
	return f, nil
}

// IsNumber reports whether x converts to a finite float64.
func IsNumber(x any) bool {
	_, err := ToFloat64E(x)
	return err == nil
}

// ToString renders a cell value as text. Nil becomes the empty string.
func ToString(x any) string {
	if x == nil {
		return ""
	}
	return cast.ToString(x)
}

// IsBlank reports whether x is nil or a whitespace-only string.
func IsBlank(x any) bool {
	switch v := x.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
