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

package formula

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is the pipeline stage that produced an error.
type Stage string

const (
	StageTokenize Stage = "Tokenize"
	StageParse    Stage = "Parse"
	StageResolve  Stage = "Resolve"
	StageEvaluate Stage = "Evaluate"
)

// ErrorKind classifies an error within its stage.
type ErrorKind string

const (
	KindMalformedNumber  ErrorKind = "MALFORMED_NUMBER"
	KindUnexpectedToken  ErrorKind = "UNEXPECTED_TOKEN"
	KindMissingToken     ErrorKind = "MISSING_TOKEN"
	KindUnbalancedParen  ErrorKind = "UNBALANCED_PAREN"
	KindArity            ErrorKind = "ARITY"
	KindUnknownFunction  ErrorKind = "UNKNOWN_FUNCTION"
	KindEmptyFormula     ErrorKind = "EMPTY_FORMULA"
	KindUnknownField     ErrorKind = "UNKNOWN_FIELD"
	KindAmbiguousField   ErrorKind = "AMBIGUOUS_FIELD"
	KindNotNumeric       ErrorKind = "NOT_NUMERIC"
	KindStructure        ErrorKind = "STRUCTURE"
	KindInvalidFilter    ErrorKind = "INVALID_FILTER"
	KindDivisionByZero   ErrorKind = "DIVISION_BY_ZERO"
	KindEmptyAggregation ErrorKind = "EMPTY_AGGREGATION"
	KindNonFinite        ErrorKind = "NON_FINITE"
	KindBudget           ErrorKind = "BUDGET"
	KindCancelled        ErrorKind = "CANCELLED"
)

// Stable machine-readable reasons.
const (
	ReasonNotNumeric       = "not numeric"
	ReasonDivisionByZero   = "division by zero"
	ReasonEmptyAggregation = "empty aggregation"
	ReasonNonFinite        = "non-finite result"
	ReasonBudget           = "row budget exceeded"
	ReasonCancelled        = "evaluation cancelled"
)

// NoPosition marks errors that do not point into the source.
const NoPosition = -1

// Error is the diagnostic returned by every stage of the pipeline.
type Error struct {
	Stage       Stage     `json:"stage"`
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	Position    int       `json:"position"`
	Token       string    `json:"token,omitempty"`
	Field       string    `json:"field,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Expected    []string  `json:"expected,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

func newError(stage Stage, kind ErrorKind, pos int, format string, args ...any) *Error {
	return &Error{
		Stage:    stage,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[%s] %s", e.Stage, e.Message))
	if e.Position >= 0 {
		builder.WriteString(fmt.Sprintf(" at position %d", e.Position))
	}
	if e.Token != "" {
		builder.WriteString(fmt.Sprintf(" (found '%s')", e.Token))
	}
	if len(e.Expected) > 0 {
		builder.WriteString(fmt.Sprintf(", expected: %s", strings.Join(e.Expected, ", ")))
	}
	if len(e.Suggestions) > 0 {
		builder.WriteString(fmt.Sprintf(", did you mean: %s", strings.Join(e.Suggestions, ", ")))
	}
	return builder.String()
}

// Pretty renders the error followed by the source with a caret under the
// error position.
func (e *Error) Pretty(source string) string {
	msg := e.Error()
	if e.Position < 0 {
		return msg
	}
	offset := e.Position
	if offset > len(source) {
		offset = len(source)
	}
	return msg + "\n" + source + "\n" + strings.Repeat(".", offset) + "^"
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
