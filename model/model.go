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

// Package model holds the persisted entities of the indicator service.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
)

// IndicatorType is the results-chain level of an indicator.
type IndicatorType string

const (
	TypeInput   IndicatorType = "input"
	TypeOutput  IndicatorType = "output"
	TypeOutcome IndicatorType = "outcome"
	TypeImpact  IndicatorType = "impact"
)

// IsValid reports whether t is a known indicator type.
func (t IndicatorType) IsValid() bool {
	switch t {
	case TypeInput, TypeOutput, TypeOutcome, TypeImpact:
		return true
	}
	return false
}

// Indicator is a named formula with its reporting metadata.
type Indicator struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Type           IndicatorType      `json:"indicator_type"`
	Unit           string             `json:"unit"`
	Baseline       *float64           `json:"baseline"`
	Target         *float64           `json:"target"`
	Formula        string             `json:"formula"`
	FilterCriteria condition.Criteria `json:"filter_criteria"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Validate checks the required fields. Formula syntax is checked by the service.
func (i *Indicator) Validate() error {
	var missing []string
	if strings.TrimSpace(i.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(i.Formula) == "" {
		missing = append(missing, "formula")
	}
	if strings.TrimSpace(i.Unit) == "" {
		missing = append(missing, "unit")
	}
	if i.Type == "" {
		missing = append(missing, "indicator_type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("invalid indicator_type %q: must be one of input, output, outcome, impact", i.Type)
	}
	return nil
}

// IndicatorPatch carries the fields of a partial update. Nil fields are left unchanged.
type IndicatorPatch struct {
	Name           *string             `json:"name"`
	Description    *string             `json:"description"`
	Type           *IndicatorType      `json:"indicator_type"`
	Unit           *string             `json:"unit"`
	Baseline       *float64            `json:"baseline"`
	Target         *float64            `json:"target"`
	Formula        *string             `json:"formula"`
	FilterCriteria *condition.Criteria `json:"filter_criteria"`
	IsActive       *bool               `json:"is_active"`
}

// Apply copies the set fields of p onto i.
func (p IndicatorPatch) Apply(i *Indicator) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Type != nil {
		i.Type = *p.Type
	}
	if p.Unit != nil {
		i.Unit = *p.Unit
	}
	if p.Baseline != nil {
		i.Baseline = p.Baseline
	}
	if p.Target != nil {
		i.Target = p.Target
	}
	if p.Formula != nil {
		i.Formula = *p.Formula
	}
	if p.FilterCriteria != nil {
		i.FilterCriteria = *p.FilterCriteria
	}
	if p.IsActive != nil {
		i.IsActive = *p.IsActive
	}
}

// Survey is an uploaded dataset with its inferred schema.
type Survey struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Fields    []dataset.Field  `json:"fields"`
	Rows      []map[string]any `json:"-"`
	RowCount  int              `json:"row_count"`
	CreatedAt time.Time        `json:"created_at"`
}

// Dataset builds the evaluation dataset of the survey.
func (s *Survey) Dataset() *dataset.Dataset {
	return dataset.New(dataset.NewSchema(s.Fields...), s.Rows)
}

// Schema returns the survey schema.
func (s *Survey) Schema() *dataset.Schema {
	return dataset.NewSchema(s.Fields...)
}
