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

package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
)

// Kind is the inferred type of a survey column.
type Kind string

const (
	// KindNumeric columns hold numbers.
	KindNumeric Kind = "numeric"
	// KindCategorical columns hold free text or coded answers.
	KindCategorical Kind = "categorical"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindNumeric || k == KindCategorical
}

// Field is a named column of a dataset.
type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"type"`
}

// IsNumeric reports whether the field holds numbers.
func (f Field) IsNumeric() bool {
	return f.Kind == KindNumeric
}

var (
	// ErrFieldNotFound is returned when no schema field matches a reference.
	ErrFieldNotFound = errors.New("field not found")
	// ErrAmbiguousField is returned when several schema fields normalise to the same name.
	ErrAmbiguousField = errors.New("ambiguous field")
)

// ResolveError describes a failed field lookup.
type ResolveError struct {
	Field       string
	Err         error
	Suggestions []string
}

func (e *ResolveError) Error() string {
	if errors.Is(e.Err, ErrAmbiguousField) {
		return fmt.Sprintf("ambiguous field '%s': matches %s", e.Field, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("field not found: '%s'", e.Field)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// NormalizeName is the matching key for field references: surrounding
// whitespace is dropped and letters are lower-cased. Interior whitespace is kept.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Schema is the ordered set of fields of a dataset.
type Schema struct {
	fields []Field
	index  map[string][]int
}

// NewSchema builds a schema from fields in column order.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string][]int, len(fields)),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		key := NormalizeName(f.Name)
		s.index[key] = append(s.index[key], i)
	}
	return s
}

// Fields returns a copy of the schema fields.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the stored field names in column order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Resolve finds the field a formula reference points at.
// Matching is case-insensitive after trimming both sides; interior spacing must match.
func (s *Schema) Resolve(name string) (*Field, error) {
	if s == nil {
		return nil, &ResolveError{Field: name, Err: ErrFieldNotFound}
	}
	positions := s.index[NormalizeName(name)]
	switch len(positions) {
	case 0:
		return nil, &ResolveError{Field: name, Err: ErrFieldNotFound, Suggestions: s.suggest(name)}
	case 1:
		f := s.fields[positions[0]]
		return &f, nil
	default:
		candidates := make([]string, len(positions))
		for i, p := range positions {
			candidates[i] = s.fields[p].Name
		}
		return nil, &ResolveError{Field: name, Err: ErrAmbiguousField, Suggestions: candidates}
	}
}

func (s *Schema) suggest(name string) []string {
	pattern := NormalizeName(name)
	if pattern == "" {
		return nil
	}
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = NormalizeName(f.Name)
	}
	matches := fuzzy.Find(pattern, keys)
	if len(matches) == 0 {
		return s.closest(pattern, keys)
	}
	var out []string
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, s.fields[m.Index].Name)
	}
	return out
}

// closest ranks keys by edit distance to pattern, for typos that add or
// change letters and so never match as a subsequence.
func (s *Schema) closest(pattern string, keys []string) []string {
	n := utf8.RuneCountInString(pattern)
	limit := max(2, n/3)
	if limit >= n {
		limit = n - 1
	}
	type candidate struct{ index, dist int }
	var cands []candidate
	for i, k := range keys {
		if d := levenshtein.ComputeDistance(pattern, k); d <= limit {
			cands = append(cands, candidate{i, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	var out []string
	for _, c := range cands {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, s.fields[c.index].Name)
	}
	return out
}
