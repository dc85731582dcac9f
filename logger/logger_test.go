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

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{" Info ", INFO},
		{"", INFO},
		{"warning", WARN},
		{"ERROR", ERROR},
		{"none", OFF},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, got)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO, &buf)

	logger.Info("formula %s compiled", "SUM(a)")
	logger.Debug("hidden")

	output := buf.String()
	assert.Contains(t, output, "level=info")
	assert.Contains(t, output, `msg="formula SUM(a) compiled"`)
	assert.Contains(t, output, "ts=")
	assert.NotContains(t, output, "hidden")
	assert.Equal(t, 1, strings.Count(output, "\n"))
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ERROR, &buf)

	logger.Warn("skipped")
	assert.Empty(t, buf.String())

	logger.SetLevel(DEBUG)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "level=debug")

	buf.Reset()
	logger.SetLevel(OFF)
	logger.Error("silenced")
	assert.Empty(t, buf.String())
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(INFO, &buf)
	child := parent.With("component", "engine")

	child.Warn("slow evaluation")
	assert.Contains(t, buf.String(), "component=engine")
	assert.Contains(t, buf.String(), "level=warn")

	parent.SetLevel(ERROR)
	buf.Reset()
	child.Warn("now hidden")
	assert.Empty(t, buf.String())
}

func TestDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	logger.Info("nothing")
	logger.SetLevel(DEBUG)
	assert.NotNil(t, logger.With("k", "v"))
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewLogger(DEBUG, &buf))
	Debug("a")
	Info("b")
	Warn("c")
	Error("d")
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}
