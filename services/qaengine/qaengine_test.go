// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package qaengine

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func TestApplyConfigDefaults_AllDefaults(t *testing.T) {
	result := applyConfigDefaults(Config{})

	assert.Equal(t, 8000, result.Port, "default port should be 8000")
	assert.Equal(t, "localhost:4317", result.OTelEndpoint)
	assert.True(t, result.EnableMetrics, "metrics should be enabled by default")
	assert.Equal(t, 2, result.MaxRetries)
	assert.InDelta(t, 0.3, result.Temperature, 1e-6)
	assert.Equal(t, 2048, result.MaxTokens)
	assert.InDelta(t, 0.95, result.TopP, 1e-6)
	assert.Equal(t, 30*time.Second, result.LLMTimeout)
}

func TestApplyConfigDefaults_PreservesCustomValues(t *testing.T) {
	cfg := Config{
		Port:         9090,
		OTelEndpoint: "collector:4317",
		MaxRetries:   5,
		Temperature:  0.7,
		MaxTokens:    512,
		TopP:         0.5,
		LLMTimeout:   10 * time.Second,
		LexiconPath:  "/etc/caseforge/lexicon.yaml",
	}

	result := applyConfigDefaults(cfg)

	assert.Equal(t, 9090, result.Port)
	assert.Equal(t, "collector:4317", result.OTelEndpoint)
	assert.Equal(t, 5, result.MaxRetries)
	assert.InDelta(t, 0.7, result.Temperature, 1e-6)
	assert.Equal(t, 512, result.MaxTokens)
	assert.InDelta(t, 0.5, result.TopP, 1e-6)
	assert.Equal(t, 10*time.Second, result.LLMTimeout)
	assert.Equal(t, "/etc/caseforge/lexicon.yaml", result.LexiconPath)
}

// Negative MaxRetries is a deliberate "no retries" setting and must survive
// the defaults pass.
func TestApplyConfigDefaults_NegativeMaxRetries(t *testing.T) {
	result := applyConfigDefaults(Config{MaxRetries: -1})

	assert.Equal(t, -1, result.MaxRetries)
}

func TestServiceImplementsInterface(t *testing.T) {
	var svc Service = &service{}
	assert.NotNil(t, svc)
}
