// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command caseforge starts the QA test-case generation HTTP server.
//
// It reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - CASEFORGE_PORT: HTTP server port (default: 8000)
//   - OPENAI_API_KEY: OpenAI API key (or /run/secrets/openai_api_key)
//   - OPENAI_MODEL: model identifier (default: gpt-4o-mini)
//   - LLM_TEMPERATURE: sampling temperature (default: 0.3)
//   - LLM_MAX_TOKENS: completion token cap (default: 2048)
//   - LLM_TOP_P: nucleus sampling parameter (default: 0.95)
//   - LLM_TIMEOUT_SECONDS: per-call timeout (default: 30)
//   - MAX_RETRIES: extra attempts on parse failure (default: 2)
//   - LEXICON_PATH: optional YAML scoring lexicon override
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: localhost:4317)
//
// # Usage
//
//	# Build
//	go build -o caseforge ./cmd/caseforge
//
//	# Run
//	OPENAI_API_KEY=sk-... ./caseforge
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/caseforge/caseforge/services/qaengine"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Build configuration from environment variables
	cfg := qaengine.Config{
		Port:         getEnvInt("CASEFORGE_PORT", 8000),
		OTelEndpoint: getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		MaxRetries:   getEnvInt("MAX_RETRIES", 2),
		Temperature:  float32(getEnvFloat("LLM_TEMPERATURE", 0.3)),
		MaxTokens:    getEnvInt("LLM_MAX_TOKENS", 2048),
		TopP:         float32(getEnvFloat("LLM_TOP_P", 0.95)),
		LLMTimeout:   time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		LexiconPath:  os.Getenv("LEXICON_PATH"),
	}

	slog.Info("Starting caseforge",
		"port", cfg.Port,
		"max_retries", cfg.MaxRetries,
		"llm_timeout", cfg.LLMTimeout.String(),
	)

	svc, err := qaengine.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create QA engine: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("QA engine error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
