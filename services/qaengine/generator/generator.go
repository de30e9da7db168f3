// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package generator orchestrates the generation pipeline: prompt the model,
// parse and validate the output, score it, and retry on parse failures.
//
// Retry policy:
//   - Parse failures retry, up to MaxRetries extra attempts. A fresh
//     generation may well produce parseable output.
//   - Timeout, transport, and upstream faults fail fast. They signal an
//     infrastructure problem a retry would only prolong.
//   - Attempts are independent. No conversation state or partial output is
//     carried between them.
package generator

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/caseforge/caseforge/services/llm"
	"github.com/caseforge/caseforge/services/qaengine/datatypes"
	"github.com/caseforge/caseforge/services/qaengine/observability"
	"github.com/caseforge/caseforge/services/qaengine/scoring"
	"github.com/caseforge/caseforge/services/qaengine/validate"
)

const tracerName = "caseforge/generator"

// Config controls the retry budget and sampling parameters.
type Config struct {
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int

	// Params are the sampling parameters passed to every attempt.
	Params llm.GenerationParams
}

// Generator runs the full pipeline for one user story.
type Generator struct {
	client    llm.Client
	validator *validate.Validator
	scorer    *scoring.Scorer
	cfg       Config
}

// New builds a Generator. A negative MaxRetries is treated as zero.
func New(client llm.Client, validator *validate.Validator, scorer *scoring.Scorer, cfg Config) *Generator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Generator{
		client:    client,
		validator: validator,
		scorer:    scorer,
		cfg:       cfg,
	}
}

// IsRetryable reports whether an error from Generate was a parse failure,
// the only fault class worth retrying.
func IsRetryable(err error) bool {
	var perr *validate.ParseError
	return errors.As(err, &perr)
}

// Generate runs user story through prompt, model call, parse, validation,
// and scoring, retrying parse failures within the configured budget.
//
// The returned error is one of the llm fault types or, after the budget is
// exhausted, the last *validate.ParseError.
func (g *Generator) Generate(ctx context.Context, userStory string) (*datatypes.GenerateResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "qaengine.generate")
	defer span.End()

	maxAttempts := g.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slog.Info("Generation attempt", "attempt", attempt, "max", maxAttempts)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordAttempt()
		}

		result, err := g.client.Generate(ctx, llm.SystemPrompt, llm.BuildUserMessage(userStory), g.cfg.Params)
		if err != nil {
			// Infra faults bubble up unchanged, no retry.
			span.RecordError(err)
			return nil, err
		}

		set, wasRepaired, err := g.validator.ParseAndValidate(result.Text, result.StopReason)
		if err != nil {
			lastErr = err
			slog.Warn("Parse error on attempt", "attempt", attempt, "error", err.Error())
			if attempt < maxAttempts {
				slog.Info("Retrying generation")
			}
			continue
		}

		if wasRepaired {
			if m := observability.DefaultMetrics; m != nil {
				m.RecordRepair()
			}
		}

		quality := g.scorer.Score(set.TestCases)
		if m := observability.DefaultMetrics; m != nil {
			m.ObserveQuality(quality.Score)
		}

		slog.Info("Pipeline complete",
			"attempt", attempt,
			"test_cases", len(set.TestCases),
			"quality_score", quality.Score,
			"quality_label", quality.Label,
			"was_repaired", wasRepaired,
		)
		span.SetAttributes(
			attribute.Int("qaengine.attempts", attempt),
			attribute.Bool("qaengine.was_repaired", wasRepaired),
			attribute.Float64("qaengine.quality_score", quality.Score),
		)

		return &datatypes.GenerateResponse{
			TestCases: set.TestCases,
			Quality:   quality,
			Meta: datatypes.ResponseMeta{
				Model:       result.Model,
				StopReason:  result.StopReason,
				WasRepaired: wasRepaired,
				Attempts:    attempt,
				Pipeline:    datatypes.PipelineDescription,
			},
		}, nil
	}

	span.RecordError(lastErr)
	return nil, lastErr
}
