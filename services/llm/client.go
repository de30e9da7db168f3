// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm provides the client abstraction for text-generation backends.
//
// The generation pipeline treats the model as an unreliable collaborator:
// every call returns the raw text together with the stop reason the provider
// reported, and failures are classified into a closed fault taxonomy
// (TimeoutError, TransportError, UpstreamError) so callers can decide
// between retry and fail-fast without inspecting provider internals.
package llm

import "context"

// Stop reasons reported by generation backends. StopReasonLength is the
// truncation signal: the output hit the completion token limit instead of
// finishing naturally. Callers must not trust it blindly, models sometimes
// report an inaccurate stop cause.
const (
	StopReasonStop    = "stop"
	StopReasonLength  = "length"
	StopReasonUnknown = "unknown"
)

// Result is the raw outcome of one generation attempt. A Result is scoped to
// a single attempt; retries produce a fresh Result with no carried state.
type Result struct {
	// Text is the raw model output, possibly fenced, truncated, or
	// otherwise malformed. Downstream parsing owns all cleanup.
	Text string

	// StopReason is why generation stopped: "stop", "length",
	// "content_filter", or "unknown" when the provider omitted it.
	StopReason string

	// Model is the identifier the provider reports it actually used,
	// which can differ from the requested model.
	Model string
}

// GenerationParams controls sampling for one generation call.
// Zero values leave the provider default in place.
type GenerationParams struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float32 `json:"top_p"`
}

// Client defines the standard interface for any LLM backend.
//
// Generate sends a system instruction and a user message and returns the raw
// result. Errors are always one of the fault types in this package:
//
//   - *TimeoutError: the configured deadline fired before a response arrived
//   - *TransportError: network-level failure, no usable response
//   - *UpstreamError: the provider answered with a non-success status
//
// Implementations must be safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (*Result, error)
}
