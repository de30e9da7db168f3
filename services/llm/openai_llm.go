// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second

	// maxUpstreamDetail bounds how much of a provider error message is
	// carried into an UpstreamError and therefore into logs.
	maxUpstreamDetail = 300
)

// OpenAIClient is the Client implementation backed by the OpenAI chat
// completions API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient builds a client from the environment.
//
// The API key comes from OPENAI_API_KEY, falling back to the Podman/Docker
// secret file at /run/secrets/openai_api_key. The model comes from
// OPENAI_MODEL and defaults to gpt-4o-mini. A non-positive timeout falls
// back to 30 seconds.
func NewOpenAIClient(timeout time.Duration) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API key from container secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	slog.Info("Initializing OpenAI client", "model", model, "timeout", timeout.String())
	return &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate implements the Client interface.
func (o *OpenAIClient) Generate(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (*Result, error) {
	slog.Debug("Generating via OpenAI", "model", o.model)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		TopP:        params.TopP,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, o.classify(err)
	}

	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices")
		return nil, &UpstreamError{
			StatusCode: 200,
			Detail:     "provider returned no choices",
		}
	}

	choice := resp.Choices[0]
	stopReason := string(choice.FinishReason)
	if stopReason == "" {
		stopReason = StopReasonUnknown
	}

	slog.Debug("Received response from OpenAI",
		"finish_reason", stopReason,
		"model", resp.Model,
	)

	return &Result{
		Text:       choice.Message.Content,
		StopReason: stopReason,
		Model:      resp.Model,
	}, nil
}

// classify maps a go-openai error into the package fault taxonomy.
func (o *OpenAIClient) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Error("OpenAI request timed out", "timeout", o.timeout.String())
		return &TimeoutError{Timeout: o.timeout, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if len(detail) > maxUpstreamDetail {
			detail = detail[:maxUpstreamDetail]
		}
		slog.Error("OpenAI API error", "status", apiErr.HTTPStatusCode, "detail", detail)
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Detail: detail, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		slog.Error("OpenAI request error", "status", reqErr.HTTPStatusCode)
		return &UpstreamError{
			StatusCode: reqErr.HTTPStatusCode,
			Detail:     fmt.Sprintf("request rejected with status %d", reqErr.HTTPStatusCode),
			Err:        err,
		}
	}

	slog.Error("OpenAI transport failure", "error", err)
	return &TransportError{Err: err}
}
