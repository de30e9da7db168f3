// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP handlers for the QA engine API.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/caseforge/caseforge/services/llm"
	"github.com/caseforge/caseforge/services/qaengine/datatypes"
	"github.com/caseforge/caseforge/services/qaengine/generator"
	"github.com/caseforge/caseforge/services/qaengine/middleware"
	"github.com/caseforge/caseforge/services/qaengine/observability"
	"github.com/caseforge/caseforge/services/qaengine/validate"
)

// HandleGenerateTests returns the handler for POST /v1/generate-tests.
//
// The request body carries a user story; the response carries the generated
// test cases, the quality report, and generation metadata. Fault mapping:
//
//   - invalid body: 400
//   - model timeout: 504
//   - transport or upstream failure: 502
//   - unparseable output after retries: 502 with diagnostic detail
//   - anything else: 500 with a generic body, detail stays in the logs
func HandleGenerateTests(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
			return
		}

		slog.Info("Request received",
			"story_length", len(req.UserStory),
			"request_id", middleware.GetRequestID(c),
		)

		start := time.Now()
		resp, err := gen.Generate(c.Request.Context(), req.UserStory)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			status, detail, outcome := mapGenerationError(err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordGeneration(outcome, elapsed)
			}
			slog.Error("Generation failed",
				"status", status,
				"outcome", string(outcome),
				"request_id", middleware.GetRequestID(c),
				"error", err.Error(),
			)
			c.JSON(status, gin.H{"error": detail})
			return
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordGeneration(observability.OutcomeSuccess, elapsed)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// mapGenerationError translates a pipeline error into an HTTP status, a
// client-safe detail message, and a metrics outcome.
func mapGenerationError(err error) (int, string, observability.Outcome) {
	var timeoutErr *llm.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout,
			fmt.Sprintf("LLM request timed out: %v", timeoutErr),
			observability.OutcomeTimeout
	}

	var transportErr *llm.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway,
			fmt.Sprintf("LLM network error: %v", transportErr),
			observability.OutcomeTransport
	}

	var upstreamErr *llm.UpstreamError
	if errors.As(err, &upstreamErr) {
		return http.StatusBadGateway,
			fmt.Sprintf("LLM upstream error: %v", upstreamErr),
			observability.OutcomeUpstream
	}

	var parseErr *validate.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadGateway,
			fmt.Sprintf("LLM returned unparseable output: %v", parseErr),
			observability.OutcomeParse
	}

	return http.StatusInternalServerError, "internal server error", observability.OutcomeInternal
}

// exampleStories are the predefined user stories served by GET /v1/examples
// for quick manual testing of the pipeline.
var exampleStories = []datatypes.ExampleStory{
	{Label: "🔑 Recuperar contraseña", Story: "Como usuario quiero recuperar mi contraseña para poder acceder nuevamente al sistema."},
	{Label: "🛒 Carrito de compras", Story: "Como cliente quiero agregar productos a mi carrito para poder comprarlos más tarde."},
	{Label: "📁 Subir archivos", Story: "Como usuario quiero subir documentos PDF a mi perfil para tener mis archivos disponibles en la nube."},
	{Label: "🔔 Notificaciones", Story: "Como usuario quiero recibir notificaciones push cuando hay una nueva oferta disponible."},
	{Label: "💳 Pago con tarjeta", Story: "Como cliente quiero pagar mi orden con tarjeta de crédito para completar mi compra de forma segura."},
}

// HandleExamples returns the handler for GET /v1/examples.
func HandleExamples() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, exampleStories)
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "caseforge"})
}
