// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caseforge/caseforge/services/qaengine/generator"
	"github.com/caseforge/caseforge/services/qaengine/handlers"
)

// SetupRoutes registers all QA engine endpoints on the router.
func SetupRoutes(router *gin.Engine, gen *generator.Generator, enableMetrics bool) {
	router.GET("/health", handlers.HealthCheck)
	if enableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/generate-tests", handlers.HandleGenerateTests(gen))
		v1.GET("/examples", handlers.HandleExamples())
	}
}
