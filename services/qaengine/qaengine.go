// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package qaengine provides the QA test-case generation service.
//
// This package contains the main service type that coordinates all
// components: HTTP routing, the LLM client, output validation and repair,
// quality scoring, and observability infrastructure.
//
// # Usage
//
//	cfg := qaengine.Config{Port: 8000}
//	svc, err := qaengine.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package qaengine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/caseforge/caseforge/services/llm"
	"github.com/caseforge/caseforge/services/qaengine/generator"
	"github.com/caseforge/caseforge/services/qaengine/middleware"
	"github.com/caseforge/caseforge/services/qaengine/observability"
	"github.com/caseforge/caseforge/services/qaengine/routes"
	"github.com/caseforge/caseforge/services/qaengine/scoring"
	"github.com/caseforge/caseforge/services/qaengine/validate"
)

// Service defines the contract for the QA engine service.
//
// # Description
//
// Service abstracts the service lifecycle, enabling testing and alternative
// implementations. Run blocks and should only be called once per instance.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers must
	// not modify routes after construction.
	Router() *gin.Engine
}

// Config holds QA engine configuration options.
//
// All fields are optional; New applies defaults for zero values.
type Config struct {
	// Port is the HTTP server port. Default: 8000
	Port int

	// GinMode sets the Gin framework mode: "debug", "release", "test".
	// Empty keeps Gin's own default (GIN_MODE env var or "debug").
	GinMode string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "localhost:4317"
	OTelEndpoint string

	// EnableMetrics enables the Prometheus /metrics endpoint.
	// Default: true
	EnableMetrics bool

	// MaxRetries is the number of extra generation attempts after the
	// first, taken only on parse failures. Negative disables retries.
	// Default: 2
	MaxRetries int

	// Temperature is the sampling temperature. Low by default because
	// test cases need precision, not creativity. Default: 0.3
	Temperature float32

	// MaxTokens caps the completion length. Default: 2048
	MaxTokens int

	// TopP is the nucleus sampling parameter. Default: 0.95
	TopP float32

	// LLMTimeout bounds each individual generation call. Default: 30s
	LLMTimeout time.Duration

	// LexiconPath optionally points to a YAML file overriding the
	// scorer's built-in vague-word and generic-precondition lists.
	LexiconPath string
}

// service implements Service for production use.
type service struct {
	config        Config
	router        *gin.Engine
	llmClient     llm.Client
	generator     *generator.Generator
	tracerCleanup func(context.Context)
}

// New creates a QA engine Service with the given configuration.
//
// # Description
//
// New initializes all components in order:
//  1. Applies defaults for missing configuration values
//  2. Initializes OpenTelemetry tracing
//  3. Initializes Prometheus metrics
//  4. Loads the scoring lexicon and builds the scorer
//  5. Creates the OpenAI client from the environment
//  6. Assembles the generation pipeline and HTTP routes
//
// # Outputs
//
//   - Service: ready-to-run service
//   - error: non-nil if any component fails to initialize
//
// # Assumptions
//
//   - OPENAI_API_KEY is set in the environment or a container secret
//   - The OTel collector is reachable at the configured endpoint
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics for generation pipeline")
	}

	lexicon := scoring.DefaultLexicon()
	if s.config.LexiconPath != "" {
		lexicon, err = scoring.LoadLexicon(s.config.LexiconPath)
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		slog.Info("Loaded scoring lexicon", "path", s.config.LexiconPath)
	}

	scorer, err := scoring.NewScorer(lexicon)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}

	s.llmClient, err = llm.NewOpenAIClient(s.config.LLMTimeout)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	s.generator = generator.New(s.llmClient, validate.New(), scorer, generator.Config{
		MaxRetries: s.config.MaxRetries,
		Params: llm.GenerationParams{
			Temperature: s.config.Temperature,
			MaxTokens:   s.config.MaxTokens,
			TopP:        s.config.TopP,
		},
	})

	s.initRouter()

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown or error.
// Cleanup is automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting QA engine server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "localhost:4317"
	}
	// EnableMetrics defaults to true (zero value is false, so it is forced
	// here; disable by serving behind a router without /metrics instead)
	cfg.EnableMetrics = true

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.95
	}
	if cfg.LLMTimeout == 0 {
		cfg.LLMTimeout = 30 * time.Second
	}

	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Sets up the OTLP trace exporter over an insecure gRPC connection,
// appropriate for internal networks. Returns a cleanup function to call on
// shutdown.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("caseforge")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initRouter sets up the Gin HTTP router with middleware and all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("caseforge"))
	s.router.Use(middleware.RequestID())

	routes.SetupRoutes(s.router, s.generator, s.config.EnableMetrics)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

var _ Service = (*service)(nil)
