// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire and domain types shared across the QA
// engine: the schema the model must produce, the REST request/response
// contracts, and the quality report.
package datatypes

// TestCase is a single QA test case as the model must emit it. The validate
// tags define the acceptance contract; any violation rejects the whole set.
type TestCase struct {
	Title          string   `json:"title" validate:"required,min=5,max=200"`
	Preconditions  string   `json:"preconditions" validate:"required,min=5,max=200"`
	Steps          []string `json:"steps" validate:"required,min=2,max=4,dive,notblank"`
	ExpectedResult string   `json:"expected_result" validate:"required,min=10,max=200"`
}

// TestCaseSet is the top-level document the model must produce.
type TestCaseSet struct {
	TestCases []TestCase `json:"test_cases" validate:"required,min=1,dive"`
}

// QualityDimensions reports each scoring dimension normalized to [0, 1].
type QualityDimensions struct {
	Quantity        float64 `json:"quantity"`
	StepsDepth      float64 `json:"steps_depth"`
	Preconditions   float64 `json:"preconditions"`
	ExpectedResults float64 `json:"expected_results"`
	Diversity       float64 `json:"diversity"`
}

// Quality labels assigned from the aggregate score.
const (
	QualityHigh             = "High quality"
	QualityMedium           = "Medium quality"
	QualityNeedsImprovement = "Needs improvement"
)

// QualityReport is the aggregate quality verdict for a generated set.
type QualityReport struct {
	Score      float64           `json:"score"`
	Label      string            `json:"label"`
	Dimensions QualityDimensions `json:"dimensions"`
}

// GenerateRequest is the request body for POST /v1/generate-tests.
type GenerateRequest struct {
	UserStory string `json:"user_story" binding:"required,min=10,max=2000"`
}

// PipelineDescription names the fixed processing stages reported in every
// response's meta block.
const PipelineDescription = "user_story → prompt → LLM → validate+repair → quality_score → response"

// ResponseMeta carries generation provenance: which model answered, why it
// stopped, whether the output needed repair, and how many attempts it took.
type ResponseMeta struct {
	Model       string `json:"model"`
	StopReason  string `json:"stop_reason"`
	WasRepaired bool   `json:"was_repaired"`
	Attempts    int    `json:"attempts"`
	Pipeline    string `json:"pipeline"`
}

// GenerateResponse is the success body for POST /v1/generate-tests.
type GenerateResponse struct {
	TestCases []TestCase    `json:"test_cases"`
	Quality   QualityReport `json:"quality"`
	Meta      ResponseMeta  `json:"meta"`
}

// ExampleStory is one predefined user story served by GET /v1/examples.
type ExampleStory struct {
	Label string `json:"label"`
	Story string `json:"story"`
}
