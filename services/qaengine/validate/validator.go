// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validate turns raw model output into a validated TestCaseSet.
//
// The flow is parse-then-repair: a direct decode is always attempted first,
// whatever the stop reason says, because models sometimes misreport why they
// stopped. Only when the direct decode fails is the truncation repair
// applied and the decode retried. Schema validation runs after either path
// and is total: one bad field rejects the whole set.
package validate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/caseforge/caseforge/pkg/jsonrepair"
	"github.com/caseforge/caseforge/services/qaengine/datatypes"
)

// maxRawPrefix bounds how much raw model output a ParseError carries.
const maxRawPrefix = 300

// ParseError reports that model output could not be turned into a valid
// TestCaseSet, after both the direct decode and the repair path. It carries
// the stop reason and a bounded prefix of the raw output for diagnostics.
//
// ParseError is the only retryable fault in the pipeline: a fresh generation
// attempt may well produce parseable output.
type ParseError struct {
	StopReason string
	RawPrefix  string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("output could not be parsed or repaired (stop_reason=%q): %v; raw prefix: %q",
		e.StopReason, e.Err, e.RawPrefix)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Validator decodes and validates raw LLM output.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the notblank rule registered for step entries.
func New() *Validator {
	v := validator.New()

	// notblank rejects strings that are empty or whitespace-only. The min
	// tag alone would accept "   ".
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v}
}

// ParseAndValidate turns raw model output into a TestCaseSet. The bool
// reports whether the repair path was needed. On failure the returned error
// is always a *ParseError.
func (v *Validator) ParseAndValidate(raw, stopReason string) (*datatypes.TestCaseSet, bool, error) {
	cleaned := jsonrepair.Sanitize(raw)

	var set datatypes.TestCaseSet
	err := json.Unmarshal([]byte(cleaned), &set)
	if err == nil {
		if verr := v.validate.Struct(&set); verr != nil {
			return nil, false, v.parseError(raw, stopReason, fmt.Errorf("structural validation failed: %w", verr))
		}
		return &set, false, nil
	}
	slog.Warn("Direct JSON parse failed, attempting repair",
		"stop_reason", stopReason,
		"error", err.Error(),
	)

	repaired := jsonrepair.Repair(cleaned)

	set = datatypes.TestCaseSet{}
	if err := json.Unmarshal([]byte(repaired), &set); err != nil {
		return nil, false, v.parseError(raw, stopReason, err)
	}
	if verr := v.validate.Struct(&set); verr != nil {
		return nil, false, v.parseError(raw, stopReason, fmt.Errorf("structural validation failed after repair: %w", verr))
	}

	slog.Info("JSON repaired successfully", "stop_reason", stopReason)
	return &set, true, nil
}

func (v *Validator) parseError(raw, stopReason string, err error) *ParseError {
	prefix := raw
	if len(prefix) > maxRawPrefix {
		prefix = prefix[:maxRawPrefix]
	}
	return &ParseError{
		StopReason: stopReason,
		RawPrefix:  prefix,
		Err:        err,
	}
}
