// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"fmt"
	"time"
)

// TimeoutError reports that a generation call exceeded its deadline.
// The pipeline maps it to 504 and never retries: a slow model will still
// be slow one second later.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("llm request timed out after %s: %v", e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// TransportError reports a network-level failure before any usable response
// arrived (connection refused, DNS failure, reset mid-stream).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError reports that the provider answered with a non-success
// status. Detail holds a bounded excerpt of the provider's message, never
// the full body.
type UpstreamError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm upstream error (status %d): %s", e.StatusCode, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
