// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
  "test_cases": [
    {
      "title": "Recuperar contraseña con correo válido",
      "preconditions": "Usuario registrado con correo verificado en el sistema",
      "steps": ["Abrir la pantalla de login", "Tocar 'Olvidé mi contraseña'", "Ingresar el correo registrado"],
      "expected_result": "Se envía un correo con el enlace de restablecimiento en menos de 1 minuto"
    }
  ]
}`

func TestParseAndValidate_DirectParse(t *testing.T) {
	v := New()

	set, repaired, err := v.ParseAndValidate(validPayload, "stop")

	require.NoError(t, err)
	assert.False(t, repaired)
	require.Len(t, set.TestCases, 1)
	assert.Equal(t, "Recuperar contraseña con correo válido", set.TestCases[0].Title)
}

// Valid output reported as truncated must still take the direct path: the
// stop reason is advisory, not authoritative.
func TestParseAndValidate_DirectParseIgnoresStopReason(t *testing.T) {
	v := New()

	set, repaired, err := v.ParseAndValidate(validPayload, "length")

	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Len(t, set.TestCases, 1)
}

func TestParseAndValidate_FencedOutput(t *testing.T) {
	v := New()

	set, repaired, err := v.ParseAndValidate("```json\n"+validPayload+"\n```", "stop")

	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Len(t, set.TestCases, 1)
}

func TestParseAndValidate_RepairsTruncatedOutput(t *testing.T) {
	v := New()

	// Truncated at the element boundary after the first complete case: the
	// dangling separator is dropped, the open structures are closed, and
	// the complete case survives.
	truncated := strings.TrimSuffix(strings.TrimSpace(validPayload), "\n  ]\n}") + `, "`

	set, repaired, err := v.ParseAndValidate(truncated, "length")

	require.NoError(t, err)
	assert.True(t, repaired)
	require.Len(t, set.TestCases, 1)
	assert.Equal(t, "Recuperar contraseña con correo válido", set.TestCases[0].Title)
}

// A case truncated mid object is repaired into valid JSON but misses
// required fields, so validation still rejects the set. Validation is
// total: one incomplete case spoils the response.
func TestParseAndValidate_PartialCaseRejected(t *testing.T) {
	v := New()

	truncated := strings.TrimSuffix(strings.TrimSpace(validPayload), "\n  ]\n}") +
		`, {"title": "Caso truncado a mitad de camino", "preconditions": "Usuario con sesi`

	set, _, err := v.ParseAndValidate(truncated, "length")

	assert.Nil(t, set)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "length", perr.StopReason)
}

func TestParseAndValidate_UnparseableOutput(t *testing.T) {
	v := New()

	raw := "Lo siento, no puedo generar casos de prueba para esa historia."
	set, _, err := v.ParseAndValidate(raw, "stop")

	require.Error(t, err)
	assert.Nil(t, set)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "stop", perr.StopReason)
	assert.Equal(t, raw, perr.RawPrefix)
}

func TestParseAndValidate_RawPrefixBounded(t *testing.T) {
	v := New()

	raw := strings.Repeat("x", 2*maxRawPrefix)
	_, _, err := v.ParseAndValidate(raw, "length")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Len(t, perr.RawPrefix, maxRawPrefix)
}

func TestParseAndValidate_SchemaViolations(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "empty test_cases",
			payload: `{"test_cases": []}`,
		},
		{
			name: "title too short",
			payload: `{"test_cases": [{"title": "abc", "preconditions": "Usuario registrado en el sistema",
				"steps": ["Paso uno", "Paso dos"], "expected_result": "Resultado observable del sistema"}]}`,
		},
		{
			name: "single step",
			payload: `{"test_cases": [{"title": "Caso con un solo paso", "preconditions": "Usuario registrado",
				"steps": ["Paso uno"], "expected_result": "Resultado observable del sistema"}]}`,
		},
		{
			name: "five steps",
			payload: `{"test_cases": [{"title": "Caso con demasiados pasos", "preconditions": "Usuario registrado",
				"steps": ["a1", "a2", "a3", "a4", "a5"], "expected_result": "Resultado observable del sistema"}]}`,
		},
		{
			name: "blank step",
			payload: `{"test_cases": [{"title": "Caso con paso en blanco", "preconditions": "Usuario registrado",
				"steps": ["Paso uno", "   "], "expected_result": "Resultado observable del sistema"}]}`,
		},
		{
			name: "expected result too short",
			payload: `{"test_cases": [{"title": "Caso con resultado corto", "preconditions": "Usuario registrado",
				"steps": ["Paso uno", "Paso dos"], "expected_result": "corto"}]}`,
		},
		{
			name: "missing preconditions",
			payload: `{"test_cases": [{"title": "Caso sin precondiciones",
				"steps": ["Paso uno", "Paso dos"], "expected_result": "Resultado observable del sistema"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, _, err := v.ParseAndValidate(tt.payload, "stop")

			assert.Nil(t, set)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}
