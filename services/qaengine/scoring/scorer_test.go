// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseforge/caseforge/services/qaengine/datatypes"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultLexicon())
	require.NoError(t, err)
	return s
}

// fourGoodCases is a well-formed set: four cases, three steps each,
// specific preconditions, substantial non-vague results, distinct titles.
func fourGoodCases() []datatypes.TestCase {
	return []datatypes.TestCase{
		{
			Title:          "Inicio de sesión exitoso con credenciales válidas",
			Preconditions:  "Usuario registrado con correo verificado y cuenta activa",
			Steps:          []string{"Abrir la pantalla de login", "Ingresar credenciales válidas", "Tocar el botón de ingresar"},
			ExpectedResult: "El sistema redirige al panel principal y muestra el nombre del usuario",
		},
		{
			Title:          "Error al pagar con tarjeta vencida",
			Preconditions:  "Cliente con una tarjeta de crédito vencida registrada",
			Steps:          []string{"Agregar un producto al carrito", "Iniciar el pago con la tarjeta vencida", "Confirmar la orden"},
			ExpectedResult: "Se muestra el mensaje de tarjeta vencida y la orden no se crea",
		},
		{
			Title:          "Carga masiva de archivos grandes simultáneos",
			Preconditions:  "Usuario con espacio de almacenamiento disponible de 1 GB",
			Steps:          []string{"Seleccionar diez archivos de 100 MB", "Iniciar la carga simultánea", "Esperar la barra de progreso"},
			ExpectedResult: "Los diez archivos aparecen en el perfil con su tamaño y fecha de carga",
		},
		{
			Title:          "Acceso denegado sin permisos de administrador",
			Preconditions:  "Usuario autenticado con rol de lectura solamente",
			Steps:          []string{"Navegar a la sección de administración", "Intentar editar la configuración", "Guardar los cambios"},
			ExpectedResult: "El sistema responde 403 y registra el intento en el log de auditoría",
		},
	}
}

func TestScore_FourGoodCasesScoreHigh(t *testing.T) {
	s := newTestScorer(t)

	report := s.Score(fourGoodCases())

	assert.GreaterOrEqual(t, report.Score, 0.70)
	assert.Equal(t, datatypes.QualityHigh, report.Label)
	assert.InDelta(t, 1.0, report.Dimensions.Quantity, 1e-9)
	assert.InDelta(t, 1.0, report.Dimensions.StepsDepth, 1e-9)
	assert.InDelta(t, 1.0, report.Dimensions.Preconditions, 1e-9)
	assert.InDelta(t, 1.0, report.Dimensions.ExpectedResults, 1e-9)
	assert.InDelta(t, 1.0, report.Dimensions.Diversity, 1e-9)
}

func TestScore_SingleWeakCase(t *testing.T) {
	s := newTestScorer(t)

	report := s.Score([]datatypes.TestCase{
		{
			Title:          "Caso simple de prueba",
			Preconditions:  "Usuario registrado",
			Steps:          []string{"Paso uno", "Paso dos"},
			ExpectedResult: "El sistema funciona bien",
		},
	})

	// quantity 1/3, steps 2/3, preconditions 0.6 (specific but short),
	// expected results 0.3 (two vague words), diversity saturated.
	assert.InDelta(t, 0.5633, report.Score, 1e-9)
	assert.Equal(t, datatypes.QualityMedium, report.Label)
	assert.InDelta(t, 0.3333, report.Dimensions.Quantity, 1e-9)
	assert.InDelta(t, 0.6667, report.Dimensions.StepsDepth, 1e-9)
	assert.InDelta(t, 0.6, report.Dimensions.Preconditions, 1e-9)
	assert.InDelta(t, 0.3, report.Dimensions.ExpectedResults, 1e-9)
	assert.InDelta(t, 1.0, report.Dimensions.Diversity, 1e-9)
}

func TestScore_EmptySet(t *testing.T) {
	s := newTestScorer(t)

	report := s.Score(nil)

	assert.Zero(t, report.Score)
	assert.Equal(t, datatypes.QualityNeedsImprovement, report.Label)
}

func TestScore_Deterministic(t *testing.T) {
	s := newTestScorer(t)
	cases := fourGoodCases()

	first := s.Score(cases)
	second := s.Score(cases)

	assert.Equal(t, first, second)
}

func TestScore_BoundsHold(t *testing.T) {
	s := newTestScorer(t)

	inputs := [][]datatypes.TestCase{
		fourGoodCases(),
		fourGoodCases()[:1],
		{
			{Title: "a b c", Preconditions: "N/A", Steps: []string{"x", "y"}, ExpectedResult: "ok ok ok"},
		},
	}

	for _, cases := range inputs {
		report := s.Score(cases)

		assert.GreaterOrEqual(t, report.Score, 0.0)
		assert.LessOrEqual(t, report.Score, 1.0)
		for _, dim := range []float64{
			report.Dimensions.Quantity,
			report.Dimensions.StepsDepth,
			report.Dimensions.Preconditions,
			report.Dimensions.ExpectedResults,
			report.Dimensions.Diversity,
		} {
			assert.GreaterOrEqual(t, dim, 0.0)
			assert.LessOrEqual(t, dim, 1.0)
		}
	}
}

func TestPreconditionScore(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"generic boilerplate", "The user is logged in", 0.2},
		{"not applicable marker", "N/A", 0.2},
		{"spanish none", "ninguna", 0.2},
		{"specific and long", "Usuario con tarjeta de crédito vencida registrada", 1.0},
		{"specific but short", "Usuario registrado", 0.6},
		{"accented text counts runes", "Sesión única activada ya", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.preconditionScore(tt.input), 1e-9)
		})
	}
}

func TestExpectedResultScore(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"substantial and specific", "El sistema envía el correo de confirmación en menos de un minuto", 1.0},
		{"no vague words but thin", "Se envía el correo", 0.7},
		{"one vague word", "La pantalla carga correcto y muestra los datos del usuario final", 0.7},
		{"two vague words", "Todo funciona bien", 0.3},
		{"vague word case insensitive", "FUNCIONA BIEN el flujo", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.expectedResultScore(tt.input), 1e-9)
		})
	}
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := "vague_words:\n  - always\n  - rapidito\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"always", "rapidito"}, lex.VagueWords)
	// Unset lists fall back to the defaults.
	assert.Equal(t, DefaultLexicon().GenericPreconditions, lex.GenericPreconditions)

	s, err := NewScorer(lex)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, s.expectedResultScore("always rapidito"), 1e-9)
	assert.InDelta(t, 0.7, s.expectedResultScore("El sistema funciona"), 1e-9)
}

func TestLoadLexicon_MissingFile(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
