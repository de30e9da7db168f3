// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scoring computes a deterministic 5-dimension quality heuristic
// over validated test cases.
//
// The five dimensions and their weights (summing to 1.0):
//
//	quantity         0.20   penalizes few cases; saturates at 3
//	steps_depth      0.25   mean steps per case; rewards 3+ executable steps
//	preconditions    0.20   penalizes generic or thin preconditions
//	expected_results 0.20   penalizes vague wording ("funciona", "ok", ...)
//	diversity        0.15   unique words across titles (topical coverage)
//
// Scoring is pure: no I/O, no randomness, identical input always yields an
// identical report.
package scoring

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/caseforge/caseforge/services/qaengine/datatypes"
)

// Dimension weights. They must sum to 1.0.
const (
	weightQuantity        = 0.20
	weightStepsDepth      = 0.25
	weightPreconditions   = 0.20
	weightExpectedResults = 0.20
	weightDiversity       = 0.15
)

// Lexicon holds the word lists the scorer penalizes. Both lists are matched
// case-insensitively; vague words as whole words anywhere in the expected
// result, generic preconditions against the entire trimmed field.
type Lexicon struct {
	VagueWords           []string `yaml:"vague_words"`
	GenericPreconditions []string `yaml:"generic_preconditions"`
}

// DefaultLexicon returns the built-in English and Spanish word lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		VagueWords: []string{
			"works", "correct(ly)?", "properly", "fine", "good",
			"ok", "okay", "done", "success",
			"funciona", "correcto", "bien",
		},
		GenericPreconditions: []string{
			"the user is (logged in|on the app|in the system)",
			"n/?a", "none", "ninguna?", "no aplica",
		},
	}
}

// LoadLexicon reads a Lexicon from a YAML file. Empty lists fall back to the
// defaults so a file can override just one of them.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("reading lexicon file: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parsing lexicon file %s: %w", path, err)
	}

	defaults := DefaultLexicon()
	if len(lex.VagueWords) == 0 {
		lex.VagueWords = defaults.VagueWords
	}
	if len(lex.GenericPreconditions) == 0 {
		lex.GenericPreconditions = defaults.GenericPreconditions
	}
	return lex, nil
}

// Scorer evaluates test-case sets against a compiled lexicon.
type Scorer struct {
	vague          *regexp.Regexp
	genericPrecond *regexp.Regexp
}

// NewScorer compiles the lexicon patterns. Entries may be plain words or
// regular expression fragments.
func NewScorer(lex Lexicon) (*Scorer, error) {
	vague, err := regexp.Compile(`(?i)\b(` + strings.Join(lex.VagueWords, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compiling vague-word pattern: %w", err)
	}

	generic, err := regexp.Compile(`(?i)^(` + strings.Join(lex.GenericPreconditions, "|") + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling generic-precondition pattern: %w", err)
	}

	return &Scorer{vague: vague, genericPrecond: generic}, nil
}

// Score computes the quality report for a set of test cases.
//
// Each weighted sub-score contributes to the aggregate; the reported
// dimensions are the sub-scores normalized back to [0, 1]. The label comes
// from the aggregate expressed as a rounded percentage: >= 75 high,
// >= 50 medium, below that needs improvement.
func (s *Scorer) Score(testCases []datatypes.TestCase) datatypes.QualityReport {
	n := float64(len(testCases))
	if n == 0 {
		return datatypes.QualityReport{
			Score: 0,
			Label: datatypes.QualityNeedsImprovement,
		}
	}

	qty := math.Min(n/3, 1.0) * weightQuantity

	var stepsSum float64
	for _, tc := range testCases {
		stepsSum += math.Min(float64(len(tc.Steps))/3, 1.0)
	}
	avgSteps := stepsSum / n
	steps := avgSteps * weightStepsDepth

	var precSum float64
	for _, tc := range testCases {
		precSum += s.preconditionScore(tc.Preconditions)
	}
	prec := precSum / n * weightPreconditions

	var resSum float64
	for _, tc := range testCases {
		resSum += s.expectedResultScore(tc.ExpectedResult)
	}
	res := resSum / n * weightExpectedResults

	words := make(map[string]struct{})
	for _, tc := range testCases {
		for _, w := range strings.Fields(strings.ToLower(tc.Title)) {
			words[w] = struct{}{}
		}
	}
	div := math.Min(float64(len(words))/(n*3), 1.0) * weightDiversity

	total := round4(qty + steps + prec + res + div)

	var label string
	switch pct := math.Round(total * 100); {
	case pct >= 75:
		label = datatypes.QualityHigh
	case pct >= 50:
		label = datatypes.QualityMedium
	default:
		label = datatypes.QualityNeedsImprovement
	}

	return datatypes.QualityReport{
		Score: total,
		Label: label,
		Dimensions: datatypes.QualityDimensions{
			Quantity:        round4(qty / weightQuantity),
			StepsDepth:      round4(avgSteps),
			Preconditions:   round4(prec / weightPreconditions),
			ExpectedResults: round4(res / weightExpectedResults),
			Diversity:       round4(div / weightDiversity),
		},
	}
}

// preconditionScore rates one preconditions field: 0.2 for a generic
// boilerplate phrase, 1.0 for a specific description longer than 25
// characters, 0.6 otherwise. Lengths count runes so accented Spanish text
// is not penalized.
func (s *Scorer) preconditionScore(preconditions string) float64 {
	p := strings.TrimSpace(preconditions)
	if s.genericPrecond.MatchString(p) {
		return 0.2
	}
	if utf8.RuneCountInString(p) > 25 {
		return 1.0
	}
	return 0.6
}

// expectedResultScore rates one expected result: 1.0 when it has no vague
// words and enough substance, 0.7 with at most one vague word, 0.3 beyond.
func (s *Scorer) expectedResultScore(expectedResult string) float64 {
	vagueCount := len(s.vague.FindAllString(expectedResult, -1))
	if vagueCount == 0 && utf8.RuneCountInString(expectedResult) > 35 {
		return 1.0
	}
	if vagueCount <= 1 {
		return 0.7
	}
	return 0.3
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
