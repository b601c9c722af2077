package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClassificationSchema is the fixed vocabulary a model judgment is validated
// against. It is built once at startup and passed by value into the parser;
// nothing mutates it after that.
type ClassificationSchema struct {
	Levels   []string `yaml:"levels"` // ordered lowest to highest severity
	MinScore int      `yaml:"min_score"`
	MaxScore int      `yaml:"max_score"`
}

// DefaultSchema returns the NYU data-classification vocabulary the analysis
// prompt is written against.
func DefaultSchema() ClassificationSchema {
	return ClassificationSchema{
		Levels: []string{
			"Low Risk (Level 1)",
			"Moderate Risk (Level 2)",
			"High Risk (Level 3)",
		},
		MinScore: 1,
		MaxScore: 10,
	}
}

// LoadSchema reads a schema override file. Unset numeric bounds fall back to
// the defaults.
func LoadSchema(path string) (ClassificationSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClassificationSchema{}, fmt.Errorf("read schema: %w", err)
	}
	var s ClassificationSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return ClassificationSchema{}, fmt.Errorf("parse schema yaml: %w", err)
	}
	if len(s.Levels) == 0 {
		return ClassificationSchema{}, fmt.Errorf("schema %s defines no levels", path)
	}
	def := DefaultSchema()
	if s.MinScore == 0 {
		s.MinScore = def.MinScore
	}
	if s.MaxScore == 0 {
		s.MaxScore = def.MaxScore
	}
	if s.MinScore > s.MaxScore {
		return ClassificationSchema{}, fmt.Errorf("schema %s has min_score %d > max_score %d", path, s.MinScore, s.MaxScore)
	}
	return s, nil
}

// ScoreInRange reports whether a score falls inside the schema's bounds.
func (s ClassificationSchema) ScoreInRange(score int) bool {
	return score >= s.MinScore && score <= s.MaxScore
}

// MatchLevel resolves a raw level string from a model reply to a schema
// level. Matching is case-insensitive and tolerates the common short forms
// models emit: the bare leading word of a level ("high" for
// "High Risk (Level 3)") and a bare "level N" or "N" ordinal.
func (s ClassificationSchema) MatchLevel(raw string) (string, bool) {
	token := normalizeTextToken(raw)
	if token == "" {
		return "", false
	}

	for _, level := range s.Levels {
		if normalizeTextToken(level) == token {
			return level, true
		}
	}

	// "high" matches "High Risk (Level 3)", and "low risk" matches "low".
	for _, level := range s.Levels {
		normalized := normalizeTextToken(level)
		if strings.HasPrefix(normalized, token) || strings.HasPrefix(token, normalized) {
			return level, true
		}
	}

	// "level 3" or "3" matches the third level.
	ordinal := strings.TrimSpace(strings.TrimPrefix(token, "level"))
	if n, err := strconv.Atoi(ordinal); err == nil && n >= 1 && n <= len(s.Levels) {
		return s.Levels[n-1], true
	}

	return "", false
}

func normalizeTextToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
