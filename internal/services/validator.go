package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"areetampo/circular-economy/internal/models"
)

const (
	// MinSubmissionLength is the product-quality bar for a description.
	MinSubmissionLength = 200
	// MinNonJunkLength is the garbage floor of the cheap junk pre-filter.
	MinNonJunkLength = 5
)

type ValidatedInput struct {
	Idea       string
	Parameters map[models.ParameterKey]float64
}

// InputValidator rejects malformed or junk submissions before any paid call is made.
type InputValidator struct {
	minSubmissionLength int
	strictRange         bool
}

func NewInputValidator(minSubmissionLength int, strictRange bool) *InputValidator {
	if minSubmissionLength < MinNonJunkLength {
		minSubmissionLength = MinNonJunkLength
	}
	return &InputValidator{
		minSubmissionLength: minSubmissionLength,
		strictRange:         strictRange,
	}
}

func (v *InputValidator) Validate(idea string, params map[string]interface{}) (*ValidatedInput, error) {
	trimmed := strings.TrimSpace(idea)
	if trimmed == "" {
		return nil, NewValidationError(ErrCodeMissingField, "idea_or_problem_and_solution", "idea description is required")
	}
	if params == nil {
		return nil, NewValidationError(ErrCodeMissingField, "parameters", "parameters are required")
	}

	length := utf8.RuneCountInString(trimmed)
	if length < v.minSubmissionLength {
		return nil, NewValidationError(ErrCodeTooShort, "idea_or_problem_and_solution",
			fmt.Sprintf("description must be at least %d characters, got %d", v.minSubmissionLength, length))
	}
	if IsJunkIdea(trimmed) {
		return nil, NewValidationError(ErrCodeJunkInput, "idea_or_problem_and_solution",
			"description looks like placeholder or junk text")
	}

	values := make(map[models.ParameterKey]float64, len(models.ParameterKeys))
	for _, key := range models.ParameterKeys {
		raw, ok := params[string(key)]
		if !ok || raw == nil {
			return nil, NewValidationError(ErrCodeParameterOutOfRange, string(key), "parameter is required")
		}
		value, ok := numericValue(raw)
		if !ok {
			return nil, NewValidationError(ErrCodeParameterOutOfRange, string(key), "parameter must be a number")
		}
		if v.strictRange && (value < 0 || value > 100) {
			return nil, NewValidationError(ErrCodeParameterOutOfRange, string(key),
				fmt.Sprintf("parameter must be between 0 and 100, got %v", value))
		}
		values[key] = value
	}

	return &ValidatedInput{Idea: idea, Parameters: values}, nil
}

// IsJunkIdea is the cheap local junk filter: too short, or one character repeated.
func IsJunkIdea(idea string) bool {
	trimmed := strings.TrimSpace(idea)
	if utf8.RuneCountInString(trimmed) < MinNonJunkLength {
		return true
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	for _, r := range trimmed {
		if r != first {
			return false
		}
	}
	return true
}

// numericValue accepts JSON numbers and Go numeric types only.
func numericValue(raw interface{}) (float64, bool) {
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
