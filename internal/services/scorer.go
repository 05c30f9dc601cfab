package services

import (
	"math"
	"strconv"
	"strings"

	"areetampo/circular-economy/internal/models"
)

// GuidanceWeights are the nominal per-criterion weights shown in the product's
// guidance copy. Score does not use them: the implemented policy is an equal
// weighted mean, and the two disagree on purpose until the product decides.
var GuidanceWeights = map[models.ParameterKey]int{
	models.PublicParticipation: 15,
	models.Infrastructure:      15,
	models.MarketPrice:         20,
	models.Maintenance:         10,
	models.Uniqueness:          10,
	models.SizeEfficiency:      10,
	models.ChemicalSafety:      10,
	models.TechReadiness:       10,
}

var criterionLabels = map[models.ParameterKey]string{
	models.PublicParticipation: "Public Participation",
	models.Infrastructure:      "Infrastructure",
	models.MarketPrice:         "Market Price",
	models.Maintenance:         "Maintenance",
	models.Uniqueness:          "Uniqueness",
	models.SizeEfficiency:      "Size Efficiency",
	models.ChemicalSafety:      "Chemical Safety",
	models.TechReadiness:       "Technology Readiness",
}

// Criteria lists the scoring criteria in canonical order.
func Criteria() []models.Criterion {
	out := make([]models.Criterion, 0, len(models.ParameterKeys))
	for _, key := range models.ParameterKeys {
		out = append(out, models.Criterion{
			Key:            key,
			Label:          criterionLabels[key],
			GuidanceWeight: GuidanceWeights[key],
		})
	}
	return out
}

// Score maps raw parameter values to a bounded overall score. It never fails:
// missing or non-numeric values count as 0 and everything is clamped to [0,100].
func Score(params map[string]interface{}) models.ScoreResult {
	subScores := make(models.SubScores, len(models.ParameterKeys))
	var sum float64

	for _, key := range models.ParameterKeys {
		value := clampScore(coerceNumber(params[string(key)]))
		sum += value
		subScores[key] = roundHalfUp(value)
	}

	return models.ScoreResult{
		OverallScore: roundHalfUp(sum / float64(len(models.ParameterKeys))),
		SubScores:    subScores,
	}
}

// ScoreValidated scores an already validated parameter set.
func ScoreValidated(input *ValidatedInput) models.ScoreResult {
	params := make(map[string]interface{}, len(input.Parameters))
	for key, value := range input.Parameters {
		params[string(key)] = value
	}
	return Score(params)
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func coerceNumber(raw interface{}) float64 {
	if s, ok := raw.(string); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	}
	if f, ok := numericValue(raw); ok {
		return f
	}
	return 0
}
