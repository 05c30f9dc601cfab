package services

import (
	"strings"
)

const hempIdea = "We turn agricultural hemp stalks, a waste stream from local fibre farms, into " +
	"molded compostable packaging trays for grocery chains. The trays replace expanded polystyrene, " +
	"break down in municipal compost within ninety days and are produced with a closed-loop water " +
	"system powered by on-site biogas."

func allFifty(overrides map[string]interface{}) map[string]interface{} {
	params := map[string]interface{}{
		"public_participation": 50.0,
		"infrastructure":       50.0,
		"market_price":         50.0,
		"maintenance":          50.0,
		"uniqueness":           50.0,
		"size_efficiency":      50.0,
		"chemical_safety":      50.0,
		"tech_readiness":       50.0,
	}
	for k, v := range overrides {
		params[k] = v
	}
	return params
}

func longText(char string) string {
	return strings.Repeat(char, 250)
}
