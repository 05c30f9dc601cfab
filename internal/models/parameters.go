package models

import (
	"bytes"
	"encoding/json"
)

// ParameterKey identifies one of the eight fixed scoring criteria.
type ParameterKey string

const (
	PublicParticipation ParameterKey = "public_participation"
	Infrastructure      ParameterKey = "infrastructure"
	MarketPrice         ParameterKey = "market_price"
	Maintenance         ParameterKey = "maintenance"
	Uniqueness          ParameterKey = "uniqueness"
	SizeEfficiency      ParameterKey = "size_efficiency"
	ChemicalSafety      ParameterKey = "chemical_safety"
	TechReadiness       ParameterKey = "tech_readiness"
)

// ParameterKeys is the canonical, closed, ordered set of criteria.
var ParameterKeys = []ParameterKey{
	PublicParticipation,
	Infrastructure,
	MarketPrice,
	Maintenance,
	Uniqueness,
	SizeEfficiency,
	ChemicalSafety,
	TechReadiness,
}

func IsParameterKey(key string) bool {
	for _, k := range ParameterKeys {
		if string(k) == key {
			return true
		}
	}
	return false
}

// SubScores maps every criterion to its clamped integer score.
type SubScores map[ParameterKey]int

// Filtered returns a copy holding exactly the canonical keys; missing keys become 0.
func (s SubScores) Filtered() SubScores {
	out := make(SubScores, len(ParameterKeys))
	for _, key := range ParameterKeys {
		out[key] = s[key]
	}
	return out
}

// MarshalJSON writes the canonical keys in canonical order and nothing else.
func (s SubScores) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range ParameterKeys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(key))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s[key])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type ScoreResult struct {
	OverallScore int       `json:"overall_score"`
	SubScores    SubScores `json:"sub_scores"`
}

// Criterion describes a scoring criterion for display.
type Criterion struct {
	Key            ParameterKey `json:"key"`
	Label          string       `json:"label"`
	GuidanceWeight int          `json:"guidance_weight"`
}
