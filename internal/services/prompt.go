package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"areetampo/circular-economy/internal/models"
)

const noMatchesPlaceholder = "No direct matches found"

const auditSystemPrompt = `You are a circular-economy investment auditor reviewing a business idea.

Respond with a single JSON object and nothing else. No markdown, no prose outside the object.
The object MUST have exactly this shape:
{
  "confidence_score": <number 0-100, how credible the idea and its self-reported scores are>,
  "is_junk_input": <true if the idea is placeholder, gibberish or not a business idea>,
  "audit_verdict": "<one or two sentence verdict>",
  "comparative_analysis": "<how the idea compares with the similar cases provided>",
  "integrity_gaps": [
    {"issue": "<what looks overstated or unsupported>", "evidence_source_id": <1-based number of the match that shows it, or null>}
  ],
  "technical_recommendations": ["<concrete next step>"]
}

Rules:
1. If the idea is junk, set "is_junk_input" to true and "confidence_score" to 0.
2. Compare the self-reported sub-scores with the similar cases. Whenever a sub-score is implausibly
   higher than what similar successful cases achieved, add an Integrity Gap naming the criterion.
3. If no similar cases are provided, say so in "comparative_analysis" and do not invent matches.
4. Use empty arrays, never null, when there are no gaps or recommendations.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemPrompt returns the fixed audit instruction.
func (pb *PromptBuilder) SystemPrompt() string {
	return auditSystemPrompt
}

// BuildAuditPrompt renders the idea, its computed scores and the retrieved cases.
func (pb *PromptBuilder) BuildAuditPrompt(idea string, score models.ScoreResult, cases []models.RetrievedCase) (string, error) {
	scoreJSON, err := json.Marshal(models.ScoreResult{
		OverallScore: score.OverallScore,
		SubScores:    score.SubScores.Filtered(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode score result: %w", err)
	}

	return fmt.Sprintf(`BUSINESS IDEA:
%s

SELF-REPORTED SCORES (0-100):
%s

SIMILAR CASES:
%s`, strings.TrimSpace(idea), scoreJSON, FormatCaseDigest(cases)), nil
}

// FormatCaseDigest renders one line per retrieved case.
func FormatCaseDigest(cases []models.RetrievedCase) string {
	if len(cases) == 0 {
		return noMatchesPlaceholder
	}

	parts := make([]string, 0, len(cases))
	for _, c := range cases {
		parts = append(parts, fmt.Sprintf("- Match (Score: %.2f): %s", c.Similarity, strings.TrimSpace(c.Content)))
	}
	return strings.Join(parts, "\n")
}
