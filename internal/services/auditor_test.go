package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"areetampo/circular-economy/internal/logger"
	"areetampo/circular-economy/internal/models"
)

const validAudit = `{
  "confidence_score": 72,
  "is_junk_input": false,
  "audit_verdict": "Plausible with a credible feedstock.",
  "comparative_analysis": "Close to the bagasse tableware case.",
  "integrity_gaps": [{"issue": "market_price above comparable cases", "evidence_source_id": 1}],
  "technical_recommendations": ["Certify EN 13432 compostability"]
}`

func newTestAuditor(r ReasoningService) *AuditGenerator {
	return NewAuditGenerator(r, time.Second, logger.NewNop())
}

func TestAuditGenerator_HappyPath(t *testing.T) {
	q := &queueReasoner{responses: []string{validAudit}}
	cases := []models.RetrievedCase{{Content: "Bagasse tableware plant", Similarity: 0.81}}

	got, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(allFifty(nil)), cases)
	require.NoError(t, err)

	assert.Equal(t, 72.0, got.ConfidenceScore)
	assert.False(t, got.IsJunkInput)
	require.Len(t, got.IntegrityGaps, 1)
	require.NotNil(t, got.IntegrityGaps[0].EvidenceSourceID)
	assert.Equal(t, 1.0, *got.IntegrityGaps[0].EvidenceSourceID)
	assert.Equal(t, []string{"Certify EN 13432 compostability"}, got.TechnicalRecommendations)

	require.Equal(t, 1, q.Calls())
	assert.Contains(t, q.prompts[0], "- Match (Score: 0.81): Bagasse tableware plant")
	assert.Contains(t, q.systems[0], "JSON")
}

func TestAuditGenerator_StripsCodeFences(t *testing.T) {
	q := &queueReasoner{responses: []string{"Here you go:\n```json\n" + validAudit + "\n```"}}

	got, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, 72.0, got.ConfidenceScore)
}

func TestAuditGenerator_RetriesOnceThenSucceeds(t *testing.T) {
	q := &queueReasoner{responses: []string{"I think this idea is great!", validAudit}}

	got, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(nil), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 2, q.Calls())
}

func TestAuditGenerator_NonJSONTwiceIsParseError(t *testing.T) {
	q := &queueReasoner{responses: []string{"not json", "still not json", validAudit}}

	got, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(nil), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuditParse)
	assert.Nil(t, got)
	assert.Equal(t, 2, q.Calls())
}

func TestAuditGenerator_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing field", `{"confidence_score": 50, "is_junk_input": false}`},
		{"wrong type", `{"confidence_score": "high", "is_junk_input": false, "audit_verdict": "", "comparative_analysis": "", "integrity_gaps": [], "technical_recommendations": []}`},
		{"out of range", `{"confidence_score": 140, "is_junk_input": false, "audit_verdict": "", "comparative_analysis": "", "integrity_gaps": [], "technical_recommendations": []}`},
		{"array instead of object", `[1, 2, 3]`},
		{"gap without issue", `{"confidence_score": 50, "is_junk_input": false, "audit_verdict": "", "comparative_analysis": "", "integrity_gaps": [{"evidence_source_id": null}], "technical_recommendations": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &queueReasoner{responses: []string{tt.raw, tt.raw}}
			_, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(nil), nil)
			assert.ErrorIs(t, err, ErrAuditParse)
		})
	}
}

func TestAuditGenerator_TransportErrorIsNotRetried(t *testing.T) {
	q := &queueReasoner{err: errors.New("503 service unavailable")}

	_, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(nil), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationService)
	assert.Equal(t, 1, q.Calls())
}

func TestAuditGenerator_JunkForcesZeroConfidence(t *testing.T) {
	raw := `{"confidence_score": 35, "is_junk_input": true, "audit_verdict": "Not a business idea.", "comparative_analysis": "", "integrity_gaps": null, "technical_recommendations": null}`
	// null arrays fail the schema; the model is asked again and answers properly
	fixed := `{"confidence_score": 35, "is_junk_input": true, "audit_verdict": "Not a business idea.", "comparative_analysis": "", "integrity_gaps": [], "technical_recommendations": []}`
	q := &queueReasoner{responses: []string{raw, fixed}}

	got, err := newTestAuditor(q).GenerateAudit(context.Background(), hempIdea, Score(nil), nil)
	require.NoError(t, err)
	assert.True(t, got.IsJunkInput)
	assert.Equal(t, 0.0, got.ConfidenceScore)
	assert.NotNil(t, got.IntegrityGaps)
	assert.NotNil(t, got.TechnicalRecommendations)
}

func TestParseAuditResult_NullEvidence(t *testing.T) {
	raw := `{"confidence_score": 10.5, "is_junk_input": false, "audit_verdict": "v", "comparative_analysis": "c", "integrity_gaps": [{"issue": "x", "evidence_source_id": null}], "technical_recommendations": []}`

	got, err := parseAuditResult(raw)
	require.NoError(t, err)
	require.Len(t, got.IntegrityGaps, 1)
	assert.Nil(t, got.IntegrityGaps[0].EvidenceSourceID)
	assert.Equal(t, 10.5, got.ConfidenceScore)
}

func TestParseAuditResult_EvidenceNumberForms(t *testing.T) {
	tests := []struct {
		name     string
		evidence string
		want     float64
	}{
		{"integer", "2", 2},
		{"decimal point", "2.0", 2},
		{"exponent", "2e0", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"confidence_score": 60, "is_junk_input": false, "audit_verdict": "v", "comparative_analysis": "c", "integrity_gaps": [{"issue": "x", "evidence_source_id": ` + tt.evidence + `}], "technical_recommendations": []}`

			got, err := parseAuditResult(raw)
			require.NoError(t, err)
			require.NotNil(t, got.IntegrityGaps[0].EvidenceSourceID)
			assert.Equal(t, tt.want, *got.IntegrityGaps[0].EvidenceSourceID)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSON(`prefix {"a":{"b":2}} suffix`))
	assert.Equal(t, "plain", extractJSON("plain"))
}
