package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"areetampo/circular-economy/internal/logger"
	"areetampo/circular-economy/internal/models"
)

type panicReasoner struct{}

func (panicReasoner) Complete(context.Context, string, string) (string, error) {
	panic("nil pointer in provider")
}

type pipelineDeps struct {
	emb      *fakeEmbedder
	store    *fakeStore
	reasoner ReasoningService
}

func newTestPipeline(d pipelineDeps) *Pipeline {
	log := logger.NewNop()
	retriever := NewRetriever(d.emb, d.store, time.Second, 200*time.Millisecond, log)
	auditor := NewAuditGenerator(d.reasoner, time.Second, log)
	return NewPipeline(NewInputValidator(MinSubmissionLength, false), retriever, auditor, DefaultTopK, log)
}

func referenceCases() []models.RetrievedCase {
	return []models.RetrievedCase{
		{ID: "1", Content: "Bagasse tableware plant", Similarity: 0.71},
		{ID: "2", Content: "Mycelium packaging pilot", Similarity: 0.88},
		{ID: "3", Content: "Seaweed film startup", Similarity: 0.64},
		{ID: "4", Content: "Cork recycling", Similarity: 0.22},
	}
}

func TestPipeline_HempPackagingScenario(t *testing.T) {
	q := &queueReasoner{responses: []string{validAudit}}
	d := pipelineDeps{
		emb:      &fakeEmbedder{vector: []float32{0.1, 0.2}},
		store:    &fakeStore{cases: referenceCases()},
		reasoner: q,
	}

	resp, err := newTestPipeline(d).Run(context.Background(), Submission{
		Idea:       hempIdea,
		Parameters: allFifty(map[string]interface{}{"market_price": 70.0}),
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resp.OverallScore, 50)
	assert.LessOrEqual(t, resp.OverallScore, 60)
	assert.Equal(t, 70, resp.SubScores[models.MarketPrice])
	assert.LessOrEqual(t, len(resp.SimilarCases), 3)
	assert.Equal(t, "2", resp.SimilarCases[0].ID)
	require.NotNil(t, resp.Audit)
	assert.False(t, resp.Audit.IsJunkInput)

	assert.Equal(t, 1, d.emb.Calls())
	assert.Equal(t, 1, d.store.Calls())
	assert.Equal(t, 1, q.Calls())
}

func TestPipeline_ResponseShape(t *testing.T) {
	d := pipelineDeps{
		emb:      &fakeEmbedder{vector: []float32{0.1}},
		store:    &fakeStore{cases: referenceCases()},
		reasoner: &queueReasoner{responses: []string{validAudit}},
	}

	resp, err := newTestPipeline(d).Run(context.Background(), Submission{
		Idea:       hempIdea,
		Parameters: allFifty(map[string]interface{}{"carbon_credits": 99.0}),
	})
	require.NoError(t, err)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.ElementsMatch(t, []string{"overall_score", "sub_scores", "audit", "similar_cases"}, keysOf(decoded))

	var sub map[string]int
	require.NoError(t, json.Unmarshal(decoded["sub_scores"], &sub))
	assert.Len(t, sub, 8)
	assert.NotContains(t, sub, "carbon_credits")
}

func keysOf(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPipeline_JunkMakesNoExternalCalls(t *testing.T) {
	tests := []struct {
		name string
		idea string
		code ErrorCode
	}{
		{"repeated character", longText("x"), ErrCodeJunkInput},
		{"too short", "abc", ErrCodeTooShort},
		{"blank", "   ", ErrCodeMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &queueReasoner{responses: []string{validAudit}}
			d := pipelineDeps{emb: &fakeEmbedder{vector: []float32{1}}, store: &fakeStore{}, reasoner: q}

			resp, err := newTestPipeline(d).Run(context.Background(), Submission{Idea: tt.idea, Parameters: allFifty(nil)})
			require.Error(t, err)
			assert.Nil(t, resp)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.code, vErr.Code)

			assert.Equal(t, 0, d.emb.Calls())
			assert.Equal(t, 0, d.store.Calls())
			assert.Equal(t, 0, q.Calls())
		})
	}
}

func TestPipeline_RetrievalDegradation(t *testing.T) {
	q := &queueReasoner{responses: []string{validAudit}}
	d := pipelineDeps{
		emb:      &fakeEmbedder{vector: []float32{0.1}},
		store:    &fakeStore{err: errors.New("qdrant unavailable")},
		reasoner: q,
	}

	resp, err := newTestPipeline(d).Run(context.Background(), Submission{Idea: hempIdea, Parameters: allFifty(nil)})
	require.NoError(t, err)

	assert.NotNil(t, resp.SimilarCases)
	assert.Empty(t, resp.SimilarCases)
	require.Equal(t, 1, q.Calls())
	assert.Contains(t, q.prompts[0], "No direct matches found")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"similar_cases":[]`)
}

func TestPipeline_InfrastructureFailures(t *testing.T) {
	tests := []struct {
		name      string
		deps      pipelineDeps
		wantStage string
		wantErr   error
	}{
		{
			name: "embedding failure",
			deps: pipelineDeps{
				emb:      &fakeEmbedder{err: errors.New("invalid api key")},
				store:    &fakeStore{},
				reasoner: &queueReasoner{responses: []string{validAudit}},
			},
			wantStage: StageRetrieve,
			wantErr:   ErrEmbeddingService,
		},
		{
			name: "unparseable audit",
			deps: pipelineDeps{
				emb:      &fakeEmbedder{vector: []float32{0.1}},
				store:    &fakeStore{},
				reasoner: &queueReasoner{responses: []string{"nope", "nope"}},
			},
			wantStage: StageAudit,
			wantErr:   ErrAuditParse,
		},
		{
			name: "generation transport failure",
			deps: pipelineDeps{
				emb:      &fakeEmbedder{vector: []float32{0.1}},
				store:    &fakeStore{},
				reasoner: &queueReasoner{err: context.DeadlineExceeded},
			},
			wantStage: StageAudit,
			wantErr:   ErrGenerationService,
		},
		{
			name: "panic in provider",
			deps: pipelineDeps{
				emb:      &fakeEmbedder{vector: []float32{0.1}},
				store:    &fakeStore{},
				reasoner: panicReasoner{},
			},
			wantStage: StageAudit,
			wantErr:   ErrUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newTestPipeline(tt.deps).Run(context.Background(), Submission{Idea: hempIdea, Parameters: allFifty(nil)})
			require.Error(t, err)
			assert.Nil(t, resp)

			var pErr *PipelineError
			require.True(t, errors.As(err, &pErr))
			assert.Equal(t, tt.wantStage, pErr.Stage)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantErr.Error(), pErr.Code())
		})
	}
}

func TestPipeline_AuditWaitsForRetrieval(t *testing.T) {
	q := &queueReasoner{responses: []string{validAudit}}
	d := pipelineDeps{
		emb:      &fakeEmbedder{vector: []float32{0.1}},
		store:    &fakeStore{cases: referenceCases()},
		reasoner: q,
	}

	_, err := newTestPipeline(d).Run(context.Background(), Submission{Idea: hempIdea, Parameters: allFifty(nil)})
	require.NoError(t, err)

	require.Len(t, q.prompts, 1)
	assert.Contains(t, q.prompts[0], "- Match (Score: 0.88): Mycelium packaging pilot")
	assert.Contains(t, q.prompts[0], `"overall_score":50`)
	assert.NotContains(t, q.prompts[0], "Cork recycling")
}

func TestAsPipelineError(t *testing.T) {
	err := asPipelineError(StageAudit, errors.New("boom"))
	var pErr *PipelineError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, StageAudit, pErr.Stage)
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.Equal(t, "UNEXPECTED_ERROR", pErr.Code())
}
