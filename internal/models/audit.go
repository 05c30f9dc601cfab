package models

type IntegrityGap struct {
	Issue            string `json:"issue"`
	EvidenceSourceID *float64 `json:"evidence_source_id"`
}

// AuditResult is the fixed-shape commentary returned by the reasoning service.
type AuditResult struct {
	ConfidenceScore          float64        `json:"confidence_score"`
	IsJunkInput              bool           `json:"is_junk_input"`
	AuditVerdict             string         `json:"audit_verdict"`
	ComparativeAnalysis      string         `json:"comparative_analysis"`
	IntegrityGaps            []IntegrityGap `json:"integrity_gaps"`
	TechnicalRecommendations []string       `json:"technical_recommendations"`
}

// RetrievedCase is one nearest-neighbour match from the reference corpus.
type RetrievedCase struct {
	ID         string                 `json:"id,omitempty"`
	Content    string                 `json:"content"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type PipelineResponse struct {
	OverallScore int             `json:"overall_score"`
	SubScores    SubScores       `json:"sub_scores"`
	Audit        *AuditResult    `json:"audit"`
	SimilarCases []RetrievedCase `json:"similar_cases"`
}
