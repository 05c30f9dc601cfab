package models

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentStatus string

const (
	StatusQueued     AssessmentStatus = "queued"
	StatusProcessing AssessmentStatus = "processing"
	StatusCompleted  AssessmentStatus = "completed"
	StatusFailed     AssessmentStatus = "failed"
)

// Assessment is a stored pipeline run, kept for the history view.
type Assessment struct {
	ID           uuid.UUID              `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Idea         string                 `gorm:"type:text;not null" json:"idea"`
	Parameters   map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"parameters"`
	Status       AssessmentStatus       `gorm:"type:text;not null;default:'queued'" json:"status"`
	OverallScore *int                   `json:"overall_score,omitempty"`
	SubScores    SubScores              `gorm:"type:jsonb;serializer:json" json:"sub_scores,omitempty"`
	Audit        *AuditResult           `gorm:"type:jsonb;serializer:json" json:"audit,omitempty"`
	SimilarCases []RetrievedCase        `gorm:"type:jsonb;serializer:json" json:"similar_cases,omitempty"`
	ErrorMessage *string                `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Assessment) TableName() string {
	return "assessments"
}
