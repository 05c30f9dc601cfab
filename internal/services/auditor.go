package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/metrics"
	"areetampo/circular-economy/internal/models"
)

const auditResultSchema = `{
  "type": "object",
  "required": [
    "confidence_score",
    "is_junk_input",
    "audit_verdict",
    "comparative_analysis",
    "integrity_gaps",
    "technical_recommendations"
  ],
  "properties": {
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 100},
    "is_junk_input": {"type": "boolean"},
    "audit_verdict": {"type": "string"},
    "comparative_analysis": {"type": "string"},
    "integrity_gaps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["issue"],
        "properties": {
          "issue": {"type": "string"},
          "evidence_source_id": {"type": ["number", "null"]}
        }
      }
    },
    "technical_recommendations": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

// auditAttempts is one call plus a single re-ask on an unusable answer.
const auditAttempts = 2

var auditSchema = mustCompileSchema(auditResultSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid audit schema: %v", err))
	}
	return s
}

type AuditGenerator struct {
	reasoner ReasoningService
	prompts  *PromptBuilder
	timeout  time.Duration
	log      *zap.Logger
}

func NewAuditGenerator(reasoner ReasoningService, timeout time.Duration, log *zap.Logger) *AuditGenerator {
	return &AuditGenerator{
		reasoner: reasoner,
		prompts:  NewPromptBuilder(),
		timeout:  timeout,
		log:      log,
	}
}

// GenerateAudit asks the reasoning service for commentary on a scored idea and
// returns it only when it matches the AuditResult contract.
func (a *AuditGenerator) GenerateAudit(ctx context.Context, idea string, score models.ScoreResult, cases []models.RetrievedCase) (*models.AuditResult, error) {
	userPrompt, err := a.prompts.BuildAuditPrompt(idea, score, cases)
	if err != nil {
		return nil, err
	}
	systemPrompt := a.prompts.SystemPrompt()

	var lastErr error
	for attempt := 1; attempt <= auditAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		raw, err := a.reasoner.Complete(callCtx, systemPrompt, userPrompt)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationService, err)
		}

		result, err := parseAuditResult(raw)
		if err == nil {
			a.log.Debug("📝 Audit parsed", zap.Int("attempt", attempt), zap.Bool("junk", result.IsJunkInput))
			return result, nil
		}

		lastErr = err
		if attempt < auditAttempts {
			metrics.AuditParseRetries.Inc()
			a.log.Warn("⚠️ Audit response did not match schema, asking again",
				zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrAuditParse, lastErr)
}

func parseAuditResult(raw string) (*models.AuditResult, error) {
	jsonStr := strings.TrimSpace(extractJSON(raw))
	if jsonStr == "" {
		return nil, errors.New("empty response")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	validation, err := auditSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !validation.Valid() {
		msgs := make([]string, 0, len(validation.Errors()))
		for _, e := range validation.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("response does not match audit schema: %s", strings.Join(msgs, "; "))
	}

	var result models.AuditResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to decode audit: %w", err)
	}

	if result.IsJunkInput {
		result.ConfidenceScore = 0
	}
	if result.IntegrityGaps == nil {
		result.IntegrityGaps = []models.IntegrityGap{}
	}
	if result.TechnicalRecommendations == nil {
		result.TechnicalRecommendations = []string{}
	}
	return &result, nil
}

// extractJSON strips markdown fences and surrounding prose from a model answer.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
