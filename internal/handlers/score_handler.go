package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/models"
	"areetampo/circular-economy/internal/repositories"
	"areetampo/circular-economy/internal/services"
)

type ScoreHandler struct {
	pipeline services.PipelineRunner
	repo     repositories.AssessmentRepository
	log      *zap.Logger
}

func NewScoreHandler(
	pipeline services.PipelineRunner,
	repo repositories.AssessmentRepository,
	log *zap.Logger,
) *ScoreHandler {
	return &ScoreHandler{
		pipeline: pipeline,
		repo:     repo,
		log:      log,
	}
}

// HandleScore handles POST /score
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	req, err := bindScoreRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.run(req.Idea, req.Parameters)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// run executes the pipeline detached from the client connection and records
// the result in the history store.
func (h *ScoreHandler) run(idea string, params map[string]interface{}) (*models.PipelineResponse, error) {
	resp, err := h.pipeline.Run(context.Background(), services.Submission{Idea: idea, Parameters: params})
	if err != nil {
		return nil, err
	}

	overall := resp.OverallScore
	record := &models.Assessment{
		ID:           uuid.New(),
		Idea:         idea,
		Parameters:   params,
		Status:       models.StatusCompleted,
		OverallScore: &overall,
		SubScores:    resp.SubScores,
		Audit:        resp.Audit,
		SimilarCases: resp.SimilarCases,
	}
	if err := h.repo.Create(record); err != nil {
		h.log.Warn("⚠️ Failed to store assessment history", zap.Error(err))
	}

	return resp, nil
}
