package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/models"
	"areetampo/circular-economy/internal/repositories"
	"areetampo/circular-economy/internal/services"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type AssessmentHandler struct {
	pipeline services.PipelineRunner
	repo     repositories.AssessmentRepository
	worker   services.Worker
	log      *zap.Logger
}

func NewAssessmentHandler(
	pipeline services.PipelineRunner,
	repo repositories.AssessmentRepository,
	worker services.Worker,
	log *zap.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		pipeline: pipeline,
		repo:     repo,
		worker:   worker,
		log:      log,
	}
}

// HandleEnqueue handles POST /assessments
func (h *AssessmentHandler) HandleEnqueue(c *fiber.Ctx) error {
	req, err := bindScoreRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	if _, err := h.pipeline.Validate(req.Idea, req.Parameters); err != nil {
		return writeError(c, err)
	}

	assessment := &models.Assessment{
		ID:         uuid.New(),
		Idea:       req.Idea,
		Parameters: req.Parameters,
		Status:     models.StatusQueued,
	}
	if err := h.repo.Create(assessment); err != nil {
		h.log.Error("❌ Failed to create assessment", zap.Error(err))
		return writeError(c, err)
	}

	h.worker.EnqueueJob(assessment.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.EnqueueResponse{
		ID:     assessment.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleList handles GET /assessments
func (h *AssessmentHandler) HandleList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := h.repo.List(page, pageSize)
	if err != nil {
		h.log.Error("❌ Failed to list assessments", zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(models.AssessmentPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	})
}

// HandleGet handles GET /assessments/:id
func (h *AssessmentHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid assessment id",
			Code:  codeInvalidID,
		})
	}

	assessment, err := h.repo.FindByID(id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(assessment)
}

// HandleDelete handles DELETE /assessments/:id
func (h *AssessmentHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid assessment id",
			Code:  codeInvalidID,
		})
	}

	if err := h.repo.Delete(id); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
