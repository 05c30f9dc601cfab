package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"areetampo/circular-economy/internal/models"
)

var ErrAssessmentNotFound = errors.New("assessment not found")

type AssessmentRepository interface {
	Create(assessment *models.Assessment) error
	FindByID(id uuid.UUID) (*models.Assessment, error)
	List(page, pageSize int) ([]models.Assessment, int64, error)
	Claim(id uuid.UUID) (bool, error)
	UpdateResult(id uuid.UUID, result *models.PipelineResponse) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int, olderThan time.Duration) ([]models.Assessment, error)
	RequeueStale(lease time.Duration) (int64, error)
	Delete(id uuid.UUID) error
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *models.Assessment) error {
	if err := r.db.Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepository) FindByID(id uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.Where("id = ?", id).First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to find assessment: %w", err)
	}
	return &assessment, nil
}

// List returns one page of assessments, newest first, and the total count.
func (r *assessmentRepository) List(page, pageSize int) ([]models.Assessment, int64, error) {
	var total int64
	if err := r.db.Model(&models.Assessment{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	assessments := []models.Assessment{}
	err := r.db.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&assessments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assessments: %w", err)
	}

	return assessments, total, nil
}

// Claim moves a queued assessment to processing. It returns false when another
// worker already took it.
func (r *assessmentRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim assessment: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *assessmentRepository) UpdateResult(id uuid.UUID, resp *models.PipelineResponse) error {
	overall := resp.OverallScore
	result := r.db.Model(&models.Assessment{}).
		Where("id = ?", id).
		Select("status", "overall_score", "sub_scores", "audit", "similar_cases", "updated_at").
		Updates(&models.Assessment{
			Status:       models.StatusCompleted,
			OverallScore: &overall,
			SubScores:    resp.SubScores,
			Audit:        resp.Audit,
			SimilarCases: resp.SimilarCases,
			UpdatedAt:    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrAssessmentNotFound
	}

	return nil
}

func (r *assessmentRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrAssessmentNotFound
	}

	return nil
}

// FindPendingJobs returns queued assessments that have waited at least olderThan.
func (r *assessmentRepository) FindPendingJobs(limit int, olderThan time.Duration) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.
		Where("status = ? AND created_at <= ?", models.StatusQueued, time.Now().Add(-olderThan)).
		Order("created_at ASC").
		Limit(limit).
		Find(&assessments).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return assessments, nil
}

// RequeueStale returns processing assessments untouched for longer than lease
// to the queue, so a run lost with its worker is picked up again.
func (r *assessmentRepository) RequeueStale(lease time.Duration) (int64, error) {
	result := r.db.Model(&models.Assessment{}).
		Where("status = ? AND updated_at <= ?", models.StatusProcessing, time.Now().Add(-lease)).
		Updates(map[string]interface{}{
			"status":     models.StatusQueued,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale assessments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *assessmentRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Assessment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete assessment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrAssessmentNotFound
	}

	return nil
}
