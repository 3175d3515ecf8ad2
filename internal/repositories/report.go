package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"deepwork/report-generator/internal/models"
)

type ReportRepository interface {
	Create(report *models.Report) error
	FindByID(id uuid.UUID) (*models.Report, error)
	UpdateStatus(id uuid.UUID, status models.ReportStatus) error
	UpdateResult(id uuid.UUID, pdfPath string, suitabilityScore float64) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.Report, error)
	FindCompleted(limit int) ([]models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.Report) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) FindByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("report not found")
		}
		return nil, fmt.Errorf("failed to find report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) UpdateStatus(id uuid.UUID, status models.ReportStatus) error {
	result := r.db.Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("report not found")
	}

	return nil
}

func (r *reportRepository) UpdateResult(id uuid.UUID, pdfPath string, suitabilityScore float64) error {
	result := r.db.Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            models.StatusCompleted,
			"pdf_path":          pdfPath,
			"suitability_score": suitabilityScore,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("report not found")
	}

	return nil
}

func (r *reportRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Report{}).
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
		return fmt.Errorf("report not found")
	}

	return nil
}

func (r *reportRepository) FindPendingJobs(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&reports).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return reports, nil
}

func (r *reportRepository) FindCompleted(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.
		Where("status = ?", models.StatusCompleted).
		Order("updated_at DESC").
		Limit(limit).
		Find(&reports).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find completed reports: %w", err)
	}

	return reports, nil
}
