package project

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uint) (*Project, error)
	Update(ctx context.Context, project *Project) error
	Archive(ctx context.Context, id uint) error
	ListWithFilters(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)
	GetSummary(ctx context.Context, projectID uint) (*ProjectSummary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Project, error) {
	var project Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) Update(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *repository) Archive(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "status": "archived"}).Error
}

func (r *repository) ListWithFilters(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&Project{}).Where("is_active = ?", true)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	var projects []Project
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&projects).Error
	return projects, total, err
}

// GetSummary aggregates scheme/application counts and disbursed totals for
// the dashboard
func (r *repository) GetSummary(ctx context.Context, projectID uint) (*ProjectSummary, error) {
	summary := &ProjectSummary{ProjectID: projectID}

	if err := r.db.WithContext(ctx).Table("schemes").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Count(&summary.SchemeCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Table("applications").
		Where("project_id = ?", projectID).
		Count(&summary.ApplicationCount).Error; err != nil {
		return nil, err
	}

	var disbursed *float64
	if err := r.db.WithContext(ctx).Table("recurring_payments").
		Select("SUM(amount)").
		Joins("JOIN applications ON applications.id = recurring_payments.application_id").
		Where("applications.project_id = ? AND recurring_payments.status = ?", projectID, "completed").
		Scan(&disbursed).Error; err != nil {
		return nil, err
	}
	if disbursed != nil {
		summary.TotalDisbursed = *disbursed
	}

	return summary, nil
}
