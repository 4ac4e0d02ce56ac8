package interview

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, interview *Interview) error
	GetByID(ctx context.Context, id uint) (*Interview, error)
	Update(ctx context.Context, interview *Interview) error
	ListByApplication(ctx context.Context, applicationID uint) ([]Interview, error)
	ListWithFilters(ctx context.Context, filter InterviewFilter, scopeRegionIDs []uint) ([]Interview, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, interview *Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Interview, error) {
	var interview Interview
	if err := r.db.WithContext(ctx).First(&interview, id).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *repository) Update(ctx context.Context, interview *Interview) error {
	return r.db.WithContext(ctx).Save(interview).Error
}

func (r *repository) ListByApplication(ctx context.Context, applicationID uint) ([]Interview, error) {
	var interviews []Interview
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("scheduled_at DESC").
		Find(&interviews).Error
	return interviews, err
}

func (r *repository) ListWithFilters(ctx context.Context, filter InterviewFilter, scopeRegionIDs []uint) ([]Interview, int64, error) {
	query := r.db.WithContext(ctx).Model(&Interview{})

	if len(scopeRegionIDs) > 0 {
		query = query.Where(
			"district_id IN ? OR area_id IN ? OR unit_id IN ?",
			scopeRegionIDs, scopeRegionIDs, scopeRegionIDs,
		)
	}
	if filter.ApplicationID != nil {
		query = query.Where("application_id = ?", *filter.ApplicationID)
	}
	if filter.InterviewerID != nil {
		query = query.Where("interviewer_id = ?", *filter.InterviewerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	var interviews []Interview
	err := query.Order("scheduled_at ASC").Limit(filter.Limit).Offset(offset).Find(&interviews).Error
	return interviews, total, err
}
