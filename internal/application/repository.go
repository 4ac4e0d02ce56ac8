package application

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uint) (*Application, error)
	Update(ctx context.Context, app *Application) error
	ListWithFilters(ctx context.Context, filter ApplicationFilter, scopeRegionIDs []uint, projectIDs []uint, schemeIDs []uint) ([]Application, int64, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID uint) ([]Application, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, app *Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Application, error) {
	var app Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) Update(ctx context.Context, app *Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// ListWithFilters applies user-supplied filters plus the caller's resolved
// scope. Empty scope slices mean global access (no restriction); non-empty
// slices restrict to matching region/project/scheme ids.
func (r *repository) ListWithFilters(ctx context.Context, filter ApplicationFilter, scopeRegionIDs []uint, projectIDs []uint, schemeIDs []uint) ([]Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&Application{})

	if len(scopeRegionIDs) > 0 {
		query = query.Where(
			"district_id IN ? OR area_id IN ? OR unit_id IN ?",
			scopeRegionIDs, scopeRegionIDs, scopeRegionIDs,
		)
	}
	if len(projectIDs) > 0 {
		query = query.Where("project_id IN ?", projectIDs)
	}
	if len(schemeIDs) > 0 {
		query = query.Where("scheme_id IN ?", schemeIDs)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SchemeID != nil {
		query = query.Where("scheme_id = ?", *filter.SchemeID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.BeneficiaryID != nil {
		query = query.Where("beneficiary_id = ?", *filter.BeneficiaryID)
	}
	if filter.DistrictID != nil {
		query = query.Where("district_id = ?", *filter.DistrictID)
	}
	if filter.AreaID != nil {
		query = query.Where("area_id = ?", *filter.AreaID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(purpose) LIKE ?", search)
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

	var apps []Application
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&apps).Error
	return apps, total, err
}

func (r *repository) ListByBeneficiary(ctx context.Context, beneficiaryID uint) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Where("beneficiary_id = ?", beneficiaryID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Application{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
