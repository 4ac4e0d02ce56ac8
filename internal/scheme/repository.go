package scheme

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, scheme *Scheme) error
	GetByID(ctx context.Context, id uint) (*Scheme, error)
	Update(ctx context.Context, scheme *Scheme) error
	Deactivate(ctx context.Context, id uint) error
	ListWithFilters(ctx context.Context, filter SchemeFilter) ([]Scheme, int64, error)
	ListByProject(ctx context.Context, projectID uint) ([]Scheme, error)
	ListActive(ctx context.Context) ([]Scheme, error)
	CountApplications(ctx context.Context, schemeID uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, scheme *Scheme) error {
	return r.db.WithContext(ctx).Create(scheme).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Scheme, error) {
	var scheme Scheme
	if err := r.db.WithContext(ctx).First(&scheme, id).Error; err != nil {
		return nil, err
	}
	return &scheme, nil
}

func (r *repository) Update(ctx context.Context, scheme *Scheme) error {
	return r.db.WithContext(ctx).Save(scheme).Error
}

func (r *repository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&Scheme{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "status": "closed"}).Error
}

func (r *repository) ListWithFilters(ctx context.Context, filter SchemeFilter) ([]Scheme, int64, error) {
	query := r.db.WithContext(ctx).Model(&Scheme{}).Where("is_active = ?", true)

	if filter.SchemeType != "" {
		query = query.Where("scheme_type = ?", filter.SchemeType)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
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

	var schemes []Scheme
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&schemes).Error
	return schemes, total, err
}

func (r *repository) ListByProject(ctx context.Context, projectID uint) ([]Scheme, error) {
	var schemes []Scheme
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Find(&schemes).Error
	return schemes, err
}

func (r *repository) ListActive(ctx context.Context) ([]Scheme, error) {
	var schemes []Scheme
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND status = ?", true, "open").
		Order("name ASC").
		Find(&schemes).Error
	return schemes, err
}

func (r *repository) CountApplications(ctx context.Context, schemeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("applications").
		Where("scheme_id = ?", schemeID).
		Count(&count).Error
	return count, err
}
