package region

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, region *Region) error
	GetByID(ctx context.Context, id uint) (*Region, error)
	Update(ctx context.Context, region *Region) error
	ListByParent(ctx context.Context, parentID uint) ([]Region, error)
	ListByType(ctx context.Context, regionType string) ([]Region, error)
	ListWithFilters(ctx context.Context, filter RegionFilter) ([]Region, int64, error)
	ListAllActive(ctx context.Context) ([]Region, error)
	ExistsByCodeAndParent(ctx context.Context, code string, parentID *uint, excludeID uint) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, region *Region) error {
	return r.db.WithContext(ctx).Create(region).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Region, error) {
	var region Region
	err := r.db.WithContext(ctx).First(&region, id).Error
	if err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *repository) Update(ctx context.Context, region *Region) error {
	return r.db.WithContext(ctx).Save(region).Error
}

func (r *repository) ListByParent(ctx context.Context, parentID uint) ([]Region, error) {
	var regions []Region
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&regions).Error
	return regions, err
}

func (r *repository) ListByType(ctx context.Context, regionType string) ([]Region, error) {
	var regions []Region
	err := r.db.WithContext(ctx).
		Where("type = ?", regionType).
		Order("name ASC").
		Find(&regions).Error
	return regions, err
}

func (r *repository) ListWithFilters(ctx context.Context, filter RegionFilter) ([]Region, int64, error) {
	var regions []Region
	var total int64

	query := r.db.WithContext(ctx).Model(&Region{})

	if filter.Type != "" && filter.Type != "all" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchTerm, searchTerm)
	}

	query.Count(&total)

	if filter.Page > 0 && filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		query = query.Offset(offset).Limit(filter.Limit)
	}

	err := query.Order("type ASC, name ASC").Find(&regions).Error
	return regions, total, err
}

func (r *repository) ListAllActive(ctx context.Context) ([]Region, error) {
	var regions []Region
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&regions).Error
	return regions, err
}

func (r *repository) ExistsByCodeAndParent(ctx context.Context, code string, parentID *uint, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Region{}).Where("code = ?", code)

	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	err := query.Count(&count).Error
	return count > 0, err
}
