package beneficiary

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, profile *BeneficiaryProfile) error
	GetByUserID(ctx context.Context, userID uint) (*BeneficiaryProfile, error)
	ListWithFilters(ctx context.Context, filter BeneficiaryFilter, scopeRegionIDs []uint) ([]BeneficiaryProfile, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert creates the profile on first save and updates it after
func (r *repository) Upsert(ctx context.Context, profile *BeneficiaryProfile) error {
	var existing BeneficiaryProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", profile.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(profile).Error
	}
	if err != nil {
		return err
	}
	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *repository) GetByUserID(ctx context.Context, userID uint) (*BeneficiaryProfile, error) {
	var profile BeneficiaryProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ListWithFilters(ctx context.Context, filter BeneficiaryFilter, scopeRegionIDs []uint) ([]BeneficiaryProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&BeneficiaryProfile{})

	if len(scopeRegionIDs) > 0 {
		query = query.Where(
			"district_id IN ? OR area_id IN ? OR unit_id IN ?",
			scopeRegionIDs, scopeRegionIDs, scopeRegionIDs,
		)
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
		query = query.Where("LOWER(full_name) LIKE ?", search)
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

	var profiles []BeneficiaryProfile
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&profiles).Error
	return profiles, total, err
}
