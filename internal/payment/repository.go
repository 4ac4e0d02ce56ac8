package payment

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	ListWithFilters(ctx context.Context, filter PaymentFilter, scopeRegionIDs []uint) ([]Payment, int64, error)
	ListByApplication(ctx context.Context, applicationID uint) ([]Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Payment, error) {
	var payment Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Update(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) ListWithFilters(ctx context.Context, filter PaymentFilter, scopeRegionIDs []uint) ([]Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&Payment{})

	if len(scopeRegionIDs) > 0 {
		query = query.Where(
			"district_id IN ? OR area_id IN ? OR unit_id IN ?",
			scopeRegionIDs, scopeRegionIDs, scopeRegionIDs,
		)
	}
	if filter.ApplicationID != nil {
		query = query.Where("application_id = ?", *filter.ApplicationID)
	}
	if filter.BeneficiaryID != nil {
		query = query.Where("beneficiary_id = ?", *filter.BeneficiaryID)
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

	var payments []Payment
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&payments).Error
	return payments, total, err
}

func (r *repository) ListByApplication(ctx context.Context, applicationID uint) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
