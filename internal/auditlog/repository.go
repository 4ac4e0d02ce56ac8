package auditlog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByID(ctx context.Context, id uint) (*AuditLogResponse, error)
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	var result AuditLogResponse
	err := r.db.WithContext(ctx).
		Table("audit_logs a").
		Select(`
			a.id, a.user_id, a.region_id, a.action, a.details,
			a.ip_address, a.status, a.created_at,
			u.full_name as user_name
		`).
		Joins("LEFT JOIN users u ON a.user_id = u.id").
		Where("a.id = ?", id).
		First(&result).Error

	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	var logs []AuditLogResponse
	var total int64

	query := r.db.WithContext(ctx).
		Table("audit_logs a").
		Select(`
			a.id, a.user_id, a.region_id, a.action, a.details,
			a.ip_address, a.status, a.created_at,
			u.full_name as user_name
		`).
		Joins("LEFT JOIN users u ON a.user_id = u.id")

	query = r.applyFilters(query, filter)

	countQuery := r.db.WithContext(ctx).Table("audit_logs a")
	countQuery = r.applyFilters(countQuery, filter)
	countQuery.Count(&total)

	if filter.Page > 0 && filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		query = query.Offset(offset).Limit(filter.Limit)
	}

	err := query.Order("a.created_at DESC").Find(&logs).Error
	return logs, total, err
}

func (r *repository) applyFilters(query *gorm.DB, filter AuditLogFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("a.user_id = ?", *filter.UserID)
	}
	if filter.RegionID != nil {
		query = query.Where("a.region_id = ?", *filter.RegionID)
	}
	if filter.Action != "" && filter.Action != "all" {
		query = query.Where("a.action = ?", filter.Action)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("a.status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("a.created_at >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("a.created_at <= ?", filter.ToDate)
	}
	return query
}
