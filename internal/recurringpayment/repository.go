package recurringpayment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrActiveScheduleExists guards against generating a second schedule while
// one still has pending payments
var ErrActiveScheduleExists = errors.New("application already has an active payment schedule")

type Repository interface {
	CreateSchedule(ctx context.Context, applicationID uint, payments []RecurringPayment) error
	GetByID(ctx context.Context, id uint) (*RecurringPayment, error)
	Update(ctx context.Context, payment *RecurringPayment) error
	ListByApplication(ctx context.Context, applicationID uint) ([]RecurringPayment, error)
	ListWithFilters(ctx context.Context, filter PaymentFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]RecurringPayment, int64, error)
	CancelPending(ctx context.Context, applicationID uint, reason string) (int64, error)
	MarkDue(ctx context.Context, now time.Time) (int64, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	ForecastByMonth(ctx context.Context, from time.Time, months int, filter ForecastFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]ForecastBucket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateSchedule inserts a whole schedule in one transaction, re-checking the
// active-schedule guard inside it so two concurrent generations cannot both
// land. A failure rolls back every row, never leaving a partial schedule.
func (r *repository) CreateSchedule(ctx context.Context, applicationID uint, payments []RecurringPayment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&RecurringPayment{}).
			Where("application_id = ? AND status IN ?", applicationID, ActiveStatuses).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveScheduleExists
		}
		return tx.Create(&payments).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uint) (*RecurringPayment, error) {
	var payment RecurringPayment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Update(ctx context.Context, payment *RecurringPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) ListByApplication(ctx context.Context, applicationID uint) ([]RecurringPayment, error) {
	var payments []RecurringPayment
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("payment_number ASC").
		Find(&payments).Error
	return payments, err
}

func (r *repository) ListWithFilters(ctx context.Context, filter PaymentFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]RecurringPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&RecurringPayment{})

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

	if filter.ApplicationID != nil {
		query = query.Where("application_id = ?", *filter.ApplicationID)
	}
	if filter.BeneficiaryID != nil {
		query = query.Where("beneficiary_id = ?", *filter.BeneficiaryID)
	}
	if filter.SchemeID != nil {
		query = query.Where("scheme_id = ?", *filter.SchemeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("scheduled_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("scheduled_date <= ?", *filter.ToDate)
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

	var payments []RecurringPayment
	err := query.Order("scheduled_date ASC").Limit(filter.Limit).Offset(offset).Find(&payments).Error
	return payments, total, err
}

// CancelPending cancels every not-yet-terminal payment of the application in
// one statement. Completed and failed rows are untouched.
func (r *repository) CancelPending(ctx context.Context, applicationID uint, reason string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&RecurringPayment{}).
		Where("application_id = ? AND status IN ?", applicationID, ActiveStatuses).
		Updates(map[string]interface{}{
			"status":              StatusCancelled,
			"cancellation_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// MarkDue flips scheduled payments whose due date is inside the due window.
// The status guard in the WHERE clause makes concurrent sweeps idempotent.
func (r *repository) MarkDue(ctx context.Context, now time.Time) (int64, error) {
	horizon := now.AddDate(0, 0, DueWindowDays)
	result := r.db.WithContext(ctx).Model(&RecurringPayment{}).
		Where("status = ? AND due_date <= ? AND due_date >= ?", StatusScheduled, horizon, now).
		Update("status", StatusDue)
	return result.RowsAffected, result.Error
}

// MarkOverdue flips payments past their due date. Scheduled rows the due pass
// never saw (e.g. the sweep was down for a while) go straight to overdue.
func (r *repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&RecurringPayment{}).
		Where("status IN ? AND due_date < ?", []string{StatusScheduled, StatusDue}, now).
		Update("status", StatusOverdue)
	return result.RowsAffected, result.Error
}

// ForecastByMonth buckets projected outflow by calendar month. Only payments
// still awaiting disbursement count; completed and cancelled rows are
// excluded. The caller's scope narrows the projection the same way it
// narrows payment lists.
func (r *repository) ForecastByMonth(ctx context.Context, from time.Time, months int, filter ForecastFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]ForecastBucket, error) {
	until := from.AddDate(0, months, 0)

	query := r.db.WithContext(ctx).Model(&RecurringPayment{}).
		Select("to_char(scheduled_date, 'YYYY-MM') AS month, COUNT(*) AS payment_count, SUM(amount) AS total_amount").
		Where("status IN ?", ActiveStatuses).
		Where("scheduled_date >= ? AND scheduled_date < ?", from, until)

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
	if filter.SchemeID != nil {
		query = query.Where("scheme_id = ?", *filter.SchemeID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	var buckets []ForecastBucket
	err := query.
		Group("to_char(scheduled_date, 'YYYY-MM')").
		Order("month ASC").
		Scan(&buckets).Error
	return buckets, err
}
