package donation

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, donation *Donation) error
	GetByID(ctx context.Context, id uint) (*Donation, error)
	GetByOrderID(ctx context.Context, orderID string) (*Donation, error)
	UpdatePaymentDetails(ctx context.Context, orderID string, params UpdatePaymentDetailsParams) error
	SetReceiptNumber(ctx context.Context, id uint, receiptNumber string) error
	ListByUserID(ctx context.Context, userID uint) ([]Donation, error)
	ListWithFilters(ctx context.Context, filters DonationFilters) ([]Donation, int64, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetTopDonors(ctx context.Context, limit int) ([]TopDonor, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, donation *Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Donation, error) {
	var donation Donation
	if err := r.db.WithContext(ctx).First(&donation, id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Donation, error) {
	var donation Donation
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) UpdatePaymentDetails(ctx context.Context, orderID string, params UpdatePaymentDetailsParams) error {
	return r.db.WithContext(ctx).Model(&Donation{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     params.Status,
			"payment_id": params.PaymentID,
			"method":     params.Method,
			"amount":     params.Amount,
			"donated_at": params.DonatedAt,
		}).Error
}

func (r *repository) SetReceiptNumber(ctx context.Context, id uint, receiptNumber string) error {
	return r.db.WithContext(ctx).Model(&Donation{}).
		Where("id = ?", id).
		Update("receipt_number", receiptNumber).Error
}

func (r *repository) ListByUserID(ctx context.Context, userID uint) ([]Donation, error) {
	var donations []Donation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&donations).Error
	return donations, err
}

func (r *repository) ListWithFilters(ctx context.Context, filters DonationFilters) ([]Donation, int64, error) {
	query := r.db.WithContext(ctx).Model(&Donation{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Type != "" {
		query = query.Where("donation_type = ?", filters.Type)
	}
	if filters.SchemeID != nil {
		query = query.Where("scheme_id = ?", *filters.SchemeID)
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	offset := (filters.Page - 1) * filters.Limit

	var donations []Donation
	err := query.Order("created_at DESC").Limit(filters.Limit).Offset(offset).Find(&donations).Error
	return donations, total, err
}

func (r *repository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	row := r.db.WithContext(ctx).Model(&Donation{}).
		Select("COALESCE(SUM(amount),0), COUNT(*)").
		Where("status = ?", StatusSuccess).
		Row()
	if err := row.Scan(&stats.TotalAmount, &stats.TotalCount); err != nil {
		return nil, err
	}

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day())
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), monthStart.Day(), 0, 0, 0, 0, monthStart.Location())

	row = r.db.WithContext(ctx).Model(&Donation{}).
		Select("COALESCE(SUM(amount),0), COUNT(*)").
		Where("status = ? AND donated_at >= ?", StatusSuccess, monthStart).
		Row()
	if err := row.Scan(&stats.MonthAmount, &stats.MonthCount); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&Donation{}).
		Where("status = ?", StatusPending).
		Count(&stats.PendingCount).Error; err != nil {
		return nil, err
	}

	if stats.TotalCount > 0 {
		stats.AverageAmount = stats.TotalAmount / float64(stats.TotalCount)
	}

	return stats, nil
}

func (r *repository) GetTopDonors(ctx context.Context, limit int) ([]TopDonor, error) {
	if limit <= 0 {
		limit = 10
	}

	var donors []TopDonor
	err := r.db.WithContext(ctx).Table("donations").
		Select("donations.user_id, users.full_name AS donor_name, SUM(donations.amount) AS total_amount, COUNT(*) AS count").
		Joins("JOIN users ON users.id = donations.user_id").
		Where("donations.status = ?", StatusSuccess).
		Group("donations.user_id, users.full_name").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&donors).Error
	return donors, err
}
