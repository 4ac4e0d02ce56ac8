package superadmin

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/auth"
)

type Repository interface {
	ListAdminUsers(ctx context.Context, filter AdminUserFilter) ([]auth.User, int64, error)
	UpdateUserStatus(ctx context.Context, userID uint, status string) error
	GetUserWithScope(ctx context.Context, userID uint) (*auth.User, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListAdminUsers(ctx context.Context, filter AdminUserFilter) ([]auth.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&auth.User{}).
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Where("user_roles.role_name <> ?", auth.RoleBeneficiary)

	if filter.Role != "" {
		query = query.Where("user_roles.role_name = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("users.status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("users.full_name ILIKE ? OR users.email ILIKE ?", like, like)
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

	var users []auth.User
	err := query.
		Preload("Role").
		Preload("AdminScope").
		Order("users.created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}

func (r *repository) UpdateUserStatus(ctx context.Context, userID uint, status string) error {
	result := r.db.WithContext(ctx).Model(&auth.User{}).
		Where("id = ?", userID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) GetUserWithScope(ctx context.Context, userID uint) (*auth.User, error) {
	var user auth.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("AdminScope").
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{
		UsersByRole:          map[string]int64{},
		RegionsByType:        map[string]int64{},
		ApplicationsByStatus: map[string]int64{},
	}
	db := r.db.WithContext(ctx)

	if err := db.Model(&auth.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	type roleCount struct {
		RoleName string
		Count    int64
	}
	var roleCounts []roleCount
	if err := db.Table("users").
		Select("user_roles.role_name, COUNT(*) AS count").
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Group("user_roles.role_name").
		Scan(&roleCounts).Error; err != nil {
		return nil, err
	}
	for _, rc := range roleCounts {
		stats.UsersByRole[rc.RoleName] = rc.Count
	}
	stats.TotalBeneficiaries = stats.UsersByRole[auth.RoleBeneficiary]

	type typeCount struct {
		Type  string
		Count int64
	}
	var regionCounts []typeCount
	if err := db.Table("regions").
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&regionCounts).Error; err != nil {
		return nil, err
	}
	for _, tc := range regionCounts {
		stats.RegionsByType[tc.Type] = tc.Count
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var appCounts []statusCount
	if err := db.Table("applications").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&appCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range appCounts {
		stats.ApplicationsByStatus[sc.Status] = sc.Count
	}
	stats.PendingApplications = stats.ApplicationsByStatus["pending"] + stats.ApplicationsByStatus["under_review"]

	if err := db.Table("recurring_payments").
		Where("status NOT IN ?", []string{"completed", "cancelled", "skipped", "failed"}).
		Count(&stats.ActiveSchedules).Error; err != nil {
		return nil, err
	}
	if err := db.Table("recurring_payments").
		Where("status = ?", "overdue").
		Count(&stats.OverduePayments).Error; err != nil {
		return nil, err
	}

	row := db.Table("recurring_payments").
		Select("COALESCE(SUM(amount),0)").
		Where("status = ?", "completed").
		Row()
	if err := row.Scan(&stats.TotalDisbursed); err != nil {
		return nil, err
	}

	yearStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.Now().Location())
	row = db.Table("recurring_payments").
		Select("COALESCE(SUM(amount),0)").
		Where("status = ? AND processed_at >= ?", "completed", yearStart).
		Row()
	if err := row.Scan(&stats.DisbursedThisYear); err != nil {
		return nil, err
	}

	row = db.Table("donations").
		Select("COALESCE(SUM(amount),0), COUNT(*)").
		Where("status = ?", "SUCCESS").
		Row()
	if err := row.Scan(&stats.TotalDonations, &stats.DonationsCount); err != nil {
		return nil, err
	}

	if err := db.Table("projects").
		Where("status = ?", "active").
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Table("schemes").
		Where("status = ? AND is_active = ?", "open", true).
		Count(&stats.OpenSchemes).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
