package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateInApp(ctx context.Context, n *InAppNotification) error
	ListInAppForUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]InAppNotification, int64, error)
	MarkRead(ctx context.Context, userID uint, notificationID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)

	CreateLog(ctx context.Context, entry *NotificationLog) error
	UpdateLogStatus(ctx context.Context, id uint, status string, errMsg *string) error

	UpsertDeviceToken(ctx context.Context, token *FCMDeviceToken) error
	ActiveTokensForUser(ctx context.Context, userID uint) ([]string, error)
	DeactivateToken(ctx context.Context, userID uint, deviceToken string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInAppForUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]InAppNotification, int64, error) {
	query := r.db.WithContext(ctx).Model(&InAppNotification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}

	var notifications []InAppNotification
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, total, err
}

func (r *repository) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	return r.db.WithContext(ctx).Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *repository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&InAppNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *repository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&InAppNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateLog(ctx context.Context, entry *NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) UpdateLogStatus(ctx context.Context, id uint, status string, errMsg *string) error {
	return r.db.WithContext(ctx).Model(&NotificationLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": errMsg}).Error
}

func (r *repository) UpsertDeviceToken(ctx context.Context, token *FCMDeviceToken) error {
	var existing FCMDeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_token = ?", token.UserID, token.DeviceToken).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		token.IsActive = true
		token.LastUsedAt = time.Now()
		return r.db.WithContext(ctx).Create(token).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&existing).
		Updates(map[string]interface{}{
			"is_active":    true,
			"last_used_at": time.Now(),
			"device_type":  token.DeviceType,
			"device_name":  token.DeviceName,
		}).Error
}

func (r *repository) ActiveTokensForUser(ctx context.Context, userID uint) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&FCMDeviceToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("device_token", &tokens).Error
	return tokens, err
}

func (r *repository) DeactivateToken(ctx context.Context, userID uint, deviceToken string) error {
	return r.db.WithContext(ctx).Model(&FCMDeviceToken{}).
		Where("user_id = ? AND device_token = ?", userID, deviceToken).
		Update("is_active", false).Error
}
