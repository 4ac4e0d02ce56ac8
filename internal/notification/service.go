package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/utils"
)

type Service interface {
	// In-app
	CreateInAppNotification(ctx context.Context, userID uint, title, message, category string) error
	ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]InAppNotification, int64, error)
	MarkRead(ctx context.Context, userID uint, notificationID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)

	// Push
	RegisterDeviceToken(ctx context.Context, userID uint, req RegisterTokenRequest) error
	UnregisterDeviceToken(ctx context.Context, userID uint, deviceToken string) error
	SendPushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) error

	// Email (logged)
	SendEmailToUsers(ctx context.Context, recipients []string, subject, body string, senderID *uint) error

	// Fan-out entry used by the kafka consumer
	Dispatch(ctx context.Context, event utils.NotificationEvent) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateInAppNotification(ctx context.Context, userID uint, title, message, category string) error {
	n := &InAppNotification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Category: category,
	}
	if err := s.repo.CreateInApp(ctx, n); err != nil {
		return apperrors.WrapStore(err)
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]InAppNotification, int64, error) {
	return s.repo.ListInAppForUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *service) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) RegisterDeviceToken(ctx context.Context, userID uint, req RegisterTokenRequest) error {
	token := &FCMDeviceToken{
		UserID:      userID,
		DeviceToken: req.DeviceToken,
		DeviceType:  req.DeviceType,
		DeviceName:  req.DeviceName,
	}
	if err := s.repo.UpsertDeviceToken(ctx, token); err != nil {
		return apperrors.WrapStore(err)
	}
	return nil
}

func (s *service) UnregisterDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return s.repo.DeactivateToken(ctx, userID, deviceToken)
}

// SendPushToUser sends to all active device tokens. Disabled FCM degrades to
// a log line, never an error.
func (s *service) SendPushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	if !utils.IsFCMEnabled() {
		log.Printf("⚠️ FCM disabled, skipping push for user %d", userID)
		return nil
	}

	tokens, err := s.repo.ActiveTokensForUser(ctx, userID)
	if err != nil {
		return apperrors.WrapStore(err)
	}
	if len(tokens) == 0 {
		return nil
	}

	entry := &NotificationLog{
		UserID:  &userID,
		Channel: "push",
		Subject: title,
		Body:    body,
		Status:  "pending",
	}
	if raw, err := json.Marshal(tokens); err == nil {
		entry.Recipients = datatypes.JSON(raw)
	}
	_ = s.repo.CreateLog(ctx, entry)

	if err := utils.SendPushNotification(tokens, title, body, data); err != nil {
		msg := err.Error()
		_ = s.repo.UpdateLogStatus(ctx, entry.ID, "failed", &msg)
		return err
	}

	_ = s.repo.UpdateLogStatus(ctx, entry.ID, "sent", nil)
	return nil
}

func (s *service) SendEmailToUsers(ctx context.Context, recipients []string, subject, body string, senderID *uint) error {
	if len(recipients) == 0 {
		return nil
	}

	entry := &NotificationLog{
		UserID:  senderID,
		Channel: "email",
		Subject: subject,
		Body:    body,
		Status:  "pending",
	}
	if raw, err := json.Marshal(recipients); err == nil {
		entry.Recipients = datatypes.JSON(raw)
	}
	_ = s.repo.CreateLog(ctx, entry)

	utils.SendBulkEmailsAsync(recipients, subject, body)
	_ = s.repo.UpdateLogStatus(ctx, entry.ID, "sent", nil)
	return nil
}

// Dispatch fans a bus event out to the in-app bell and push channels
func (s *service) Dispatch(ctx context.Context, event utils.NotificationEvent) error {
	if event.UserID == nil {
		return nil
	}
	userID := *event.UserID

	n := &InAppNotification{
		UserID:   userID,
		RegionID: event.RegionID,
		Title:    event.Title,
		Message:  event.Body,
		Category: event.Type,
	}
	if err := s.repo.CreateInApp(ctx, n); err != nil {
		return apperrors.WrapStore(err)
	}

	data := make(map[string]string, len(event.Data))
	for k, v := range event.Data {
		data[k] = fmt.Sprint(v)
	}

	if err := s.SendPushToUser(ctx, userID, event.Title, event.Body, data); err != nil {
		log.Printf("⚠️ Push dispatch failed for user %d: %v", userID, err)
	}

	return nil
}
