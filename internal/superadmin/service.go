package superadmin

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
	"github.com/sharath018/welfare-management-backend/internal/auth"
)

type Service interface {
	ListAdminUsers(ctx context.Context, filter AdminUserFilter) (*PaginatedAdminUsers, error)
	UpdateUserStatus(ctx context.Context, userID uint, status string, actorID uint, ip string) error
	GetAdminUser(ctx context.Context, userID uint) (*AdminUserRow, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func toRow(user auth.User) AdminUserRow {
	row := AdminUserRow{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Phone:     user.Phone,
		RoleName:  user.Role.RoleName,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
	if user.AdminScope != nil {
		row.RegionIDs = user.AdminScope.RegionIDs
		row.ProjectIDs = user.AdminScope.ProjectIDs
		row.SchemeIDs = user.AdminScope.SchemeIDs
	}
	return row
}

func (s *service) ListAdminUsers(ctx context.Context, filter AdminUserFilter) (*PaginatedAdminUsers, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	users, total, err := s.repo.ListAdminUsers(ctx, filter)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}

	rows := make([]AdminUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, toRow(u))
	}

	return &PaginatedAdminUsers{
		Data:       rows,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// UpdateUserStatus activates or deactivates an admin account. Deactivated
// users fail auth middleware on their next request.
func (s *service) UpdateUserStatus(ctx context.Context, userID uint, status string, actorID uint, ip string) error {
	user, err := s.repo.GetUserWithScope(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("user", userID)
		}
		return apperrors.WrapStore(err)
	}

	if user.Role.RoleName == auth.RoleSuperAdmin {
		return apperrors.NewValidation("user_id", "super admin accounts cannot be deactivated")
	}
	if userID == actorID {
		return apperrors.NewValidation("user_id", "cannot change own account status")
	}

	if err := s.repo.UpdateUserStatus(ctx, userID, status); err != nil {
		s.auditSvc.LogAction(ctx, &actorID, nil, "USER_STATUS_CHANGED", map[string]interface{}{
			"target_user_id": userID,
			"status":         status,
			"error":          err.Error(),
		}, ip, "failure")
		return apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &actorID, nil, "USER_STATUS_CHANGED", map[string]interface{}{
		"target_user_id": userID,
		"target_email":   user.Email,
		"status":         status,
	}, ip, "success")
	return nil
}

func (s *service) GetAdminUser(ctx context.Context, userID uint) (*AdminUserRow, error) {
	user, err := s.repo.GetUserWithScope(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user", userID)
		}
		return nil, apperrors.WrapStore(err)
	}
	row := toRow(*user)
	return &row, nil
}

func (s *service) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats, err := s.repo.GetPlatformStats(ctx)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}
	return stats, nil
}
