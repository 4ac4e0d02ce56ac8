package scheme

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

var validStatuses = map[string]bool{"open": true, "paused": true, "closed": true}

type Service interface {
	CreateScheme(ctx context.Context, req CreateSchemeRequest, userID uint, ip string) (*Scheme, error)
	UpdateScheme(ctx context.Context, id uint, req UpdateSchemeRequest, userID uint, ip string) (*Scheme, error)
	DeactivateScheme(ctx context.Context, id uint, userID uint, ip string) error
	GetScheme(ctx context.Context, id uint) (*Scheme, error)
	ListSchemes(ctx context.Context, filter SchemeFilter) ([]Scheme, int64, error)
	ListOpenSchemes(ctx context.Context) ([]Scheme, error)
	ListByProject(ctx context.Context, projectID uint) ([]Scheme, error)
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) CreateScheme(ctx context.Context, req CreateSchemeRequest, userID uint, ip string) (*Scheme, error) {
	if req.MaxAmount < 0 {
		return nil, apperrors.NewValidation("max_amount", "cannot be negative")
	}

	scheme := &Scheme{
		Name:                req.Name,
		SchemeType:          req.SchemeType,
		Description:         req.Description,
		ProjectID:           req.ProjectID,
		MaxAmount:           req.MaxAmount,
		EligibilityCriteria: req.EligibilityCriteria,
		Status:              "open",
		IsActive:            true,
		CreatedBy:           userID,
	}

	if err := s.repo.Create(ctx, scheme); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "SCHEME_CREATE_FAILED", map[string]interface{}{
			"scheme_name": req.Name,
			"error":       err.Error(),
		}, ip, "failure")
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "SCHEME_CREATED", map[string]interface{}{
		"scheme_id":   scheme.ID,
		"scheme_name": scheme.Name,
		"scheme_type": scheme.SchemeType,
		"max_amount":  scheme.MaxAmount,
	}, ip, "success")

	return scheme, nil
}

func (s *service) UpdateScheme(ctx context.Context, id uint, req UpdateSchemeRequest, userID uint, ip string) (*Scheme, error) {
	scheme, err := s.GetScheme(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !validStatuses[*req.Status] {
		return nil, apperrors.NewValidation("status", "must be 'open', 'paused' or 'closed'")
	}
	if req.MaxAmount != nil && *req.MaxAmount < 0 {
		return nil, apperrors.NewValidation("max_amount", "cannot be negative")
	}

	if req.Name != nil {
		scheme.Name = *req.Name
	}
	if req.SchemeType != nil {
		scheme.SchemeType = *req.SchemeType
	}
	if req.Description != nil {
		scheme.Description = *req.Description
	}
	if req.ProjectID != nil {
		scheme.ProjectID = req.ProjectID
	}
	if req.MaxAmount != nil {
		scheme.MaxAmount = *req.MaxAmount
	}
	if req.EligibilityCriteria != nil {
		scheme.EligibilityCriteria = *req.EligibilityCriteria
	}
	if req.Status != nil {
		scheme.Status = *req.Status
	}

	if err := s.repo.Update(ctx, scheme); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "SCHEME_UPDATE_FAILED", map[string]interface{}{
			"scheme_id": id,
			"error":     err.Error(),
		}, ip, "failure")
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "SCHEME_UPDATED", map[string]interface{}{
		"scheme_id":   scheme.ID,
		"scheme_name": scheme.Name,
		"status":      scheme.Status,
	}, ip, "success")

	return scheme, nil
}

// DeactivateScheme closes a scheme to new applications. Existing applications
// and payment plans continue.
func (s *service) DeactivateScheme(ctx context.Context, id uint, userID uint, ip string) error {
	scheme, err := s.GetScheme(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "SCHEME_DEACTIVATE_FAILED", map[string]interface{}{
			"scheme_id": id,
			"error":     err.Error(),
		}, ip, "failure")
		return apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "SCHEME_DEACTIVATED", map[string]interface{}{
		"scheme_id":   id,
		"scheme_name": scheme.Name,
	}, ip, "success")

	return nil
}

func (s *service) GetScheme(ctx context.Context, id uint) (*Scheme, error) {
	scheme, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("scheme", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return scheme, nil
}

func (s *service) ListSchemes(ctx context.Context, filter SchemeFilter) ([]Scheme, int64, error) {
	return s.repo.ListWithFilters(ctx, filter)
}

func (s *service) ListOpenSchemes(ctx context.Context) ([]Scheme, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ListByProject(ctx context.Context, projectID uint) ([]Scheme, error) {
	return s.repo.ListByProject(ctx, projectID)
}
