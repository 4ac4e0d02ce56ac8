package project

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

var validStatuses = map[string]bool{"active": true, "completed": true, "archived": true}

type Service interface {
	CreateProject(ctx context.Context, req CreateProjectRequest, userID uint, ip string) (*Project, error)
	UpdateProject(ctx context.Context, id uint, req UpdateProjectRequest, userID uint, ip string) (*Project, error)
	ArchiveProject(ctx context.Context, id uint, userID uint, ip string) error
	GetProject(ctx context.Context, id uint) (*Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)
	GetProjectSummary(ctx context.Context, id uint) (*ProjectSummary, error)
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest, userID uint, ip string) (*Project, error) {
	if req.Budget < 0 {
		return nil, apperrors.NewValidation("budget", "cannot be negative")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperrors.NewValidation("end_date", "must be after start date")
	}

	project := &Project{
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      "active",
		IsActive:    true,
		CreatedBy:   userID,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "PROJECT_CREATE_FAILED", map[string]interface{}{
			"project_name": req.Name,
			"error":        err.Error(),
		}, ip, "failure")
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "PROJECT_CREATED", map[string]interface{}{
		"project_id":   project.ID,
		"project_name": project.Name,
		"budget":       project.Budget,
	}, ip, "success")

	return project, nil
}

func (s *service) UpdateProject(ctx context.Context, id uint, req UpdateProjectRequest, userID uint, ip string) (*Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !validStatuses[*req.Status] {
		return nil, apperrors.NewValidation("status", "must be 'active', 'completed' or 'archived'")
	}
	if req.Budget != nil && *req.Budget < 0 {
		return nil, apperrors.NewValidation("budget", "cannot be negative")
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Status != nil {
		project.Status = *req.Status
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "PROJECT_UPDATED", map[string]interface{}{
		"project_id":   project.ID,
		"project_name": project.Name,
		"status":       project.Status,
	}, ip, "success")

	return project, nil
}

func (s *service) ArchiveProject(ctx context.Context, id uint, userID uint, ip string) error {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Archive(ctx, id); err != nil {
		return apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "PROJECT_ARCHIVED", map[string]interface{}{
		"project_id":   id,
		"project_name": project.Name,
	}, ip, "success")

	return nil
}

func (s *service) GetProject(ctx context.Context, id uint) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return project, nil
}

func (s *service) ListProjects(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	return s.repo.ListWithFilters(ctx, filter)
}

func (s *service) GetProjectSummary(ctx context.Context, id uint) (*ProjectSummary, error) {
	if _, err := s.GetProject(ctx, id); err != nil {
		return nil, err
	}
	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}
	return summary, nil
}
