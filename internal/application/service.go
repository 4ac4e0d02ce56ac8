package application

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

// RegionPlacement is a beneficiary's position in the geographic hierarchy
type RegionPlacement struct {
	StateID    *uint
	DistrictID *uint
	AreaID     *uint
	UnitID     *uint
}

// ProfileSource looks up a beneficiary's region placement. The beneficiary
// service satisfies this via an adapter in the route wiring.
type ProfileSource interface {
	RegionPlacement(ctx context.Context, userID uint) (RegionPlacement, error)
}

type Service interface {
	CreateApplication(ctx context.Context, req CreateApplicationRequest, beneficiaryID uint, ip string) (*Application, error)
	GetApplication(ctx context.Context, id uint) (*Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) (*PaginatedApplications, error)
	ListMyApplications(ctx context.Context, beneficiaryID uint) ([]Application, error)
	MoveToReview(ctx context.Context, id uint, reviewerID uint, ip string) (*Application, error)
	MarkInterviewScheduled(ctx context.Context, id uint) error
	ApproveApplication(ctx context.Context, id uint, req ApproveApplicationRequest, approverID uint, ip string) (*Application, error)
	RejectApplication(ctx context.Context, id uint, reason string, reviewerID uint, ip string) (*Application, error)
	CompleteApplication(ctx context.Context, id uint, userID uint, ip string) (*Application, error)
	CancelApplication(ctx context.Context, id uint, userID uint, ip string) (*Application, error)
}

type PaginatedApplications struct {
	Data       []Application `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
	profiles ProfileSource
}

func NewService(repo Repository, auditSvc auditlog.Service, profiles ProfileSource) Service {
	return &service{repo: repo, auditSvc: auditSvc, profiles: profiles}
}

// CreateApplication files a new aid request. The region chain is copied from
// the beneficiary's profile, never from the request: a record without the
// chain stays invisible to regional scopes until the profile is placed.
func (s *service) CreateApplication(ctx context.Context, req CreateApplicationRequest, beneficiaryID uint, ip string) (*Application, error) {
	if req.RequestedAmount <= 0 {
		return nil, apperrors.NewValidation("requested_amount", "must be positive")
	}

	app := &Application{
		BeneficiaryID:   beneficiaryID,
		SchemeID:        req.SchemeID,
		ProjectID:       req.ProjectID,
		Purpose:         req.Purpose,
		RequestedAmount: req.RequestedAmount,
		Status:          StatusPending,
	}

	if s.profiles != nil {
		placement, err := s.profiles.RegionPlacement(ctx, beneficiaryID)
		switch {
		case err == nil:
			app.StateID = placement.StateID
			app.DistrictID = placement.DistrictID
			app.AreaID = placement.AreaID
			app.UnitID = placement.UnitID
		case apperrors.IsNotFound(err):
			log.Printf("⚠️ Application by user %d filed without a placed profile", beneficiaryID)
		default:
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &beneficiaryID, app.DistrictID, "APPLICATION_CREATED", map[string]interface{}{
		"application_id": app.ID,
		"scheme_id":      app.SchemeID,
		"amount":         app.RequestedAmount,
	}, ip, "success")

	return app, nil
}

func (s *service) GetApplication(ctx context.Context, id uint) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("application", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return app, nil
}

func (s *service) ListApplications(ctx context.Context, filter ApplicationFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) (*PaginatedApplications, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	apps, total, err := s.repo.ListWithFilters(ctx, filter, scopeRegionIDs, projectIDs, schemeIDs)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}

	return &PaginatedApplications{
		Data:       apps,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *service) ListMyApplications(ctx context.Context, beneficiaryID uint) ([]Application, error) {
	apps, err := s.repo.ListByBeneficiary(ctx, beneficiaryID)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}
	return apps, nil
}

func (s *service) transition(ctx context.Context, app *Application, to string) error {
	if !CanTransition(app.Status, to) {
		return apperrors.NewInvalidState(app.Status, "move to "+to)
	}
	app.Status = to
	return nil
}

func (s *service) MoveToReview(ctx context.Context, id uint, reviewerID uint, ip string) (*Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, app, StatusUnderReview); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &reviewerID, app.DistrictID, "APPLICATION_REVIEW_STARTED", map[string]interface{}{
		"application_id": app.ID,
	}, ip, "success")

	return app, nil
}

// MarkInterviewScheduled is called by the interview service when an interview
// is booked against the application
func (s *service) MarkInterviewScheduled(ctx context.Context, id uint) error {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if app.Status == StatusInterviewScheduled {
		return nil // already there, nothing to do
	}
	if err := s.transition(ctx, app, StatusInterviewScheduled); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, app); err != nil {
		return apperrors.WrapStore(err)
	}
	return nil
}

func (s *service) ApproveApplication(ctx context.Context, id uint, req ApproveApplicationRequest, approverID uint, ip string) (*Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	target := StatusApproved
	if req.ViaCommittee {
		target = StatusCommitteeApproved
		// Committee approval lands via committee_pending
		if app.Status != StatusCommitteePending {
			if err := s.transition(ctx, app, StatusCommitteePending); err != nil {
				return nil, err
			}
		}
	}

	if err := s.transition(ctx, app, target); err != nil {
		return nil, err
	}

	if len(req.DistributionTimeline) > 0 {
		var sum float64
		for _, phase := range req.DistributionTimeline {
			if phase.Amount <= 0 {
				return nil, apperrors.NewValidation("distribution_timeline", "phase amounts must be positive")
			}
			sum += phase.Amount
		}
		// Phase totals not matching the approved amount is tolerated but
		// flagged for the approver
		if math.Abs(sum-req.ApprovedAmount) > 0.01 {
			log.Printf("⚠️ Application %d: timeline total %.2f differs from approved amount %.2f", app.ID, sum, req.ApprovedAmount)
		}

		raw, err := json.Marshal(req.DistributionTimeline)
		if err != nil {
			return nil, apperrors.NewValidation("distribution_timeline", "not serializable")
		}
		app.DistributionTimeline = datatypes.JSON(raw)
	}

	now := time.Now()
	app.ApprovedAmount = &req.ApprovedAmount
	app.ApprovedBy = &approverID
	app.ApprovedAt = &now

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &approverID, app.DistrictID, "APPLICATION_APPROVED", map[string]interface{}{
		"application_id":  app.ID,
		"approved_amount": req.ApprovedAmount,
		"via_committee":   req.ViaCommittee,
	}, ip, "success")

	log.Printf("✅ Application %d approved for %.2f", app.ID, req.ApprovedAmount)
	return app, nil
}

func (s *service) RejectApplication(ctx context.Context, id uint, reason string, reviewerID uint, ip string) (*Application, error) {
	if reason == "" {
		return nil, apperrors.NewValidation("reason", "rejection reason is required")
	}

	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, app, StatusRejected); err != nil {
		return nil, err
	}

	now := time.Now()
	app.RejectedAt = &now
	app.RejectionReason = reason

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &reviewerID, app.DistrictID, "APPLICATION_REJECTED", map[string]interface{}{
		"application_id": app.ID,
		"reason":         reason,
	}, ip, "success")

	return app, nil
}

func (s *service) CompleteApplication(ctx context.Context, id uint, userID uint, ip string) (*Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, app, StatusCompleted); err != nil {
		return nil, err
	}

	now := time.Now()
	app.CompletedAt = &now

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, app.DistrictID, "APPLICATION_COMPLETED", map[string]interface{}{
		"application_id": app.ID,
	}, ip, "success")

	return app, nil
}

func (s *service) CancelApplication(ctx context.Context, id uint, userID uint, ip string) (*Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, app, StatusCancelled); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, app.DistrictID, "APPLICATION_CANCELLED", map[string]interface{}{
		"application_id": app.ID,
	}, ip, "success")

	return app, nil
}
