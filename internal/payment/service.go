package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type Service interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest, userID uint, ip string) (*Payment, error)
	CompletePayment(ctx context.Context, id uint, req CompletePaymentRequest, userID uint, ip string) (*Payment, error)
	FailPayment(ctx context.Context, id uint, notes string, userID uint, ip string) (*Payment, error)
	GetPayment(ctx context.Context, id uint) (*Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter, scopeRegionIDs []uint) ([]Payment, int64, error)
	ListByApplication(ctx context.Context, applicationID uint) ([]Payment, error)
}

type service struct {
	repo     Repository
	appSvc   application.Service
	auditSvc auditlog.Service
}

func NewService(repo Repository, appSvc application.Service, auditSvc auditlog.Service) Service {
	return &service{repo: repo, appSvc: appSvc, auditSvc: auditSvc}
}

// CreatePayment registers a one-time disbursement against an approved
// application
func (s *service) CreatePayment(ctx context.Context, req CreatePaymentRequest, userID uint, ip string) (*Payment, error) {
	app, err := s.appSvc.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	if !application.IsApprovedStatus(app.Status) {
		return nil, apperrors.NewInvalidState(app.Status, "create a payment")
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidation("amount", "must be positive")
	}

	payment := &Payment{
		ApplicationID: app.ID,
		BeneficiaryID: app.BeneficiaryID,
		SchemeID:      app.SchemeID,
		ProjectID:     app.ProjectID,
		StateID:       app.StateID,
		DistrictID:    app.DistrictID,
		AreaID:        app.AreaID,
		UnitID:        app.UnitID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Status:        StatusPending,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, payment.DistrictID, "PAYMENT_CREATED", map[string]interface{}{
		"payment_id":     payment.ID,
		"application_id": payment.ApplicationID,
		"amount":         payment.Amount,
	}, ip, "success")

	return payment, nil
}

func (s *service) CompletePayment(ctx context.Context, id uint, req CompletePaymentRequest, userID uint, ip string) (*Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status != StatusPending {
		return nil, apperrors.NewInvalidState(payment.Status, "complete")
	}

	now := time.Now()
	payment.Status = StatusCompleted
	payment.PaymentMethod = req.PaymentMethod
	payment.ReferenceNumber = req.ReferenceNumber
	if req.Notes != "" {
		payment.Notes = req.Notes
	}
	payment.ProcessedBy = &userID
	payment.ProcessedAt = &now

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, payment.DistrictID, "PAYMENT_COMPLETED", map[string]interface{}{
		"payment_id":     payment.ID,
		"application_id": payment.ApplicationID,
		"amount":         payment.Amount,
		"reference":      payment.ReferenceNumber,
	}, ip, "success")

	return payment, nil
}

func (s *service) FailPayment(ctx context.Context, id uint, notes string, userID uint, ip string) (*Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status != StatusPending {
		return nil, apperrors.NewInvalidState(payment.Status, "fail")
	}

	payment.Status = StatusFailed
	if notes != "" {
		payment.Notes = notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, payment.DistrictID, "PAYMENT_FAILED", map[string]interface{}{
		"payment_id":     payment.ID,
		"application_id": payment.ApplicationID,
		"notes":          notes,
	}, ip, "success")

	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, id uint) (*Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, filter PaymentFilter, scopeRegionIDs []uint) ([]Payment, int64, error) {
	return s.repo.ListWithFilters(ctx, filter, scopeRegionIDs)
}

func (s *service) ListByApplication(ctx context.Context, applicationID uint) ([]Payment, error) {
	return s.repo.ListByApplication(ctx, applicationID)
}
