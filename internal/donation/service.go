package donation

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/config"
	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type Service interface {
	StartDonation(ctx context.Context, req CreateDonationRequest) (*CreateDonationResponse, error)
	VerifyAndUpdateDonation(ctx context.Context, req VerifyPaymentRequest) error
	GetDonation(ctx context.Context, id uint) (*Donation, error)
	GetDonationsByUser(ctx context.Context, userID uint) ([]Donation, error)
	GetDonationsWithFilters(ctx context.Context, filters DonationFilters) ([]Donation, int64, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetTopDonors(ctx context.Context, limit int) ([]TopDonor, error)
	EnsureReceiptNumber(ctx context.Context, donationID uint) (*Donation, error)
}

type service struct {
	repo     Repository
	client   *razorpay.Client
	cfg      *config.Config
	auditSvc auditlog.Service
}

func NewService(repo Repository, cfg *config.Config, auditSvc auditlog.Service) Service {
	client := razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	return &service{
		repo:     repo,
		client:   client,
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

// StartDonation creates the razorpay order and a pending donation record
func (s *service) StartDonation(ctx context.Context, req CreateDonationRequest) (*CreateDonationResponse, error) {
	if req.DonationType == "scheme" && req.SchemeID == nil {
		return nil, apperrors.NewValidation("schemeID", "required for scheme donations")
	}
	if req.DonationType == "project" && req.ProjectID == nil {
		return nil, apperrors.NewValidation("projectID", "required for project donations")
	}

	amountInPaise := int(req.Amount * 100)
	data := map[string]interface{}{
		"amount":          amountInPaise,
		"currency":        "INR",
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"user_id":       req.UserID,
			"donation_type": req.DonationType,
		},
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &req.UserID, nil, "DONATION_INITIATED", map[string]interface{}{
			"amount":        req.Amount,
			"donation_type": req.DonationType,
			"error":         err.Error(),
		}, req.IPAddress, "failure")
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, errors.New("unable to extract order_id from Razorpay response")
	}

	donation := &Donation{
		UserID:       req.UserID,
		DonationType: req.DonationType,
		SchemeID:     req.SchemeID,
		ProjectID:    req.ProjectID,
		Amount:       req.Amount,
		Method:       "PENDING",
		Status:       StatusPending,
		OrderID:      orderID,
		Note:         req.Note,
	}

	if err := s.repo.Create(ctx, donation); err != nil {
		s.auditSvc.LogAction(ctx, &req.UserID, nil, "DONATION_INITIATED", map[string]interface{}{
			"amount":   req.Amount,
			"order_id": orderID,
			"error":    err.Error(),
		}, req.IPAddress, "failure")
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &req.UserID, nil, "DONATION_INITIATED", map[string]interface{}{
		"amount":        req.Amount,
		"donation_type": req.DonationType,
		"order_id":      orderID,
	}, req.IPAddress, "success")

	return &CreateDonationResponse{
		OrderID:     orderID,
		Amount:      req.Amount,
		Currency:    "INR",
		RazorpayKey: s.cfg.RazorpayKey,
	}, nil
}

// VerifyAndUpdateDonation verifies the razorpay signature and settles the
// donation record. Re-verifying an already-settled donation is a no-op.
func (s *service) VerifyAndUpdateDonation(ctx context.Context, req VerifyPaymentRequest) error {
	expected := hmac.New(sha256.New, []byte(s.cfg.RazorpaySecret))
	expected.Write([]byte(req.OrderID + "|" + req.PaymentID))
	computedSignature := hex.EncodeToString(expected.Sum(nil))

	if !hmac.Equal([]byte(computedSignature), []byte(req.RazorpaySig)) {
		s.auditSvc.LogAction(ctx, nil, nil, "DONATION_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "invalid payment signature",
		}, req.IPAddress, "failure")
		return fmt.Errorf("invalid payment signature")
	}

	payment, err := s.client.Payment.Fetch(req.PaymentID, nil, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, nil, nil, "DONATION_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "razorpay payment fetch failed",
			"error":      err.Error(),
		}, req.IPAddress, "failure")
		return fmt.Errorf("razorpay payment fetch failed: %w", err)
	}

	status, ok := payment["status"].(string)
	if !ok {
		return errors.New("invalid payment status format")
	}

	donation, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		s.auditSvc.LogAction(ctx, nil, nil, "DONATION_VERIFICATION_FAILED", map[string]interface{}{
			"order_id": req.OrderID,
			"reason":   "donation record not found",
		}, req.IPAddress, "failure")
		return errors.New("donation record not found for given order ID")
	}

	if donation.Status == StatusSuccess {
		return nil // already processed
	}

	var amount float64
	switch val := payment["amount"].(type) {
	case float64:
		amount = val / 100
	case json.Number:
		amountPaise, _ := val.Float64()
		amount = amountPaise / 100
	default:
		return fmt.Errorf("unsupported amount type: %T", val)
	}

	newStatus := StatusFailed
	var donatedAt *time.Time
	auditAction := "DONATION_FAILED"
	auditStatus := "failure"

	if status == "captured" {
		newStatus = StatusSuccess
		now := time.Now()
		donatedAt = &now
		auditAction = "DONATION_SUCCESS"
		auditStatus = "success"
	}

	method := "UNKNOWN"
	if paymentMethod, ok := payment["method"].(string); ok {
		method = paymentMethod
	}

	err = s.repo.UpdatePaymentDetails(ctx, req.OrderID, UpdatePaymentDetailsParams{
		Status:    newStatus,
		PaymentID: &req.PaymentID,
		Method:    method,
		Amount:    amount,
		DonatedAt: donatedAt,
	})
	if err != nil {
		return apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &donation.UserID, nil, auditAction, map[string]interface{}{
		"order_id":        req.OrderID,
		"payment_id":      req.PaymentID,
		"amount":          amount,
		"donation_type":   donation.DonationType,
		"method":          method,
		"razorpay_status": status,
	}, req.IPAddress, auditStatus)

	return nil
}

func (s *service) GetDonation(ctx context.Context, id uint) (*Donation, error) {
	donation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("donation", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return donation, nil
}

func (s *service) GetDonationsByUser(ctx context.Context, userID uint) ([]Donation, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *service) GetDonationsWithFilters(ctx context.Context, filters DonationFilters) ([]Donation, int64, error) {
	return s.repo.ListWithFilters(ctx, filters)
}

func (s *service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}

func (s *service) GetTopDonors(ctx context.Context, limit int) ([]TopDonor, error) {
	return s.repo.GetTopDonors(ctx, limit)
}

// EnsureReceiptNumber assigns a receipt number to a successful donation if it
// doesn't have one yet. Receipts are only issued for settled donations.
func (s *service) EnsureReceiptNumber(ctx context.Context, donationID uint) (*Donation, error) {
	donation, err := s.GetDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.Status != StatusSuccess {
		return nil, apperrors.NewInvalidState(donation.Status, "issue a receipt")
	}
	if donation.ReceiptNumber != nil {
		return donation, nil
	}

	receipt := fmt.Sprintf("WLF-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
	if err := s.repo.SetReceiptNumber(ctx, donation.ID, receipt); err != nil {
		return nil, apperrors.WrapStore(err)
	}
	donation.ReceiptNumber = &receipt
	return donation, nil
}
