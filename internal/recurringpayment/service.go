package recurringpayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
	"github.com/sharath018/welfare-management-backend/internal/notification"
	"github.com/sharath018/welfare-management-backend/utils"
)

type Service interface {
	GenerateSchedule(ctx context.Context, req GenerateScheduleRequest, userID uint, ip string) ([]RecurringPayment, error)
	GetPayment(ctx context.Context, id uint) (*RecurringPayment, error)
	ListByApplication(ctx context.Context, applicationID uint) ([]RecurringPayment, error)
	ListPayments(ctx context.Context, filter PaymentFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]RecurringPayment, int64, error)
	RecordPayment(ctx context.Context, id uint, req RecordPaymentRequest, userID uint, ip string) (*RecurringPayment, error)
	UpdatePayment(ctx context.Context, id uint, req UpdatePaymentRequest, userID uint, ip string) (*RecurringPayment, error)
	CancelPayment(ctx context.Context, id uint, reason string, userID uint, ip string) (*RecurringPayment, error)
	CancelSchedule(ctx context.Context, applicationID uint, reason string, userID uint, ip string) (int64, error)
	RunOverdueSweep(ctx context.Context) (*SweepResult, error)
	GetBudgetForecast(ctx context.Context, months int, filter ForecastFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]ForecastBucket, error)

	SetNotifService(n notification.Service)
}

type service struct {
	repo     Repository
	appSvc   application.Service
	auditSvc auditlog.Service
	notifSvc notification.Service
}

func NewService(repo Repository, appSvc application.Service, auditSvc auditlog.Service) Service {
	return &service{
		repo:     repo,
		appSvc:   appSvc,
		auditSvc: auditSvc,
	}
}

func (s *service) SetNotifService(n notification.Service) {
	s.notifSvc = n
}

// notify hands the event to the notification bus, where the consumer fans it
// out to the in-app and push channels. When the bus is unavailable the in-app
// channel is written directly so the beneficiary still sees the event.
func (s *service) notify(ctx context.Context, userID uint, regionID *uint, eventType, title, body string, data map[string]interface{}) {
	if utils.PublishNotificationEvent(utils.NotificationEvent{
		Type:     eventType,
		UserID:   &userID,
		RegionID: regionID,
		Title:    title,
		Body:     body,
		Data:     data,
	}) {
		return
	}
	if s.notifSvc != nil {
		_ = s.notifSvc.CreateInAppNotification(ctx, userID, title, body, "payment")
	}
}

// GenerateSchedule expands an approved application into its planned
// disbursements. Either a fixed frequency/count pair or the application's
// distribution timeline drives the expansion; the whole batch lands in one
// transaction guarded against a second active schedule.
func (s *service) GenerateSchedule(ctx context.Context, req GenerateScheduleRequest, userID uint, ip string) ([]RecurringPayment, error) {
	app, err := s.appSvc.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	if !application.IsApprovedStatus(app.Status) {
		return nil, apperrors.NewInvalidState(app.Status, "generate a payment schedule")
	}
	if app.ApprovedAmount == nil || *app.ApprovedAmount <= 0 {
		return nil, apperrors.NewValidation("approved_amount", "application has no approved amount")
	}

	var payments []RecurringPayment
	if req.UseTimeline {
		payments, err = s.paymentsFromTimeline(app)
	} else {
		payments, err = s.paymentsFromFrequency(app, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateSchedule(ctx, app.ID, payments); err != nil {
		if errors.Is(err, ErrActiveScheduleExists) {
			s.auditSvc.LogAction(ctx, &userID, app.DistrictID, "SCHEDULE_GENERATE_FAILED", map[string]interface{}{
				"application_id": app.ID,
				"reason":         "active schedule exists",
			}, ip, "failure")
			return nil, apperrors.NewInvalidState("active", "generate another schedule")
		}
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, app.DistrictID, "SCHEDULE_GENERATED", map[string]interface{}{
		"application_id": app.ID,
		"payment_count":  len(payments),
		"total_amount":   scheduleTotal(payments),
		"from_timeline":  req.UseTimeline,
	}, ip, "success")

	log.Printf("✅ Generated %d payments for application %d", len(payments), app.ID)

	s.notify(ctx, app.BeneficiaryID, app.DistrictID, "SCHEDULE_CREATED",
		"Payment Schedule Created",
		fmt.Sprintf("%d payments have been scheduled for your application", len(payments)),
		map[string]interface{}{"application_id": app.ID, "payment_count": len(payments)})

	return payments, nil
}

// paymentsFromFrequency builds an evenly spaced, evenly sized schedule
func (s *service) paymentsFromFrequency(app *application.Application, req GenerateScheduleRequest) ([]RecurringPayment, error) {
	months, ok := frequencyMonths[req.Frequency]
	if !ok {
		return nil, apperrors.NewValidation("frequency", "must be monthly, quarterly, semi_annually or annually")
	}
	if req.TotalPayments < 1 || req.TotalPayments > MaxTotalPayments {
		return nil, apperrors.NewValidation("total_payments", fmt.Sprintf("must be between 1 and %d", MaxTotalPayments))
	}

	amount := req.Amount
	if amount == 0 {
		// Split the approved amount evenly when no per-payment amount is given
		amount = *app.ApprovedAmount / float64(req.TotalPayments)
	}
	if amount <= 0 {
		return nil, apperrors.NewValidation("amount", "must be positive")
	}

	start := req.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	payments := make([]RecurringPayment, 0, req.TotalPayments)
	for i := 0; i < req.TotalPayments; i++ {
		scheduled := start.AddDate(0, months*i, 0)
		payments = append(payments, RecurringPayment{
			ApplicationID: app.ID,
			BeneficiaryID: app.BeneficiaryID,
			SchemeID:      app.SchemeID,
			ProjectID:     app.ProjectID,
			StateID:       app.StateID,
			DistrictID:    app.DistrictID,
			AreaID:        app.AreaID,
			UnitID:        app.UnitID,
			PaymentNumber: i + 1,
			TotalPayments: req.TotalPayments,
			CycleNumber:   i + 1,
			Amount:        amount,
			ScheduledDate: scheduled,
			DueDate:       scheduled,
			Status:        StatusScheduled,
		})
	}
	return payments, nil
}

// paymentsFromTimeline builds one payment per distribution-timeline phase
func (s *service) paymentsFromTimeline(app *application.Application) ([]RecurringPayment, error) {
	if len(app.DistributionTimeline) == 0 {
		return nil, apperrors.NewValidation("distribution_timeline", "application has no distribution timeline")
	}

	var phases []application.TimelinePhase
	if err := json.Unmarshal(app.DistributionTimeline, &phases); err != nil {
		return nil, apperrors.NewValidation("distribution_timeline", "is not readable")
	}
	if len(phases) == 0 {
		return nil, apperrors.NewValidation("distribution_timeline", "has no phases")
	}
	if len(phases) > MaxTotalPayments {
		return nil, apperrors.NewValidation("distribution_timeline", fmt.Sprintf("cannot exceed %d phases", MaxTotalPayments))
	}

	payments := make([]RecurringPayment, 0, len(phases))
	for i, phase := range phases {
		if phase.Amount <= 0 {
			return nil, apperrors.NewValidation("distribution_timeline", fmt.Sprintf("phase %d amount must be positive", i+1))
		}
		phaseNumber := i + 1
		payments = append(payments, RecurringPayment{
			ApplicationID: app.ID,
			BeneficiaryID: app.BeneficiaryID,
			SchemeID:      app.SchemeID,
			ProjectID:     app.ProjectID,
			StateID:       app.StateID,
			DistrictID:    app.DistrictID,
			AreaID:        app.AreaID,
			UnitID:        app.UnitID,
			PaymentNumber: phaseNumber,
			TotalPayments: len(phases),
			PhaseNumber:   &phaseNumber,
			Amount:        phase.Amount,
			ScheduledDate: phase.ExpectedDate,
			DueDate:       phase.ExpectedDate,
			Status:        StatusScheduled,
		})
	}
	return payments, nil
}

func (s *service) GetPayment(ctx context.Context, id uint) (*RecurringPayment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return payment, nil
}

func (s *service) ListByApplication(ctx context.Context, applicationID uint) ([]RecurringPayment, error) {
	payments, err := s.repo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}
	return payments, nil
}

func (s *service) ListPayments(ctx context.Context, filter PaymentFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]RecurringPayment, int64, error) {
	return s.repo.ListWithFilters(ctx, filter, scopeRegionIDs, projectIDs, schemeIDs)
}

// RecordPayment marks a payment disbursed. A completed payment accepts
// metadata corrections but never reverts to an earlier status.
func (s *service) RecordPayment(ctx context.Context, id uint, req RecordPaymentRequest, userID uint, ip string) (*RecurringPayment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	metadataOnly := payment.Status == StatusCompleted
	if !metadataOnly && !IsPayableStatus(payment.Status) {
		return nil, apperrors.NewInvalidState(payment.Status, "record a disbursement")
	}

	now := time.Now()
	actualDate := now
	if req.ActualPaymentDate != nil {
		actualDate = *req.ActualPaymentDate
	}

	payment.PaymentMethod = req.PaymentMethod
	payment.ReferenceNumber = req.ReferenceNumber
	payment.Notes = req.Notes
	payment.ActualPaymentDate = &actualDate

	if !metadataOnly {
		payment.Status = StatusCompleted
		payment.ProcessedBy = &userID
		payment.ProcessedAt = &now
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	action := "PAYMENT_RECORDED"
	if metadataOnly {
		action = "PAYMENT_METADATA_CORRECTED"
	}
	s.auditSvc.LogAction(ctx, &userID, payment.DistrictID, action, map[string]interface{}{
		"payment_id":     payment.ID,
		"application_id": payment.ApplicationID,
		"payment_number": payment.PaymentNumber,
		"amount":         payment.Amount,
		"method":         payment.PaymentMethod,
		"reference":      payment.ReferenceNumber,
	}, ip, "success")

	if !metadataOnly {
		s.notify(ctx, payment.BeneficiaryID, payment.DistrictID, "PAYMENT_DISBURSED",
			"Payment Disbursed",
			fmt.Sprintf("Payment %d of %d (%.2f) has been disbursed", payment.PaymentNumber, payment.TotalPayments, payment.Amount),
			map[string]interface{}{"payment_id": payment.ID, "application_id": payment.ApplicationID})
	}

	return payment, nil
}

// UpdatePayment edits a pending payment's amount, date or notes. Terminal
// payments are immutable apart from the metadata path in RecordPayment.
func (s *service) UpdatePayment(ctx context.Context, id uint, req UpdatePaymentRequest, userID uint, ip string) (*RecurringPayment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if IsTerminalStatus(payment.Status) {
		return nil, apperrors.NewInvalidState(payment.Status, "update")
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, apperrors.NewValidation("amount", "must be positive")
		}
		payment.Amount = *req.Amount
	}
	if req.ScheduledDate != nil {
		payment.ScheduledDate = *req.ScheduledDate
		payment.DueDate = *req.ScheduledDate
		// A pushed-out date resets due/overdue back to scheduled
		if payment.Status == StatusDue || payment.Status == StatusOverdue {
			if req.ScheduledDate.After(time.Now()) {
				payment.Status = StatusScheduled
			}
		}
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, payment.DistrictID, "PAYMENT_UPDATED", map[string]interface{}{
		"payment_id":     payment.ID,
		"application_id": payment.ApplicationID,
		"amount":         payment.Amount,
		"scheduled_date": payment.ScheduledDate,
	}, ip, "success")

	return payment, nil
}

// CancelPayment cancels a single pending payment. The reason is mandatory
// and survives on the row.
func (s *service) CancelPayment(ctx context.Context, id uint, reason string, userID uint, ip string) (*RecurringPayment, error) {
	if reason == "" {
		return nil, apperrors.NewValidation("reason", "cancellation reason is required")
	}

	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if IsTerminalStatus(payment.Status) {
		return nil, apperrors.NewInvalidState(payment.Status, "cancel")
	}

	payment.Status = StatusCancelled
	payment.CancellationReason = reason

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, payment.DistrictID, "PAYMENT_CANCELLED", map[string]interface{}{
		"payment_id":     payment.ID,
		"application_id": payment.ApplicationID,
		"reason":         reason,
	}, ip, "success")

	return payment, nil
}

// CancelSchedule cancels every pending payment of an application at once,
// e.g. when the beneficiary exits the scheme. Disbursed payments stand.
func (s *service) CancelSchedule(ctx context.Context, applicationID uint, reason string, userID uint, ip string) (int64, error) {
	if reason == "" {
		return 0, apperrors.NewValidation("reason", "cancellation reason is required")
	}

	app, err := s.appSvc.GetApplication(ctx, applicationID)
	if err != nil {
		return 0, err
	}

	cancelled, err := s.repo.CancelPending(ctx, applicationID, reason)
	if err != nil {
		return 0, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, app.DistrictID, "SCHEDULE_CANCELLED", map[string]interface{}{
		"application_id":  applicationID,
		"cancelled_count": cancelled,
		"reason":          reason,
	}, ip, "success")

	return cancelled, nil
}

// RunOverdueSweep advances the clock-driven statuses. Both updates carry a
// status guard in the WHERE clause, so overlapping runs are harmless and a
// second run over the same data reports zero.
func (s *service) RunOverdueSweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now()

	markedDue, err := s.repo.MarkDue(ctx, now)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}

	markedOverdue, err := s.repo.MarkOverdue(ctx, now)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}

	if markedDue > 0 || markedOverdue > 0 {
		log.Printf("🔄 Payment sweep: %d marked due, %d marked overdue", markedDue, markedOverdue)
		// Aggregate signal for ops dashboards; the bulk UPDATEs return counts,
		// not rows, so there is no per-beneficiary event here.
		utils.PublishNotificationEvent(utils.NotificationEvent{
			Type:  "PAYMENT_SWEEP",
			Title: "Payment Sweep Completed",
			Body:  fmt.Sprintf("%d payments due, %d overdue", markedDue, markedOverdue),
			Data: map[string]interface{}{
				"marked_due":     markedDue,
				"marked_overdue": markedOverdue,
			},
		})
	}

	return &SweepResult{
		MarkedDue:     markedDue,
		MarkedOverdue: markedOverdue,
		RanAt:         now,
	}, nil
}

// GetBudgetForecast projects pending outflow per month for planning, limited
// to what the caller's scope covers
func (s *service) GetBudgetForecast(ctx context.Context, months int, filter ForecastFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]ForecastBucket, error) {
	if months <= 0 {
		months = 12
	}
	if months > 24 {
		months = 24
	}

	buckets, err := s.repo.ForecastByMonth(ctx, time.Now(), months, filter, scopeRegionIDs, projectIDs, schemeIDs)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}
	return buckets, nil
}

func scheduleTotal(payments []RecurringPayment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}
