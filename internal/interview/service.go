package interview

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/notification"
	"github.com/sharath018/welfare-management-backend/internal/payment"
	"github.com/sharath018/welfare-management-backend/internal/recurringpayment"
	"github.com/sharath018/welfare-management-backend/utils"
)

var validModes = map[string]bool{"in_person": true, "phone": true, "video": true}
var validResults = map[string]bool{
	ResultPassed:        true,
	ResultFailed:        true,
	ResultNeedsFollowup: true,
}

// UserGetter looks up beneficiary contact details for notifications
type UserGetter interface {
	GetUserByID(userID uint) (auth.User, error)
}

type Service interface {
	ScheduleInterview(ctx context.Context, req ScheduleInterviewRequest, interviewerID uint, ip string) (*Interview, error)
	RescheduleInterview(ctx context.Context, id uint, req RescheduleInterviewRequest, userID uint, ip string) (*Interview, error)
	RecordResult(ctx context.Context, id uint, req RecordResultRequest, userID uint, ip string) (*Interview, error)
	CancelInterview(ctx context.Context, id uint, userID uint, ip string) (*Interview, error)
	GetInterview(ctx context.Context, id uint) (*Interview, error)
	ListByApplication(ctx context.Context, applicationID uint) ([]Interview, error)
	ListInterviews(ctx context.Context, filter InterviewFilter, scopeRegionIDs []uint) ([]Interview, int64, error)

	SetNotifService(n notification.Service)
}

type service struct {
	repo        Repository
	appSvc      application.Service
	scheduleSvc recurringpayment.Service
	paymentSvc  payment.Service
	users       UserGetter
	auditSvc    auditlog.Service
	notifSvc    notification.Service
}

func NewService(
	repo Repository,
	appSvc application.Service,
	scheduleSvc recurringpayment.Service,
	paymentSvc payment.Service,
	users UserGetter,
	auditSvc auditlog.Service,
) Service {
	return &service{
		repo:        repo,
		appSvc:      appSvc,
		scheduleSvc: scheduleSvc,
		paymentSvc:  paymentSvc,
		users:       users,
		auditSvc:    auditSvc,
	}
}

func (s *service) SetNotifService(n notification.Service) {
	s.notifSvc = n
}

// ScheduleInterview books a verification meeting and moves the application to
// interview_scheduled
func (s *service) ScheduleInterview(ctx context.Context, req ScheduleInterviewRequest, interviewerID uint, ip string) (*Interview, error) {
	if req.ScheduledAt.Before(time.Now()) {
		return nil, apperrors.NewValidation("scheduled_at", "must be in the future")
	}
	mode := req.Mode
	if mode == "" {
		mode = "in_person"
	}
	if !validModes[mode] {
		return nil, apperrors.NewValidation("mode", "must be 'in_person', 'phone' or 'video'")
	}

	app, err := s.appSvc.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	if app.Status != application.StatusUnderReview && app.Status != application.StatusInterviewScheduled {
		return nil, apperrors.NewInvalidState(app.Status, "schedule an interview")
	}

	interview := &Interview{
		ApplicationID: app.ID,
		BeneficiaryID: app.BeneficiaryID,
		InterviewerID: interviewerID,
		StateID:       app.StateID,
		DistrictID:    app.DistrictID,
		AreaID:        app.AreaID,
		UnitID:        app.UnitID,
		ScheduledAt:   req.ScheduledAt,
		Location:      req.Location,
		Mode:          mode,
		Status:        StatusScheduled,
	}

	if err := s.repo.Create(ctx, interview); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	if err := s.appSvc.MarkInterviewScheduled(ctx, app.ID); err != nil {
		log.Printf("⚠️ Failed to flip application %d to interview_scheduled: %v", app.ID, err)
	}

	s.auditSvc.LogAction(ctx, &interviewerID, app.DistrictID, "INTERVIEW_SCHEDULED", map[string]interface{}{
		"interview_id":   interview.ID,
		"application_id": app.ID,
		"scheduled_at":   req.ScheduledAt,
		"mode":           mode,
	}, ip, "success")

	s.notifyBeneficiary(ctx, interview, "INTERVIEW_SCHEDULED", "Interview Scheduled",
		"Your application interview has been scheduled for "+req.ScheduledAt.Format("02 Jan 2006 15:04"))

	return interview, nil
}

func (s *service) RescheduleInterview(ctx context.Context, id uint, req RescheduleInterviewRequest, userID uint, ip string) (*Interview, error) {
	interview, err := s.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}

	if interview.Status != StatusScheduled && interview.Status != StatusRescheduled && interview.Status != StatusNoShow {
		return nil, apperrors.NewInvalidState(interview.Status, "reschedule")
	}
	if req.ScheduledAt.Before(time.Now()) {
		return nil, apperrors.NewValidation("scheduled_at", "must be in the future")
	}

	interview.ScheduledAt = req.ScheduledAt
	if req.Location != "" {
		interview.Location = req.Location
	}
	if req.Mode != "" {
		if !validModes[req.Mode] {
			return nil, apperrors.NewValidation("mode", "must be 'in_person', 'phone' or 'video'")
		}
		interview.Mode = req.Mode
	}
	interview.Status = StatusRescheduled

	if err := s.repo.Update(ctx, interview); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, interview.DistrictID, "INTERVIEW_RESCHEDULED", map[string]interface{}{
		"interview_id":   interview.ID,
		"application_id": interview.ApplicationID,
		"scheduled_at":   req.ScheduledAt,
	}, ip, "success")

	s.notifyBeneficiary(ctx, interview, "INTERVIEW_RESCHEDULED", "Interview Rescheduled",
		"Your interview has been moved to "+req.ScheduledAt.Format("02 Jan 2006 15:04"))

	return interview, nil
}

// RecordResult completes the interview. A passed result approves the
// application for its requested amount and kicks off disbursement: the
// payment plan when a distribution timeline exists, a single pending payment
// otherwise. Both side effects are best-effort — a failure there never rolls
// back the interview result.
func (s *service) RecordResult(ctx context.Context, id uint, req RecordResultRequest, userID uint, ip string) (*Interview, error) {
	if !validResults[req.Result] {
		return nil, apperrors.NewValidation("result", "must be 'passed', 'failed' or 'needs_followup'")
	}

	interview, err := s.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}

	if interview.Status != StatusScheduled && interview.Status != StatusRescheduled {
		return nil, apperrors.NewInvalidState(interview.Status, "record a result")
	}

	now := time.Now()
	interview.Status = StatusCompleted
	interview.Result = req.Result
	interview.Notes = req.Notes
	interview.CompletedAt = &now

	if err := s.repo.Update(ctx, interview); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, interview.DistrictID, "INTERVIEW_COMPLETED", map[string]interface{}{
		"interview_id":   interview.ID,
		"application_id": interview.ApplicationID,
		"result":         req.Result,
	}, ip, "success")

	if req.Result == ResultPassed {
		s.handlePassed(ctx, interview, userID, ip)
	}

	return interview, nil
}

// handlePassed drives the post-interview approval flow
func (s *service) handlePassed(ctx context.Context, interview *Interview, userID uint, ip string) {
	app, err := s.appSvc.GetApplication(ctx, interview.ApplicationID)
	if err != nil {
		log.Printf("⚠️ Interview %d passed but application lookup failed: %v", interview.ID, err)
		return
	}

	approved, err := s.appSvc.ApproveApplication(ctx, app.ID, application.ApproveApplicationRequest{
		ApprovedAmount: app.RequestedAmount,
	}, userID, ip)
	if err != nil {
		log.Printf("⚠️ Interview %d passed but approval failed: %v", interview.ID, err)
		return
	}

	s.notifyBeneficiary(ctx, interview, "APPLICATION_APPROVED", "Application Approved",
		"Your application passed the interview and has been approved")

	if user, err := s.users.GetUserByID(app.BeneficiaryID); err == nil && user.Email != "" {
		go utils.SendApplicationApprovalEmail(user.Email, user.FullName, approved.Purpose)
	}

	if len(approved.DistributionTimeline) > 0 {
		_, err := s.scheduleSvc.GenerateSchedule(ctx, recurringpayment.GenerateScheduleRequest{
			ApplicationID: approved.ID,
			UseTimeline:   true,
		}, userID, ip)
		if err != nil {
			log.Printf("⚠️ Schedule generation after interview %d failed: %v", interview.ID, err)
		}
		return
	}

	_, err = s.paymentSvc.CreatePayment(ctx, payment.CreatePaymentRequest{
		ApplicationID: approved.ID,
		Amount:        *approved.ApprovedAmount,
	}, userID, ip)
	if err != nil {
		log.Printf("⚠️ Payment creation after interview %d failed: %v", interview.ID, err)
	}
}

func (s *service) CancelInterview(ctx context.Context, id uint, userID uint, ip string) (*Interview, error) {
	interview, err := s.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}

	if interview.Status == StatusCompleted || interview.Status == StatusCancelled {
		return nil, apperrors.NewInvalidState(interview.Status, "cancel")
	}

	interview.Status = StatusCancelled

	if err := s.repo.Update(ctx, interview); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, interview.DistrictID, "INTERVIEW_CANCELLED", map[string]interface{}{
		"interview_id":   interview.ID,
		"application_id": interview.ApplicationID,
	}, ip, "success")

	return interview, nil
}

func (s *service) GetInterview(ctx context.Context, id uint) (*Interview, error) {
	interview, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("interview", id)
		}
		return nil, apperrors.WrapStore(err)
	}
	return interview, nil
}

func (s *service) ListByApplication(ctx context.Context, applicationID uint) ([]Interview, error) {
	return s.repo.ListByApplication(ctx, applicationID)
}

func (s *service) ListInterviews(ctx context.Context, filter InterviewFilter, scopeRegionIDs []uint) ([]Interview, int64, error) {
	return s.repo.ListWithFilters(ctx, filter, scopeRegionIDs)
}

// notifyBeneficiary hands the event to the notification bus; when the bus is
// unavailable the in-app channel is written directly.
func (s *service) notifyBeneficiary(ctx context.Context, interview *Interview, eventType, title, body string) {
	if utils.PublishNotificationEvent(utils.NotificationEvent{
		Type:     eventType,
		UserID:   &interview.BeneficiaryID,
		RegionID: interview.DistrictID,
		Title:    title,
		Body:     body,
		Data: map[string]interface{}{
			"interview_id":   interview.ID,
			"application_id": interview.ApplicationID,
		},
	}) {
		return
	}
	if s.notifSvc != nil {
		_ = s.notifSvc.CreateInAppNotification(ctx, interview.BeneficiaryID, title, body, "interview")
	}
}
