package recurringpayment

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
	"github.com/sharath018/welfare-management-backend/internal/notification"
	"github.com/sharath018/welfare-management-backend/utils"
)

// fakeRepo keeps payments in memory and mimics the repository guards.
type fakeRepo struct {
	payments   map[uint]*RecurringPayment
	nextID     uint
	hasActive  bool
	markedDue  int64
	markedOver int64

	forecastMonths int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: make(map[uint]*RecurringPayment), nextID: 1}
}

func (f *fakeRepo) CreateSchedule(ctx context.Context, applicationID uint, payments []RecurringPayment) error {
	if f.hasActive {
		return ErrActiveScheduleExists
	}
	for i := range payments {
		payments[i].ID = f.nextID
		p := payments[i]
		f.payments[p.ID] = &p
		f.nextID++
	}
	f.hasActive = true
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*RecurringPayment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, payment *RecurringPayment) error {
	clone := *payment
	f.payments[payment.ID] = &clone
	return nil
}

func (f *fakeRepo) ListByApplication(ctx context.Context, applicationID uint) ([]RecurringPayment, error) {
	var out []RecurringPayment
	for _, p := range f.payments {
		if p.ApplicationID == applicationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListWithFilters(ctx context.Context, filter PaymentFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]RecurringPayment, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) CancelPending(ctx context.Context, applicationID uint, reason string) (int64, error) {
	var n int64
	for _, p := range f.payments {
		if p.ApplicationID == applicationID && !IsTerminalStatus(p.Status) {
			p.Status = StatusCancelled
			p.CancellationReason = reason
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) MarkDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	cutoff := now.AddDate(0, 0, DueWindowDays)
	for _, p := range f.payments {
		if p.Status == StatusScheduled && !p.DueDate.After(cutoff) {
			p.Status = StatusDue
			n++
		}
	}
	f.markedDue += n
	return n, nil
}

func (f *fakeRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, p := range f.payments {
		if p.Status == StatusDue && p.DueDate.Before(now) {
			p.Status = StatusOverdue
			n++
		}
	}
	f.markedOver += n
	return n, nil
}

// ForecastByMonth mirrors the repository contract: only payments still
// awaiting disbursement inside the horizon are bucketed.
func (f *fakeRepo) ForecastByMonth(ctx context.Context, from time.Time, months int, filter ForecastFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]ForecastBucket, error) {
	f.forecastMonths = months
	until := from.AddDate(0, months, 0)

	byMonth := make(map[string]*ForecastBucket)
	for _, p := range f.payments {
		if !IsPayableStatus(p.Status) {
			continue
		}
		if p.ScheduledDate.Before(from) || !p.ScheduledDate.Before(until) {
			continue
		}
		if filter.SchemeID != nil && p.SchemeID != *filter.SchemeID {
			continue
		}
		if filter.ProjectID != nil && (p.ProjectID == nil || *p.ProjectID != *filter.ProjectID) {
			continue
		}
		month := p.ScheduledDate.Format("2006-01")
		bucket, ok := byMonth[month]
		if !ok {
			bucket = &ForecastBucket{Month: month}
			byMonth[month] = bucket
		}
		bucket.PaymentCount++
		bucket.TotalAmount += p.Amount
	}

	out := make([]ForecastBucket, 0, len(byMonth))
	for _, bucket := range byMonth {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// fakeAppService serves one application by id.
type fakeAppService struct {
	app *application.Application
}

func (f *fakeAppService) GetApplication(ctx context.Context, id uint) (*application.Application, error) {
	if f.app == nil || f.app.ID != id {
		return nil, apperrors.NewNotFound("application", id)
	}
	return f.app, nil
}

func (f *fakeAppService) CreateApplication(ctx context.Context, req application.CreateApplicationRequest, beneficiaryID uint, ip string) (*application.Application, error) {
	return nil, nil
}
func (f *fakeAppService) ListApplications(ctx context.Context, filter application.ApplicationFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) (*application.PaginatedApplications, error) {
	return nil, nil
}
func (f *fakeAppService) ListMyApplications(ctx context.Context, beneficiaryID uint) ([]application.Application, error) {
	return nil, nil
}
func (f *fakeAppService) MoveToReview(ctx context.Context, id uint, reviewerID uint, ip string) (*application.Application, error) {
	return nil, nil
}
func (f *fakeAppService) MarkInterviewScheduled(ctx context.Context, id uint) error { return nil }
func (f *fakeAppService) ApproveApplication(ctx context.Context, id uint, req application.ApproveApplicationRequest, approverID uint, ip string) (*application.Application, error) {
	return nil, nil
}
func (f *fakeAppService) RejectApplication(ctx context.Context, id uint, reason string, reviewerID uint, ip string) (*application.Application, error) {
	return nil, nil
}
func (f *fakeAppService) CompleteApplication(ctx context.Context, id uint, userID uint, ip string) (*application.Application, error) {
	return nil, nil
}
func (f *fakeAppService) CancelApplication(ctx context.Context, id uint, userID uint, ip string) (*application.Application, error) {
	return nil, nil
}

// fakeAudit records actions for assertion.
type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) LogAction(ctx context.Context, userID *uint, regionID *uint, action string, details map[string]interface{}, ip string, status string) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

func (f *fakeAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

func approvedApp(amount float64) *application.Application {
	return &application.Application{
		ID:             1,
		BeneficiaryID:  10,
		SchemeID:       5,
		Status:         application.StatusApproved,
		ApprovedAmount: &amount,
	}
}

func newTestService(app *application.Application) (Service, *fakeRepo, *fakeAudit) {
	repo := newFakeRepo()
	audit := &fakeAudit{}
	svc := NewService(repo, &fakeAppService{app: app}, audit)
	return svc, repo, audit
}

func TestGenerateSchedule_MonthlyEvenSplit(t *testing.T) {
	svc, _, audit := newTestService(approvedApp(12000))

	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	payments, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
		ApplicationID: 1,
		StartDate:     start,
		Frequency:     FrequencyMonthly,
		TotalPayments: 12,
	}, 99, "1.2.3.4")
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}

	if len(payments) != 12 {
		t.Fatalf("expected 12 payments, got %d", len(payments))
	}
	for i, p := range payments {
		if p.PaymentNumber != i+1 {
			t.Errorf("payment %d: number = %d", i, p.PaymentNumber)
		}
		if p.TotalPayments != 12 {
			t.Errorf("payment %d: total = %d", i, p.TotalPayments)
		}
		if math.Abs(p.Amount-1000) > 0.001 {
			t.Errorf("payment %d: amount = %f, want 1000", i, p.Amount)
		}
		want := start.AddDate(0, i, 0)
		if !p.ScheduledDate.Equal(want) {
			t.Errorf("payment %d: scheduled %v, want %v", i, p.ScheduledDate, want)
		}
		if !p.DueDate.Equal(p.ScheduledDate) {
			t.Errorf("payment %d: due date must equal scheduled date", i)
		}
		if p.Status != StatusScheduled {
			t.Errorf("payment %d: status = %s", i, p.Status)
		}
	}

	if len(audit.actions) == 0 || audit.actions[0] != "SCHEDULE_GENERATED" {
		t.Errorf("expected SCHEDULE_GENERATED audit entry, got %v", audit.actions)
	}
}

func TestGenerateSchedule_FrequencySpacing(t *testing.T) {
	cases := []struct {
		frequency string
		months    int
	}{
		{FrequencyMonthly, 1},
		{FrequencyQuarterly, 3},
		{FrequencySemiAnnually, 6},
		{FrequencyAnnually, 12},
	}

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.frequency, func(t *testing.T) {
			svc, _, _ := newTestService(approvedApp(4000))
			payments, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
				ApplicationID: 1,
				StartDate:     start,
				Frequency:     tc.frequency,
				TotalPayments: 4,
			}, 99, "")
			if err != nil {
				t.Fatalf("GenerateSchedule: %v", err)
			}
			for i, p := range payments {
				want := start.AddDate(0, tc.months*i, 0)
				if !p.ScheduledDate.Equal(want) {
					t.Errorf("payment %d: scheduled %v, want %v", i, p.ScheduledDate, want)
				}
			}
		})
	}
}

func TestGenerateSchedule_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  GenerateScheduleRequest
	}{
		{"unknown frequency", GenerateScheduleRequest{ApplicationID: 1, Frequency: "weekly", TotalPayments: 4}},
		{"zero payments", GenerateScheduleRequest{ApplicationID: 1, Frequency: FrequencyMonthly, TotalPayments: 0}},
		{"over the cap", GenerateScheduleRequest{ApplicationID: 1, Frequency: FrequencyMonthly, TotalPayments: MaxTotalPayments + 1}},
		{"negative amount", GenerateScheduleRequest{ApplicationID: 1, Frequency: FrequencyMonthly, TotalPayments: 4, Amount: -5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(approvedApp(1000))
			if _, err := svc.GenerateSchedule(context.Background(), tc.req, 99, ""); !apperrors.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGenerateSchedule_AtTheCap(t *testing.T) {
	svc, _, _ := newTestService(approvedApp(6000))
	payments, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
		ApplicationID: 1,
		Frequency:     FrequencyMonthly,
		TotalPayments: MaxTotalPayments,
	}, 99, "")
	if err != nil {
		t.Fatalf("schedule at the cap must succeed: %v", err)
	}
	if len(payments) != MaxTotalPayments {
		t.Errorf("expected %d payments, got %d", MaxTotalPayments, len(payments))
	}
}

func TestGenerateSchedule_RequiresApprovedApplication(t *testing.T) {
	amount := 1000.0
	app := &application.Application{ID: 1, Status: application.StatusPending, ApprovedAmount: &amount}
	svc, _, _ := newTestService(app)

	_, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
		ApplicationID: 1, Frequency: FrequencyMonthly, TotalPayments: 2,
	}, 99, "")
	if !apperrors.IsInvalidState(err) {
		t.Errorf("expected invalid-state error for pending application, got %v", err)
	}
}

func TestGenerateSchedule_SecondActiveScheduleRejected(t *testing.T) {
	svc, _, audit := newTestService(approvedApp(1000))

	req := GenerateScheduleRequest{ApplicationID: 1, Frequency: FrequencyMonthly, TotalPayments: 2}
	if _, err := svc.GenerateSchedule(context.Background(), req, 99, ""); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	if _, err := svc.GenerateSchedule(context.Background(), req, 99, ""); !apperrors.IsInvalidState(err) {
		t.Fatalf("expected invalid-state error for second schedule, got %v", err)
	}

	var failed bool
	for _, a := range audit.actions {
		if a == "SCHEDULE_GENERATE_FAILED" {
			failed = true
		}
	}
	if !failed {
		t.Error("rejected generation must leave a failure audit entry")
	}
}

func TestGenerateSchedule_FromTimeline(t *testing.T) {
	phases := []application.TimelinePhase{
		{Description: "enrollment", Amount: 500, ExpectedDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Description: "mid-term", Amount: 300, ExpectedDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Description: "final", Amount: 200, ExpectedDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	raw, _ := json.Marshal(phases)

	app := approvedApp(1000)
	app.DistributionTimeline = raw
	svc, _, _ := newTestService(app)

	payments, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
		ApplicationID: 1,
		UseTimeline:   true,
	}, 99, "")
	if err != nil {
		t.Fatalf("GenerateSchedule from timeline: %v", err)
	}

	if len(payments) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(payments))
	}
	for i, p := range payments {
		if p.Amount != phases[i].Amount {
			t.Errorf("payment %d: amount %f, want %f", i, p.Amount, phases[i].Amount)
		}
		if !p.ScheduledDate.Equal(phases[i].ExpectedDate) {
			t.Errorf("payment %d: date %v, want %v", i, p.ScheduledDate, phases[i].ExpectedDate)
		}
		if p.PhaseNumber == nil || *p.PhaseNumber != i+1 {
			t.Errorf("payment %d: missing phase number", i)
		}
	}
}

func TestGenerateSchedule_TimelineMissing(t *testing.T) {
	svc, _, _ := newTestService(approvedApp(1000))
	_, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
		ApplicationID: 1, UseTimeline: true,
	}, 99, "")
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for missing timeline, got %v", err)
	}
}

func TestRecordPayment_CompletesAndAudits(t *testing.T) {
	svc, repo, audit := newTestService(approvedApp(1000))
	seedPayment(repo, StatusDue)

	got, err := svc.RecordPayment(context.Background(), 1, RecordPaymentRequest{
		PaymentMethod:   "bank_transfer",
		ReferenceNumber: "TXN-001",
	}, 7, "")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.ProcessedBy == nil || *got.ProcessedBy != 7 {
		t.Error("processed_by must record the operator")
	}
	if got.ProcessedAt == nil || got.ActualPaymentDate == nil {
		t.Error("processed_at and actual_payment_date must be set")
	}
	if len(audit.actions) == 0 || audit.actions[len(audit.actions)-1] != "PAYMENT_RECORDED" {
		t.Errorf("expected PAYMENT_RECORDED, got %v", audit.actions)
	}
}

// Recording against a completed payment corrects metadata without touching
// status or the original processed_by.
func TestRecordPayment_MetadataCorrection(t *testing.T) {
	svc, repo, audit := newTestService(approvedApp(1000))
	seedPayment(repo, StatusDue)

	if _, err := svc.RecordPayment(context.Background(), 1, RecordPaymentRequest{PaymentMethod: "cash"}, 7, ""); err != nil {
		t.Fatalf("first record: %v", err)
	}

	got, err := svc.RecordPayment(context.Background(), 1, RecordPaymentRequest{
		PaymentMethod:   "bank_transfer",
		ReferenceNumber: "TXN-FIXED",
	}, 8, "")
	if err != nil {
		t.Fatalf("metadata correction: %v", err)
	}

	if got.Status != StatusCompleted {
		t.Errorf("status must stay completed, got %s", got.Status)
	}
	if got.PaymentMethod != "bank_transfer" || got.ReferenceNumber != "TXN-FIXED" {
		t.Error("metadata correction did not apply")
	}
	if got.ProcessedBy == nil || *got.ProcessedBy != 7 {
		t.Error("correction must not reassign processed_by")
	}
	if audit.actions[len(audit.actions)-1] != "PAYMENT_METADATA_CORRECTED" {
		t.Errorf("expected PAYMENT_METADATA_CORRECTED, got %v", audit.actions)
	}
}

func TestRecordPayment_TerminalStatusesRejected(t *testing.T) {
	for _, status := range []string{StatusCancelled, StatusFailed, StatusSkipped} {
		t.Run(status, func(t *testing.T) {
			svc, repo, _ := newTestService(approvedApp(1000))
			seedPayment(repo, status)

			_, err := svc.RecordPayment(context.Background(), 1, RecordPaymentRequest{PaymentMethod: "cash"}, 7, "")
			if !apperrors.IsInvalidState(err) {
				t.Errorf("expected invalid-state error for %s, got %v", status, err)
			}
		})
	}
}

func TestUpdatePayment_TerminalImmutable(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))
	seedPayment(repo, StatusCompleted)

	amount := 500.0
	_, err := svc.UpdatePayment(context.Background(), 1, UpdatePaymentRequest{Amount: &amount}, 7, "")
	if !apperrors.IsInvalidState(err) {
		t.Errorf("completed payment must reject edits, got %v", err)
	}
}

// Pushing an overdue payment's date into the future resets it to scheduled.
func TestUpdatePayment_FutureDateResetsOverdue(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))
	seedPayment(repo, StatusOverdue)

	future := time.Now().AddDate(0, 1, 0)
	got, err := svc.UpdatePayment(context.Background(), 1, UpdatePaymentRequest{ScheduledDate: &future}, 7, "")
	if err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("status = %s, want scheduled", got.Status)
	}
	if !got.DueDate.Equal(future) {
		t.Error("due date must follow the scheduled date")
	}
}

func TestCancelPayment_ReasonRequired(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))
	seedPayment(repo, StatusScheduled)

	if _, err := svc.CancelPayment(context.Background(), 1, "", 7, ""); !apperrors.IsValidation(err) {
		t.Errorf("empty reason must fail validation, got %v", err)
	}

	got, err := svc.CancelPayment(context.Background(), 1, "beneficiary relocated", 7, "")
	if err != nil {
		t.Fatalf("CancelPayment: %v", err)
	}
	if got.Status != StatusCancelled || got.CancellationReason != "beneficiary relocated" {
		t.Errorf("cancellation not recorded: %+v", got)
	}
}

// Cancelling a schedule cancels pending rows only; disbursed payments stand.
func TestCancelSchedule_LeavesCompletedAlone(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))
	seedPayment(repo, StatusCompleted)
	seedPayment(repo, StatusScheduled)
	seedPayment(repo, StatusDue)

	cancelled, err := svc.CancelSchedule(context.Background(), 1, "scheme closed", 7, "")
	if err != nil {
		t.Fatalf("CancelSchedule: %v", err)
	}
	if cancelled != 2 {
		t.Errorf("cancelled = %d, want 2", cancelled)
	}

	completed, _ := repo.GetByID(context.Background(), 1)
	if completed.Status != StatusCompleted {
		t.Error("completed payment must not be cancelled")
	}
}

func TestRunOverdueSweep_Idempotent(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))

	// Within the due window, and already past due.
	soon := seedPayment(repo, StatusScheduled)
	soon.DueDate = time.Now().AddDate(0, 0, 3)
	past := seedPayment(repo, StatusDue)
	past.DueDate = time.Now().AddDate(0, 0, -2)
	// Far in the future: untouched.
	far := seedPayment(repo, StatusScheduled)
	far.DueDate = time.Now().AddDate(0, 6, 0)

	result, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("RunOverdueSweep: %v", err)
	}
	if result.MarkedDue != 1 {
		t.Errorf("marked due = %d, want 1", result.MarkedDue)
	}
	if result.MarkedOverdue != 1 {
		t.Errorf("marked overdue = %d, want 1", result.MarkedOverdue)
	}

	// A second pass over the same data reports zero for the rows already
	// advanced past scheduled/due.
	result, err = svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if result.MarkedOverdue != 0 {
		t.Errorf("second sweep marked overdue = %d, want 0", result.MarkedOverdue)
	}
}

// Forecast horizons are clamped to 1..24 months, defaulting to a year.
func TestGetBudgetForecast_ClampsHorizon(t *testing.T) {
	cases := []struct {
		months int
		want   int
	}{
		{0, 12},
		{-3, 12},
		{6, 6},
		{24, 24},
		{36, 24},
	}

	for _, tc := range cases {
		svc, repo, _ := newTestService(approvedApp(1000))
		if _, err := svc.GetBudgetForecast(context.Background(), tc.months, ForecastFilter{}, nil, nil, nil); err != nil {
			t.Fatalf("GetBudgetForecast(%d): %v", tc.months, err)
		}
		if repo.forecastMonths != tc.want {
			t.Errorf("months = %d, forecast queried %d, want %d", tc.months, repo.forecastMonths, tc.want)
		}
	}
}

// Cancelled, completed, failed and skipped payments carry no future outflow
// and must stay out of the forecast.
func TestGetBudgetForecast_OnlyActiveStatusesCounted(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))

	next := time.Now().AddDate(0, 1, 0)
	for _, status := range []string{
		StatusScheduled, StatusDue, StatusOverdue, StatusProcessing,
		StatusCompleted, StatusCancelled, StatusFailed, StatusSkipped,
	} {
		p := seedPayment(repo, status)
		p.ScheduledDate = next
	}

	buckets, err := svc.GetBudgetForecast(context.Background(), 3, ForecastFilter{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("GetBudgetForecast: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(buckets))
	}
	if buckets[0].PaymentCount != 4 {
		t.Errorf("count = %d, want 4 (active statuses only)", buckets[0].PaymentCount)
	}
	if math.Abs(buckets[0].TotalAmount-400) > 0.001 {
		t.Errorf("total = %f, want 400", buckets[0].TotalAmount)
	}
}

func TestGetBudgetForecast_SchemeFilter(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))

	next := time.Now().AddDate(0, 1, 0)
	inScheme := seedPayment(repo, StatusScheduled)
	inScheme.ScheduledDate = next
	inScheme.SchemeID = 5
	other := seedPayment(repo, StatusScheduled)
	other.ScheduledDate = next
	other.SchemeID = 9

	scheme := uint(5)
	buckets, err := svc.GetBudgetForecast(context.Background(), 3, ForecastFilter{SchemeID: &scheme}, nil, nil, nil)
	if err != nil {
		t.Fatalf("GetBudgetForecast: %v", err)
	}
	if len(buckets) != 1 || buckets[0].PaymentCount != 1 {
		t.Fatalf("scheme filter must keep one payment, got %+v", buckets)
	}
}

// fakeNotif records in-app deliveries so tests can observe the fallback
// channel used when the event bus is offline.
type fakeNotif struct {
	inApp []string
}

func (f *fakeNotif) CreateInAppNotification(ctx context.Context, userID uint, title, message, category string) error {
	f.inApp = append(f.inApp, title)
	return nil
}
func (f *fakeNotif) ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]notification.InAppNotification, int64, error) {
	return nil, 0, nil
}
func (f *fakeNotif) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	return nil
}
func (f *fakeNotif) MarkAllRead(ctx context.Context, userID uint) (int64, error) { return 0, nil }
func (f *fakeNotif) CountUnread(ctx context.Context, userID uint) (int64, error) { return 0, nil }
func (f *fakeNotif) RegisterDeviceToken(ctx context.Context, userID uint, req notification.RegisterTokenRequest) error {
	return nil
}
func (f *fakeNotif) UnregisterDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return nil
}
func (f *fakeNotif) SendPushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	return nil
}
func (f *fakeNotif) SendEmailToUsers(ctx context.Context, recipients []string, subject, body string, senderID *uint) error {
	return nil
}
func (f *fakeNotif) Dispatch(ctx context.Context, event utils.NotificationEvent) error { return nil }

// With kafka offline, a disbursement notifies the beneficiary through the
// in-app channel; correcting metadata afterwards must not notify again.
func TestRecordPayment_NotifiesBeneficiary(t *testing.T) {
	svc, repo, _ := newTestService(approvedApp(1000))
	notif := &fakeNotif{}
	svc.SetNotifService(notif)
	seedPayment(repo, StatusDue)

	if _, err := svc.RecordPayment(context.Background(), 1, RecordPaymentRequest{PaymentMethod: "cash"}, 7, ""); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if len(notif.inApp) != 1 {
		t.Fatalf("expected one in-app notification, got %d", len(notif.inApp))
	}

	if _, err := svc.RecordPayment(context.Background(), 1, RecordPaymentRequest{PaymentMethod: "bank_transfer", ReferenceNumber: "TXN-1"}, 8, ""); err != nil {
		t.Fatalf("metadata correction: %v", err)
	}
	if len(notif.inApp) != 1 {
		t.Errorf("metadata correction must not re-notify, got %d deliveries", len(notif.inApp))
	}
}

func TestGenerateSchedule_NotifiesBeneficiary(t *testing.T) {
	svc, _, _ := newTestService(approvedApp(1000))
	notif := &fakeNotif{}
	svc.SetNotifService(notif)

	if _, err := svc.GenerateSchedule(context.Background(), GenerateScheduleRequest{
		ApplicationID: 1, Frequency: FrequencyMonthly, TotalPayments: 2,
	}, 99, ""); err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if len(notif.inApp) != 1 {
		t.Errorf("expected one in-app notification, got %d", len(notif.inApp))
	}
}

func seedPayment(repo *fakeRepo, status string) *RecurringPayment {
	p := &RecurringPayment{
		ID:            repo.nextID,
		ApplicationID: 1,
		BeneficiaryID: 10,
		PaymentNumber: int(repo.nextID),
		TotalPayments: 3,
		Amount:        100,
		ScheduledDate: time.Now(),
		DueDate:       time.Now(),
		Status:        status,
	}
	if status == StatusCompleted {
		uid := uint(7)
		now := time.Now()
		p.ProcessedBy = &uid
		p.ProcessedAt = &now
	}
	repo.payments[p.ID] = p
	repo.nextID++
	return p
}
