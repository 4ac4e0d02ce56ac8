package donation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/config"
	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type fakeRepo struct {
	donations map[uint]*Donation
	receipts  map[uint]string
}

func newFakeRepo(seed ...Donation) *fakeRepo {
	f := &fakeRepo{donations: make(map[uint]*Donation), receipts: make(map[uint]string)}
	for _, d := range seed {
		don := d
		f.donations[don.ID] = &don
	}
	return f
}

func (f *fakeRepo) Create(ctx context.Context, donation *Donation) error {
	f.donations[donation.ID] = donation
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*Donation, error) {
	d, ok := f.donations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *d
	return &clone, nil
}

func (f *fakeRepo) GetByOrderID(ctx context.Context, orderID string) (*Donation, error) {
	for _, d := range f.donations {
		if d.OrderID == orderID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdatePaymentDetails(ctx context.Context, orderID string, params UpdatePaymentDetailsParams) error {
	for _, d := range f.donations {
		if d.OrderID == orderID {
			d.Status = params.Status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) SetReceiptNumber(ctx context.Context, id uint, receiptNumber string) error {
	d, ok := f.donations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.ReceiptNumber = &receiptNumber
	f.receipts[id] = receiptNumber
	return nil
}

func (f *fakeRepo) ListByUserID(ctx context.Context, userID uint) ([]Donation, error) {
	return nil, nil
}

func (f *fakeRepo) ListWithFilters(ctx context.Context, filters DonationFilters) ([]Donation, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	return nil, nil
}

func (f *fakeRepo) GetTopDonors(ctx context.Context, limit int) ([]TopDonor, error) {
	return nil, nil
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) LogAction(ctx context.Context, userID *uint, regionID *uint, action string, details map[string]interface{}, ip string, status string) error {
	r.actions = append(r.actions, action)
	return nil
}
func (r *recordingAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}
func (r *recordingAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RazorpayKey:    "rzp_test_key",
		RazorpaySecret: "test_secret",
	}
}

func TestVerifyAndUpdateDonation_InvalidSignatureRejected(t *testing.T) {
	repo := newFakeRepo(Donation{ID: 1, OrderID: "order_abc", Status: StatusPending})
	audit := &recordingAudit{}
	svc := NewService(repo, testConfig(), audit)

	err := svc.VerifyAndUpdateDonation(context.Background(), VerifyPaymentRequest{
		OrderID:     "order_abc",
		PaymentID:   "pay_xyz",
		RazorpaySig: "deadbeef",
	})
	if err == nil {
		t.Fatal("tampered signature must be rejected")
	}

	if d, _ := repo.GetByOrderID(context.Background(), "order_abc"); d.Status != StatusPending {
		t.Errorf("donation must stay pending, got %s", d.Status)
	}
	if len(audit.actions) == 0 || audit.actions[0] != "DONATION_VERIFICATION_FAILED" {
		t.Errorf("expected DONATION_VERIFICATION_FAILED audit entry, got %v", audit.actions)
	}
}

func TestEnsureReceiptNumber_SuccessOnly(t *testing.T) {
	repo := newFakeRepo(
		Donation{ID: 1, OrderID: "order_ok", Status: StatusSuccess},
		Donation{ID: 2, OrderID: "order_pending", Status: StatusPending},
		Donation{ID: 3, OrderID: "order_failed", Status: StatusFailed},
	)
	svc := NewService(repo, testConfig(), &recordingAudit{})

	got, err := svc.EnsureReceiptNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnsureReceiptNumber: %v", err)
	}
	if got.ReceiptNumber == nil || !strings.HasPrefix(*got.ReceiptNumber, "WLF-") {
		t.Errorf("receipt number missing or malformed: %v", got.ReceiptNumber)
	}

	for _, id := range []uint{2, 3} {
		if _, err := svc.EnsureReceiptNumber(context.Background(), id); !apperrors.IsInvalidState(err) {
			t.Errorf("donation %d: unsettled donation must not get a receipt, got %v", id, err)
		}
	}
}

// A second call returns the already-issued receipt unchanged.
func TestEnsureReceiptNumber_Idempotent(t *testing.T) {
	repo := newFakeRepo(Donation{ID: 1, OrderID: "order_ok", Status: StatusSuccess})
	svc := NewService(repo, testConfig(), &recordingAudit{})

	first, err := svc.EnsureReceiptNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.EnsureReceiptNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if *first.ReceiptNumber != *second.ReceiptNumber {
		t.Errorf("receipt changed between calls: %s vs %s", *first.ReceiptNumber, *second.ReceiptNumber)
	}
}

func TestGetDonation_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), testConfig(), &recordingAudit{})

	_, err := svc.GetDonation(context.Background(), 99)
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	var nf *apperrors.NotFoundError
	if !errors.As(err, &nf) {
		t.Error("error must unwrap to NotFoundError")
	}
}
