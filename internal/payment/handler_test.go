package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
	"github.com/sharath018/welfare-management-backend/middleware"
)

// fakeService serves one payment and records which mutations got through.
type fakeService struct {
	payment   *Payment
	completed bool
}

func (f *fakeService) CreatePayment(ctx context.Context, req CreatePaymentRequest, userID uint, ip string) (*Payment, error) {
	return f.payment, nil
}

func (f *fakeService) CompletePayment(ctx context.Context, id uint, req CompletePaymentRequest, userID uint, ip string) (*Payment, error) {
	f.completed = true
	return f.payment, nil
}

func (f *fakeService) FailPayment(ctx context.Context, id uint, notes string, userID uint, ip string) (*Payment, error) {
	return f.payment, nil
}

func (f *fakeService) GetPayment(ctx context.Context, id uint) (*Payment, error) {
	if f.payment == nil || f.payment.ID != id {
		return nil, apperrors.NewNotFound("payment", id)
	}
	return f.payment, nil
}

func (f *fakeService) ListPayments(ctx context.Context, filter PaymentFilter, scopeRegionIDs []uint) ([]Payment, int64, error) {
	return nil, 0, nil
}

func (f *fakeService) ListByApplication(ctx context.Context, applicationID uint) ([]Payment, error) {
	return nil, nil
}

type fakeApps struct {
	app *application.Application
}

func (f *fakeApps) GetApplication(ctx context.Context, id uint) (*application.Application, error) {
	if f.app == nil || f.app.ID != id {
		return nil, apperrors.NewNotFound("application", id)
	}
	return f.app, nil
}

func districtAdmin(districtID uint) auth.User {
	d := districtID
	return auth.User{
		ID:         42,
		Role:       auth.UserRole{RoleName: auth.RoleDistrictAdmin},
		AdminScope: &auth.AdminScope{DistrictID: &d},
	}
}

func requestContext(method, body string, user auth.User, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	c.Request = req
	c.Params = params
	c.Set("user", user)
	return c, w
}

func districtTwoPayment() *Payment {
	d := uint(2)
	return &Payment{
		ID:            1,
		ApplicationID: 1,
		BeneficiaryID: 10,
		SchemeID:      5,
		DistrictID:    &d,
		Amount:        500,
		Status:        StatusPending,
	}
}

// Completing a disbursement is limited to payments inside the caller's scope.
func TestCompletePaymentHandler_ScopeEnforced(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	cases := []struct {
		name       string
		user       auth.User
		wantStatus int
		wantCalled bool
	}{
		{"admin of another district", districtAdmin(1), http.StatusForbidden, false},
		{"admin of the payment's district", districtAdmin(2), http.StatusOK, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{payment: districtTwoPayment()}
			h := NewHandler(svc, &fakeApps{})

			c, w := requestContext(http.MethodPatch, `{"payment_method":"bank_transfer"}`, tc.user,
				gin.Params{{Key: "id", Value: "1"}})
			h.CompletePayment(c)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if svc.completed != tc.wantCalled {
				t.Errorf("service called = %v, want %v", svc.completed, tc.wantCalled)
			}
		})
	}
}

// Creating a payment checks the caller's scope against the application.
func TestCreatePaymentHandler_ScopeEnforced(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	d2 := uint(2)
	app := &application.Application{ID: 1, BeneficiaryID: 10, SchemeID: 5, DistrictID: &d2}
	svc := &fakeService{payment: districtTwoPayment()}
	h := NewHandler(svc, &fakeApps{app: app})

	body := `{"application_id":1,"amount":500}`
	c, w := requestContext(http.MethodPost, body, districtAdmin(1), nil)
	h.CreatePayment(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("out-of-scope creation: status = %d, want 403", w.Code)
	}

	c, w = requestContext(http.MethodPost, body, districtAdmin(2), nil)
	h.CreatePayment(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("in-scope creation: status = %d, want 201", w.Code)
	}
}
