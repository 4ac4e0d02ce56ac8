package recurringpayment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
	"github.com/sharath018/welfare-management-backend/middleware"
)

func districtAdmin(districtID uint) auth.User {
	d := districtID
	return auth.User{
		ID:         42,
		Role:       auth.UserRole{RoleName: auth.RoleDistrictAdmin},
		AdminScope: &auth.AdminScope{DistrictID: &d},
	}
}

func beneficiaryUser(id uint) auth.User {
	return auth.User{ID: id, Role: auth.UserRole{RoleName: auth.RoleBeneficiary}}
}

// requestContext builds a gin test context the way AuthMiddleware leaves it:
// user in the context, request body and params set.
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

// Recording a disbursement is limited to payments inside the caller's scope.
func TestRecordPaymentHandler_ScopeEnforced(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	cases := []struct {
		name       string
		user       auth.User
		wantStatus int
	}{
		{"admin of another district", districtAdmin(1), http.StatusForbidden},
		{"admin of the payment's district", districtAdmin(2), http.StatusOK},
		{"another beneficiary", beneficiaryUser(11), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestService(approvedApp(1000))
			d2 := uint(2)
			p := seedPayment(repo, StatusDue)
			p.DistrictID = &d2

			h := NewHandler(svc, &fakeAppService{app: approvedApp(1000)})
			c, w := requestContext(http.MethodPatch, `{"payment_method":"cash"}`, tc.user,
				gin.Params{{Key: "id", Value: "1"}})

			h.RecordPayment(c)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			stored, _ := repo.GetByID(c.Request.Context(), 1)
			if tc.wantStatus == http.StatusForbidden && stored.Status != StatusDue {
				t.Errorf("denied request must not change the payment, status = %s", stored.Status)
			}
		})
	}
}

// Generating a schedule checks the caller's scope against the application.
func TestGenerateScheduleHandler_ScopeEnforced(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	d2 := uint(2)
	app := approvedApp(1000)
	app.DistrictID = &d2

	cases := []struct {
		name       string
		user       auth.User
		wantStatus int
	}{
		{"admin of another district", districtAdmin(1), http.StatusForbidden},
		{"admin of the application's district", districtAdmin(2), http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(app)
			h := NewHandler(svc, &fakeAppService{app: app})

			body := `{"application_id":1,"frequency":"monthly","total_payments":2}`
			c, w := requestContext(http.MethodPost, body, tc.user, nil)

			h.GenerateSchedule(c)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

// A beneficiary sees their own payments and nobody else's.
func TestGetPaymentHandler_OwnerOnly(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	svc, repo, _ := newTestService(approvedApp(1000))
	seedPayment(repo, StatusScheduled) // BeneficiaryID 10
	h := NewHandler(svc, &fakeAppService{app: approvedApp(1000)})

	c, w := requestContext(http.MethodGet, "", beneficiaryUser(10), gin.Params{{Key: "id", Value: "1"}})
	h.GetPayment(c)
	if w.Code != http.StatusOK {
		t.Fatalf("owner: status = %d, want 200", w.Code)
	}

	c, w = requestContext(http.MethodGet, "", beneficiaryUser(11), gin.Params{{Key: "id", Value: "1"}})
	h.GetPayment(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner: status = %d, want 403", w.Code)
	}
}
