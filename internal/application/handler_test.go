package application

import (
	"context"
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

// seedApplication files a district-2 application owned by beneficiary 10.
func seedApplication(repo *fakeRepo, status string) *Application {
	d := uint(2)
	app := &Application{
		BeneficiaryID:   10,
		SchemeID:        5,
		DistrictID:      &d,
		Purpose:         "school fees",
		RequestedAmount: 1000,
		Status:          status,
	}
	repo.Create(context.Background(), app)
	return app
}

// Cancellation is open to the owner and to admins whose scope covers the
// application; everyone else gets a 403 and the status stays put.
func TestCancelApplicationHandler_OwnerOrScope(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	cases := []struct {
		name       string
		user       auth.User
		wantStatus int
	}{
		{"owner", beneficiaryUser(10), http.StatusOK},
		{"another beneficiary", beneficiaryUser(11), http.StatusForbidden},
		{"admin of another district", districtAdmin(1), http.StatusForbidden},
		{"admin of the application's district", districtAdmin(2), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			seedApplication(repo, StatusPending)
			h := NewHandler(NewService(repo, &fakeAudit{}, nil))

			c, w := requestContext(http.MethodPatch, "", tc.user, gin.Params{{Key: "id", Value: "1"}})
			h.CancelApplication(c)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			stored, _ := repo.GetByID(context.Background(), 1)
			if tc.wantStatus == http.StatusForbidden && stored.Status != StatusPending {
				t.Errorf("denied request must not change the application, status = %s", stored.Status)
			}
		})
	}
}

func TestApproveApplicationHandler_OutsideScopeDenied(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	repo := newFakeRepo()
	seedApplication(repo, StatusUnderReview)
	h := NewHandler(NewService(repo, &fakeAudit{}, nil))

	body := `{"approved_amount":1000}`
	c, w := requestContext(http.MethodPatch, body, districtAdmin(1), gin.Params{{Key: "id", Value: "1"}})
	h.ApproveApplication(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	c, w = requestContext(http.MethodPatch, body, districtAdmin(2), gin.Params{{Key: "id", Value: "1"}})
	h.ApproveApplication(c)
	if w.Code != http.StatusOK {
		t.Fatalf("in-scope approval: status = %d, want 200", w.Code)
	}
}

// Region ids sent by the client are dropped: the chain comes from the
// beneficiary's profile alone.
func TestCreateApplicationHandler_ClientRegionIgnored(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(NewService(repo, &fakeAudit{}, placedProfile()))

	body := `{"scheme_id":5,"purpose":"school fees","requested_amount":1000,"district_id":99,"unit_id":99}`
	c, w := requestContext(http.MethodPost, body, beneficiaryUser(10), nil)
	h.CreateApplication(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	stored, _ := repo.GetByID(context.Background(), 1)
	if stored.DistrictID == nil || *stored.DistrictID != 2 {
		t.Errorf("district must come from the profile, got %v", stored.DistrictID)
	}
	if stored.UnitID == nil || *stored.UnitID != 4 {
		t.Errorf("unit must come from the profile, got %v", stored.UnitID)
	}
}
