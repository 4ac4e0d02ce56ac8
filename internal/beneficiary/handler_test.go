package beneficiary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
	"github.com/sharath018/welfare-management-backend/middleware"
)

// fakeService serves one profile keyed by user id.
type fakeService struct {
	profile *BeneficiaryProfile
}

func (f *fakeService) SaveProfile(ctx context.Context, profile *BeneficiaryProfile, userID uint, ip string) (*BeneficiaryProfile, error) {
	return profile, nil
}

func (f *fakeService) GetProfile(ctx context.Context, userID uint) (*BeneficiaryProfile, error) {
	if f.profile == nil || f.profile.UserID != userID {
		return nil, apperrors.NewNotFound("beneficiary profile", userID)
	}
	return f.profile, nil
}

func (f *fakeService) ListBeneficiaries(ctx context.Context, filter BeneficiaryFilter, scopeRegionIDs []uint) ([]BeneficiaryProfile, int64, error) {
	return nil, 0, nil
}

func districtAdmin(districtID uint) auth.User {
	d := districtID
	return auth.User{
		ID:         42,
		Role:       auth.UserRole{RoleName: auth.RoleDistrictAdmin},
		AdminScope: &auth.AdminScope{DistrictID: &d},
	}
}

func requestContext(user auth.User, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = params
	c.Set("user", user)
	return c, w
}

// Admin profile reads are limited to beneficiaries inside the caller's scope.
func TestGetBeneficiaryHandler_ScopeEnforced(t *testing.T) {
	middleware.SetScopeResolver(rbac.NewResolver(nil, false))
	defer middleware.SetScopeResolver(nil)

	d2 := uint(2)
	svc := &fakeService{profile: &BeneficiaryProfile{ID: 1, UserID: 10, DistrictID: &d2}}
	h := NewHandler(svc)

	cases := []struct {
		name       string
		user       auth.User
		wantStatus int
	}{
		{"admin of another district", districtAdmin(1), http.StatusForbidden},
		{"admin of the beneficiary's district", districtAdmin(2), http.StatusOK},
		{"the beneficiary themselves", auth.User{ID: 10, Role: auth.UserRole{RoleName: auth.RoleBeneficiary}}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := requestContext(tc.user, gin.Params{{Key: "id", Value: "10"}})
			h.GetBeneficiary(c)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}
