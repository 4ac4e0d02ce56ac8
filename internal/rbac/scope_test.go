package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/sharath018/welfare-management-backend/internal/auth"
)

// fakeExpander returns a fixed descendant list per root id.
type fakeExpander struct {
	descendants map[uint][]uint
	err         error
}

func (f *fakeExpander) Descendants(ctx context.Context, rootID uint) ([]uint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.descendants[rootID], nil
}

func uintPtr(v uint) *uint { return &v }

func userWithRole(roleName string, scope *auth.AdminScope) auth.User {
	return auth.User{
		ID:         42,
		Role:       auth.UserRole{RoleName: roleName},
		AdminScope: scope,
	}
}

func TestResolveScope_GlobalRoles(t *testing.T) {
	r := NewResolver(nil, false)

	for _, role := range []string{auth.RoleSuperAdmin, auth.RoleStateAdmin} {
		scope := r.ResolveScope(context.Background(), userWithRole(role, nil))
		if !scope.IsGlobal {
			t.Errorf("%s: expected global scope", role)
		}
		if len(scope.RegionIDs) != 0 {
			t.Errorf("%s: global scope should carry no explicit region ids", role)
		}
	}
}

func TestResolveScope_NilAdminScopeFailsClosed(t *testing.T) {
	r := NewResolver(nil, false)

	scope := r.ResolveScope(context.Background(), userWithRole(auth.RoleDistrictAdmin, nil))
	if scope.IsGlobal {
		t.Fatal("district admin without scope must not be global")
	}
	if len(scope.RegionIDs) != 0 || len(scope.ProjectIDs) != 0 || len(scope.SchemeIDs) != 0 {
		t.Fatal("missing admin scope must resolve to empty sets")
	}
}

func TestResolveScope_RegionIDList(t *testing.T) {
	r := NewResolver(nil, false)

	user := userWithRole(auth.RoleUnitAdmin, &auth.AdminScope{
		RegionIDs: auth.UintList{7, 9},
	})
	scope := r.ResolveScope(context.Background(), user)

	if scope.IsGlobal {
		t.Fatal("unit admin must not be global")
	}
	if !scope.HasRegion(7) || !scope.HasRegion(9) {
		t.Errorf("expected regions 7 and 9, got %v", scope.RegionIDs)
	}
	if scope.HasRegion(8) {
		t.Error("region 8 was never granted")
	}
}

// The legacy single-field form only counts when it matches the role's level:
// a unit admin with only DistrictID set resolves to nothing.
func TestResolveScope_LegacySingleField(t *testing.T) {
	r := NewResolver(nil, false)

	cases := []struct {
		name     string
		role     string
		scope    *auth.AdminScope
		wantID   uint
		wantSize int
	}{
		{"district admin legacy", auth.RoleDistrictAdmin, &auth.AdminScope{DistrictID: uintPtr(3)}, 3, 1},
		{"area admin legacy", auth.RoleAreaAdmin, &auth.AdminScope{AreaID: uintPtr(5)}, 5, 1},
		{"unit admin legacy", auth.RoleUnitAdmin, &auth.AdminScope{UnitID: uintPtr(11)}, 11, 1},
		{"unit admin with wrong level field", auth.RoleUnitAdmin, &auth.AdminScope{DistrictID: uintPtr(3)}, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scope := r.ResolveScope(context.Background(), userWithRole(tc.role, tc.scope))
			if len(scope.RegionIDs) != tc.wantSize {
				t.Fatalf("expected %d region(s), got %v", tc.wantSize, scope.RegionIDs)
			}
			if tc.wantSize > 0 && !scope.HasRegion(tc.wantID) {
				t.Errorf("expected region %d in scope", tc.wantID)
			}
		})
	}
}

// RegionIDs wins over the legacy fields when both are populated.
func TestResolveScope_ListOverridesLegacy(t *testing.T) {
	r := NewResolver(nil, false)

	user := userWithRole(auth.RoleDistrictAdmin, &auth.AdminScope{
		RegionIDs:  auth.UintList{20},
		DistrictID: uintPtr(99),
	})
	scope := r.ResolveScope(context.Background(), user)

	if !scope.HasRegion(20) {
		t.Error("expected region 20 from the id list")
	}
	if scope.HasRegion(99) {
		t.Error("legacy district id must be ignored when the list is present")
	}
}

func TestResolveScope_DescendantExpansion(t *testing.T) {
	expander := &fakeExpander{descendants: map[uint][]uint{
		2: {21, 22, 23},
	}}

	user := userWithRole(auth.RoleDistrictAdmin, &auth.AdminScope{
		RegionIDs: auth.UintList{2},
	})

	// Off by default: only the granted region.
	off := NewResolver(expander, false)
	scope := off.ResolveScope(context.Background(), user)
	if len(scope.RegionIDs) != 1 || !scope.HasRegion(2) {
		t.Fatalf("without expansion expected {2}, got %v", scope.RegionIDs)
	}

	// On: the subtree is pulled in alongside the root.
	on := NewResolver(expander, true)
	scope = on.ResolveScope(context.Background(), user)
	for _, id := range []uint{2, 21, 22, 23} {
		if !scope.HasRegion(id) {
			t.Errorf("with expansion expected region %d, got %v", id, scope.RegionIDs)
		}
	}
}

// A failing expansion keeps the explicit grant and never widens access.
func TestResolveScope_DescendantExpansionFailure(t *testing.T) {
	expander := &fakeExpander{err: errors.New("db down")}
	r := NewResolver(expander, true)

	user := userWithRole(auth.RoleAreaAdmin, &auth.AdminScope{
		RegionIDs: auth.UintList{4},
	})
	scope := r.ResolveScope(context.Background(), user)

	if len(scope.RegionIDs) != 1 || !scope.HasRegion(4) {
		t.Fatalf("expected the explicit grant to survive expansion failure, got %v", scope.RegionIDs)
	}
}

func TestResolveScope_CoordinatorAssignments(t *testing.T) {
	r := NewResolver(nil, false)

	pc := userWithRole(auth.RoleProjectCoordinator, &auth.AdminScope{
		ProjectIDs: auth.UintList{100, 101},
		SchemeIDs:  auth.UintList{200},
	})
	scope := r.ResolveScope(context.Background(), pc)
	if !scope.HasProject(100) || !scope.HasProject(101) {
		t.Errorf("project coordinator missing project grants: %v", scope.ProjectIDs)
	}
	if scope.HasScheme(200) {
		t.Error("project coordinator must not receive scheme grants")
	}

	sc := userWithRole(auth.RoleSchemeCoordinator, &auth.AdminScope{
		SchemeIDs: auth.UintList{200},
	})
	scope = r.ResolveScope(context.Background(), sc)
	if !scope.HasScheme(200) {
		t.Errorf("scheme coordinator missing scheme grant: %v", scope.SchemeIDs)
	}
}

func TestCanAccess_PerRoleLevel(t *testing.T) {
	r := NewResolver(nil, false)

	record := RecordRef{
		DistrictID:  uintPtr(1),
		AreaID:      uintPtr(10),
		UnitID:      uintPtr(100),
		ProjectID:   uintPtr(7),
		SchemeID:    uintPtr(8),
		OwnerUserID: uintPtr(42),
	}

	cases := []struct {
		name  string
		user  auth.User
		want  bool
		check RecordRef
	}{
		{"super admin sees everything", userWithRole(auth.RoleSuperAdmin, nil), true, record},
		{"state admin sees everything", userWithRole(auth.RoleStateAdmin, nil), true, record},
		{"district admin in scope", userWithRole(auth.RoleDistrictAdmin, &auth.AdminScope{RegionIDs: auth.UintList{1}}), true, record},
		{"district admin out of scope", userWithRole(auth.RoleDistrictAdmin, &auth.AdminScope{RegionIDs: auth.UintList{2}}), false, record},
		{"area admin in scope", userWithRole(auth.RoleAreaAdmin, &auth.AdminScope{RegionIDs: auth.UintList{10}}), true, record},
		{"unit admin in scope", userWithRole(auth.RoleUnitAdmin, &auth.AdminScope{RegionIDs: auth.UintList{100}}), true, record},
		{"unit admin wrong unit", userWithRole(auth.RoleUnitAdmin, &auth.AdminScope{RegionIDs: auth.UintList{101}}), false, record},
		{"project coordinator in scope", userWithRole(auth.RoleProjectCoordinator, &auth.AdminScope{ProjectIDs: auth.UintList{7}}), true, record},
		{"scheme coordinator in scope", userWithRole(auth.RoleSchemeCoordinator, &auth.AdminScope{SchemeIDs: auth.UintList{8}}), true, record},
		{"beneficiary owns record", userWithRole(auth.RoleBeneficiary, nil), true, record},
		{"unknown role denied", userWithRole("mystery", nil), false, record},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.CanAccess(context.Background(), tc.user, tc.check); got != tc.want {
				t.Errorf("CanAccess = %v, want %v", got, tc.want)
			}
		})
	}
}

// A record missing the reference the role is scoped to is denied even when
// the user has grants.
func TestCanAccess_MissingRecordRefDenied(t *testing.T) {
	r := NewResolver(nil, false)

	user := userWithRole(auth.RoleUnitAdmin, &auth.AdminScope{RegionIDs: auth.UintList{100}})
	if r.CanAccess(context.Background(), user, RecordRef{DistrictID: uintPtr(1)}) {
		t.Error("record without unit id must be denied for a unit admin")
	}

	bene := userWithRole(auth.RoleBeneficiary, nil)
	if r.CanAccess(context.Background(), bene, RecordRef{}) {
		t.Error("ownerless record must be denied for a beneficiary")
	}

	other := userWithRole(auth.RoleBeneficiary, nil)
	if r.CanAccess(context.Background(), other, RecordRef{OwnerUserID: uintPtr(7)}) {
		t.Error("beneficiary must not access another user's record")
	}
}

func TestRoleHasPermission(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{auth.RoleSuperAdmin, PermAuditRead, true},
		{auth.RoleStateAdmin, PermRegionsManage, true},
		{auth.RoleDistrictAdmin, PermSchedulesManage, true},
		{auth.RoleDistrictAdmin, PermAuditRead, false},
		{auth.RoleAreaAdmin, PermRegionsManage, false},
		{auth.RoleUnitAdmin, PermApplicationsReview, false},
		{auth.RoleUnitAdmin, PermApplicationsWrite, true},
		{auth.RoleProjectCoordinator, PermApplicationsReview, true},
		{auth.RoleSchemeCoordinator, PermPaymentsWrite, false},
		{auth.RoleBeneficiary, PermApplicationsWrite, true},
		{auth.RoleBeneficiary, PermPaymentsRead, false},
		{"unknown_role", PermApplicationsRead, false},
	}

	for _, tc := range cases {
		if got := RoleHasPermission(tc.role, tc.permission); got != tc.want {
			t.Errorf("RoleHasPermission(%s, %s) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}

type fakeUserGetter struct {
	users map[uint]auth.User
}

func (f *fakeUserGetter) GetUserByID(userID uint) (auth.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return auth.User{}, errors.New("not found")
	}
	return u, nil
}

func TestPermissionChecker_UnknownUserFailsClosed(t *testing.T) {
	checker := NewPermissionChecker(&fakeUserGetter{users: map[uint]auth.User{
		1: {ID: 1, Role: auth.UserRole{RoleName: auth.RoleSuperAdmin}},
	}})

	if !checker.HasPermission(1, PermUsersManage) {
		t.Error("super admin should carry users.manage")
	}
	if checker.HasPermission(2, PermApplicationsRead) {
		t.Error("unknown user must be denied")
	}
}
