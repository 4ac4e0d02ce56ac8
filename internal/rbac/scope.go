package rbac

import (
	"context"
	"log"

	"github.com/sharath018/welfare-management-backend/internal/auth"
)

// ScopeSet is a user's configured scope expanded into concrete id sets.
// IsGlobal means "no filter applied" — the explicit sets are empty and must
// be ignored by callers.
type ScopeSet struct {
	IsGlobal   bool
	RegionIDs  map[uint]struct{}
	ProjectIDs map[uint]struct{}
	SchemeIDs  map[uint]struct{}
}

func (s ScopeSet) HasRegion(id uint) bool {
	_, ok := s.RegionIDs[id]
	return ok
}

func (s ScopeSet) HasProject(id uint) bool {
	_, ok := s.ProjectIDs[id]
	return ok
}

func (s ScopeSet) HasScheme(id uint) bool {
	_, ok := s.SchemeIDs[id]
	return ok
}

// RecordRef carries the denormalized references of the record being checked.
// Applications, payments and interviews copy these ids at creation time so
// scope checks never need joins.
type RecordRef struct {
	StateID    *uint
	DistrictID *uint
	AreaID     *uint
	UnitID     *uint
	ProjectID  *uint
	SchemeID   *uint

	// OwnerUserID is the beneficiary who owns the record, when applicable
	OwnerUserID *uint
}

// RegionExpander expands a region into its transitive descendants. The
// region service satisfies this.
type RegionExpander interface {
	Descendants(ctx context.Context, rootID uint) ([]uint, error)
}

// Resolver answers scope questions for a user. Resolution never returns an
// error: a malformed or missing scope degrades to "no access" rather than
// granting anything, except for the two explicitly global roles.
type Resolver struct {
	// IncludeDescendants controls whether an explicit region grant pulls in
	// the region's whole subtree. Off by default: admins are granted each
	// level explicitly.
	IncludeDescendants bool

	regions RegionExpander
}

func NewResolver(regions RegionExpander, includeDescendants bool) *Resolver {
	return &Resolver{
		IncludeDescendants: includeDescendants,
		regions:            regions,
	}
}

// ResolveScope expands the user's configured scope into concrete id sets
func (r *Resolver) ResolveScope(ctx context.Context, user auth.User) ScopeSet {
	scope := ScopeSet{
		RegionIDs:  make(map[uint]struct{}),
		ProjectIDs: make(map[uint]struct{}),
		SchemeIDs:  make(map[uint]struct{}),
	}

	switch user.Role.RoleName {
	case auth.RoleSuperAdmin, auth.RoleStateAdmin:
		scope.IsGlobal = true
		return scope
	}

	admin := user.AdminScope
	if admin == nil {
		return scope // fail closed
	}

	if len(admin.RegionIDs) > 0 {
		for _, id := range admin.RegionIDs {
			scope.RegionIDs[id] = struct{}{}
		}
	} else {
		// Legacy single-field form, whichever matches the role's level
		switch user.Role.RoleName {
		case auth.RoleDistrictAdmin:
			if admin.DistrictID != nil {
				scope.RegionIDs[*admin.DistrictID] = struct{}{}
			}
		case auth.RoleAreaAdmin:
			if admin.AreaID != nil {
				scope.RegionIDs[*admin.AreaID] = struct{}{}
			}
		case auth.RoleUnitAdmin:
			if admin.UnitID != nil {
				scope.RegionIDs[*admin.UnitID] = struct{}{}
			}
		}
	}

	if r.IncludeDescendants && r.regions != nil && len(scope.RegionIDs) > 0 {
		for id := range scope.RegionIDs {
			descendants, err := r.regions.Descendants(ctx, id)
			if err != nil {
				// Expansion failure narrows access, never widens it
				log.Printf("⚠️ Region descendant expansion failed for %d: %v", id, err)
				continue
			}
			for _, child := range descendants {
				scope.RegionIDs[child] = struct{}{}
			}
		}
	}

	switch user.Role.RoleName {
	case auth.RoleProjectCoordinator:
		for _, id := range admin.ProjectIDs {
			scope.ProjectIDs[id] = struct{}{}
		}
	case auth.RoleSchemeCoordinator:
		for _, id := range admin.SchemeIDs {
			scope.SchemeIDs[id] = struct{}{}
		}
	}

	return scope
}

// CanAccess reports whether the user's scope covers the record. Records
// without the region reference the role is scoped to are denied (fail
// closed).
func (r *Resolver) CanAccess(ctx context.Context, user auth.User, record RecordRef) bool {
	scope := r.ResolveScope(ctx, user)
	if scope.IsGlobal {
		return true
	}

	switch user.Role.RoleName {
	case auth.RoleDistrictAdmin:
		return record.DistrictID != nil && scope.HasRegion(*record.DistrictID)

	case auth.RoleAreaAdmin:
		return record.AreaID != nil && scope.HasRegion(*record.AreaID)

	case auth.RoleUnitAdmin:
		return record.UnitID != nil && scope.HasRegion(*record.UnitID)

	case auth.RoleProjectCoordinator:
		return record.ProjectID != nil && scope.HasProject(*record.ProjectID)

	case auth.RoleSchemeCoordinator:
		return record.SchemeID != nil && scope.HasScheme(*record.SchemeID)

	case auth.RoleBeneficiary:
		return record.OwnerUserID != nil && *record.OwnerUserID == user.ID

	default:
		return false
	}
}
