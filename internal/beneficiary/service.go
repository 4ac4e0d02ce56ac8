package beneficiary

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
	"github.com/sharath018/welfare-management-backend/internal/region"
)

type Service interface {
	SaveProfile(ctx context.Context, profile *BeneficiaryProfile, userID uint, ip string) (*BeneficiaryProfile, error)
	GetProfile(ctx context.Context, userID uint) (*BeneficiaryProfile, error)
	ListBeneficiaries(ctx context.Context, filter BeneficiaryFilter, scopeRegionIDs []uint) ([]BeneficiaryProfile, int64, error)
}

type service struct {
	repo      Repository
	regionSvc region.Service
	auditSvc  auditlog.Service
}

func NewService(repo Repository, regionSvc region.Service, auditSvc auditlog.Service) Service {
	return &service{repo: repo, regionSvc: regionSvc, auditSvc: auditSvc}
}

// SaveProfile upserts the caller's profile. When a unit is set, the ancestor
// region ids are filled in by walking up the hierarchy so every record the
// beneficiary later creates carries a complete region chain.
func (s *service) SaveProfile(ctx context.Context, profile *BeneficiaryProfile, userID uint, ip string) (*BeneficiaryProfile, error) {
	profile.UserID = userID

	if profile.UnitID != nil {
		if err := s.fillAncestors(ctx, profile); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &userID, profile.DistrictID, "BENEFICIARY_PROFILE_SAVED", map[string]interface{}{
		"profile_id": profile.ID,
		"unit_id":    profile.UnitID,
	}, ip, "success")

	return profile, nil
}

// fillAncestors walks unit → area → district → state and copies the ids down
func (s *service) fillAncestors(ctx context.Context, profile *BeneficiaryProfile) error {
	unit, err := s.regionSvc.GetRegion(ctx, *profile.UnitID)
	if err != nil {
		return err
	}
	if unit.Type != region.TypeUnit {
		return apperrors.NewValidation("unit_id", "must reference a unit region")
	}

	current := unit
	for current.ParentID != nil {
		parent, err := s.regionSvc.GetRegion(ctx, *current.ParentID)
		if err != nil {
			return err
		}
		switch parent.Type {
		case region.TypeArea:
			id := parent.ID
			profile.AreaID = &id
		case region.TypeDistrict:
			id := parent.ID
			profile.DistrictID = &id
		case region.TypeState:
			id := parent.ID
			profile.StateID = &id
		}
		current = parent
	}
	return nil
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*BeneficiaryProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("beneficiary profile", userID)
		}
		return nil, apperrors.WrapStore(err)
	}
	return profile, nil
}

func (s *service) ListBeneficiaries(ctx context.Context, filter BeneficiaryFilter, scopeRegionIDs []uint) ([]BeneficiaryProfile, int64, error) {
	return s.repo.ListWithFilters(ctx, filter, scopeRegionIDs)
}
