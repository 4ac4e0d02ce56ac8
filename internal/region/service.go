package region

import (
	"context"
	"strings"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type Service interface {
	CreateRegion(ctx context.Context, req CreateRegionRequest, createdBy uint, ip string) (*Region, error)
	GetRegion(ctx context.Context, id uint) (*Region, error)
	UpdateRegion(ctx context.Context, id uint, req UpdateRegionRequest, updatedBy uint, ip string) (*Region, error)
	DeactivateRegion(ctx context.Context, id uint, updatedBy uint, ip string) error
	ListRegions(ctx context.Context, filter RegionFilter) ([]Region, int64, error)
	GetHierarchy(ctx context.Context, rootID uint) (*RegionNode, error)

	// Descendants expands a region into the ids of all its transitive
	// children. Used by the scope resolver when descendant inclusion is
	// switched on.
	Descendants(ctx context.Context, rootID uint) ([]uint, error)
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) CreateRegion(ctx context.Context, req CreateRegionRequest, createdBy uint, ip string) (*Region, error) {
	regionType := strings.ToLower(req.Type)

	switch regionType {
	case TypeState:
		if req.ParentID != nil {
			return nil, apperrors.NewValidation("parent_id", "a state cannot have a parent region")
		}
	case TypeDistrict, TypeArea, TypeUnit:
		if req.ParentID == nil {
			return nil, apperrors.NewValidation("parent_id", "parent region is required for "+regionType)
		}
		parent, err := s.repo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, apperrors.NewNotFound("parent region", *req.ParentID)
		}
		if parent.Type != ParentTypeOf[regionType] {
			return nil, apperrors.NewValidation("parent_id",
				"parent of a "+regionType+" must be a "+ParentTypeOf[regionType])
		}
		if !parent.IsActive {
			return nil, apperrors.NewValidation("parent_id", "parent region is inactive")
		}
	default:
		return nil, apperrors.NewValidation("type", "unknown region type: "+req.Type)
	}

	exists, err := s.repo.ExistsByCodeAndParent(ctx, req.Code, req.ParentID, 0)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}
	if exists {
		return nil, apperrors.NewValidation("code", "code already used within this parent")
	}

	region := &Region{
		Name:     req.Name,
		Code:     req.Code,
		Type:     regionType,
		ParentID: req.ParentID,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, region); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &createdBy, &region.ID, "REGION_CREATED", map[string]interface{}{
		"name": region.Name,
		"code": region.Code,
		"type": region.Type,
	}, ip, "success")

	return region, nil
}

func (s *service) GetRegion(ctx context.Context, id uint) (*Region, error) {
	region, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("region", id)
	}
	return region, nil
}

func (s *service) UpdateRegion(ctx context.Context, id uint, req UpdateRegionRequest, updatedBy uint, ip string) (*Region, error) {
	region, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("region", id)
	}

	if req.Name != nil {
		region.Name = *req.Name
	}
	if req.Code != nil && *req.Code != region.Code {
		exists, err := s.repo.ExistsByCodeAndParent(ctx, *req.Code, region.ParentID, region.ID)
		if err != nil {
			return nil, apperrors.WrapStore(err)
		}
		if exists {
			return nil, apperrors.NewValidation("code", "code already used within this parent")
		}
		region.Code = *req.Code
	}
	if req.IsActive != nil {
		region.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, region); err != nil {
		return nil, apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &updatedBy, &region.ID, "REGION_UPDATED", map[string]interface{}{
		"name": region.Name,
		"code": region.Code,
	}, ip, "success")

	return region, nil
}

// DeactivateRegion soft-deletes: applications keep their references
func (s *service) DeactivateRegion(ctx context.Context, id uint, updatedBy uint, ip string) error {
	region, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperrors.NewNotFound("region", id)
	}

	region.IsActive = false
	if err := s.repo.Update(ctx, region); err != nil {
		return apperrors.WrapStore(err)
	}

	s.auditSvc.LogAction(ctx, &updatedBy, &region.ID, "REGION_DEACTIVATED", map[string]interface{}{
		"name": region.Name,
	}, ip, "success")

	return nil
}

func (s *service) ListRegions(ctx context.Context, filter RegionFilter) ([]Region, int64, error) {
	regions, total, err := s.repo.ListWithFilters(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.WrapStore(err)
	}
	return regions, total, nil
}

// GetHierarchy returns the subtree rooted at rootID, built from a single
// active-region scan rather than per-level queries
func (s *service) GetHierarchy(ctx context.Context, rootID uint) (*RegionNode, error) {
	root, err := s.repo.GetByID(ctx, rootID)
	if err != nil {
		return nil, apperrors.NewNotFound("region", rootID)
	}

	all, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}

	children := make(map[uint][]Region)
	for _, reg := range all {
		if reg.ParentID != nil {
			children[*reg.ParentID] = append(children[*reg.ParentID], reg)
		}
	}

	var build func(r Region) *RegionNode
	build = func(r Region) *RegionNode {
		node := &RegionNode{Region: r}
		for _, child := range children[r.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	return build(*root), nil
}

func (s *service) Descendants(ctx context.Context, rootID uint) ([]uint, error) {
	all, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return nil, apperrors.WrapStore(err)
	}

	children := make(map[uint][]uint)
	for _, reg := range all {
		if reg.ParentID != nil {
			children[*reg.ParentID] = append(children[*reg.ParentID], reg.ID)
		}
	}

	var ids []uint
	queue := []uint{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}

	return ids, nil
}
