package region

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type fakeRepo struct {
	regions map[uint]*Region
	nextID  uint
}

func newFakeRepo(seed ...Region) *fakeRepo {
	f := &fakeRepo{regions: make(map[uint]*Region), nextID: 1}
	for _, r := range seed {
		reg := r
		if reg.ID == 0 {
			reg.ID = f.nextID
		}
		f.regions[reg.ID] = &reg
		if reg.ID >= f.nextID {
			f.nextID = reg.ID + 1
		}
	}
	return f
}

func (f *fakeRepo) Create(ctx context.Context, region *Region) error {
	region.ID = f.nextID
	f.nextID++
	clone := *region
	f.regions[region.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*Region, error) {
	r, ok := f.regions[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *r
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, region *Region) error {
	clone := *region
	f.regions[region.ID] = &clone
	return nil
}

func (f *fakeRepo) ListByParent(ctx context.Context, parentID uint) ([]Region, error) {
	var out []Region
	for _, r := range f.regions {
		if r.ParentID != nil && *r.ParentID == parentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByType(ctx context.Context, regionType string) ([]Region, error) {
	var out []Region
	for _, r := range f.regions {
		if r.Type == regionType {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListWithFilters(ctx context.Context, filter RegionFilter) ([]Region, int64, error) {
	var out []Region
	for _, r := range f.regions {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListAllActive(ctx context.Context) ([]Region, error) {
	var out []Region
	for _, r := range f.regions {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExistsByCodeAndParent(ctx context.Context, code string, parentID *uint, excludeID uint) (bool, error) {
	for _, r := range f.regions {
		if r.ID == excludeID || r.Code != code {
			continue
		}
		switch {
		case r.ParentID == nil && parentID == nil:
			return true, nil
		case r.ParentID != nil && parentID != nil && *r.ParentID == *parentID:
			return true, nil
		}
	}
	return false, nil
}

type noopAudit struct{}

func (noopAudit) LogAction(ctx context.Context, userID *uint, regionID *uint, action string, details map[string]interface{}, ip string, status string) error {
	return nil
}
func (noopAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}
func (noopAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

func ptr(v uint) *uint { return &v }

// seedTree builds state(1) → district(2) → area(3) → unit(4).
func seedTree() *fakeRepo {
	return newFakeRepo(
		Region{ID: 1, Name: "Kerala", Code: "KL", Type: TypeState, IsActive: true},
		Region{ID: 2, Name: "Ernakulam", Code: "EKM", Type: TypeDistrict, ParentID: ptr(1), IsActive: true},
		Region{ID: 3, Name: "Kochi", Code: "KCH", Type: TypeArea, ParentID: ptr(2), IsActive: true},
		Region{ID: 4, Name: "Fort Kochi", Code: "FTK", Type: TypeUnit, ParentID: ptr(3), IsActive: true},
	)
}

func TestCreateRegion_ParentTypeEnforced(t *testing.T) {
	svc := NewService(seedTree(), noopAudit{})

	cases := []struct {
		name    string
		req     CreateRegionRequest
		wantErr bool
	}{
		{"state with parent", CreateRegionRequest{Name: "X", Code: "X", Type: TypeState, ParentID: ptr(1)}, true},
		{"district without parent", CreateRegionRequest{Name: "X", Code: "X", Type: TypeDistrict}, true},
		{"district under state", CreateRegionRequest{Name: "Thrissur", Code: "TSR", Type: TypeDistrict, ParentID: ptr(1)}, false},
		{"area under state", CreateRegionRequest{Name: "X", Code: "X", Type: TypeArea, ParentID: ptr(1)}, true},
		{"area under district", CreateRegionRequest{Name: "Aluva", Code: "ALV", Type: TypeArea, ParentID: ptr(2)}, false},
		{"unit under district", CreateRegionRequest{Name: "X", Code: "X", Type: TypeUnit, ParentID: ptr(2)}, true},
		{"unit under area", CreateRegionRequest{Name: "Mattancherry", Code: "MTC", Type: TypeUnit, ParentID: ptr(3)}, false},
		{"unknown type", CreateRegionRequest{Name: "X", Code: "X", Type: "village", ParentID: ptr(3)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRegion(context.Background(), tc.req, 1, "")
			if tc.wantErr && !apperrors.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateRegion_TypeIsCaseInsensitive(t *testing.T) {
	svc := NewService(seedTree(), noopAudit{})

	created, err := svc.CreateRegion(context.Background(), CreateRegionRequest{
		Name: "Kozhikode", Code: "KZD", Type: "District", ParentID: ptr(1),
	}, 1, "")
	if err != nil {
		t.Fatalf("CreateRegion: %v", err)
	}
	if created.Type != TypeDistrict {
		t.Errorf("type = %s, want normalized %s", created.Type, TypeDistrict)
	}
}

func TestCreateRegion_InactiveParentRejected(t *testing.T) {
	repo := seedTree()
	repo.regions[2].IsActive = false
	svc := NewService(repo, noopAudit{})

	_, err := svc.CreateRegion(context.Background(), CreateRegionRequest{
		Name: "X", Code: "X", Type: TypeArea, ParentID: ptr(2),
	}, 1, "")
	if !apperrors.IsValidation(err) {
		t.Errorf("inactive parent must be rejected, got %v", err)
	}
}

// Codes are unique per parent, not globally: the same code may repeat under
// a different parent.
func TestCreateRegion_CodeUniquePerParent(t *testing.T) {
	repo := seedTree()
	svc := NewService(repo, noopAudit{})

	if _, err := svc.CreateRegion(context.Background(), CreateRegionRequest{
		Name: "Duplicate", Code: "EKM", Type: TypeDistrict, ParentID: ptr(1),
	}, 1, ""); !apperrors.IsValidation(err) {
		t.Errorf("duplicate code under the same parent must fail, got %v", err)
	}

	// Same code under another state is fine.
	if _, err := svc.CreateRegion(context.Background(), CreateRegionRequest{
		Name: "Tamil Nadu", Code: "TN", Type: TypeState,
	}, 1, ""); err != nil {
		t.Fatalf("second state: %v", err)
	}
	if _, err := svc.CreateRegion(context.Background(), CreateRegionRequest{
		Name: "Other Ernakulam", Code: "EKM", Type: TypeDistrict, ParentID: ptr(5),
	}, 1, ""); err != nil {
		t.Errorf("same code under a different parent must be allowed, got %v", err)
	}
}

func TestDeactivateRegion_SoftDelete(t *testing.T) {
	repo := seedTree()
	svc := NewService(repo, noopAudit{})

	if err := svc.DeactivateRegion(context.Background(), 4, 1, ""); err != nil {
		t.Fatalf("DeactivateRegion: %v", err)
	}

	got, err := svc.GetRegion(context.Background(), 4)
	if err != nil {
		t.Fatalf("region must survive deactivation: %v", err)
	}
	if got.IsActive {
		t.Error("region must be inactive after deactivation")
	}
}

func TestGetHierarchy_BuildsSubtree(t *testing.T) {
	svc := NewService(seedTree(), noopAudit{})

	node, err := svc.GetHierarchy(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetHierarchy: %v", err)
	}

	if node.ID != 2 {
		t.Fatalf("root id = %d, want 2", node.ID)
	}
	if len(node.Children) != 1 || node.Children[0].ID != 3 {
		t.Fatalf("district must have area 3 as its only child")
	}
	if len(node.Children[0].Children) != 1 || node.Children[0].Children[0].ID != 4 {
		t.Fatal("area must have unit 4 as its only child")
	}
}

func TestDescendants_TransitiveAndExcludesRoot(t *testing.T) {
	svc := NewService(seedTree(), noopAudit{})

	ids, err := svc.Descendants(context.Background(), 1)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	want := []uint{2, 3, 4}
	if len(ids) != len(want) {
		t.Fatalf("descendants = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("descendants = %v, want %v", ids, want)
		}
	}
}

func TestDescendants_LeafHasNone(t *testing.T) {
	svc := NewService(seedTree(), noopAudit{})

	ids, err := svc.Descendants(context.Background(), 4)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("unit must have no descendants, got %v", ids)
	}
}
