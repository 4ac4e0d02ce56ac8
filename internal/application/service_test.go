package application

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
)

type fakeRepo struct {
	apps   map[uint]*Application
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: make(map[uint]*Application), nextID: 1}
}

func (f *fakeRepo) Create(ctx context.Context, app *Application) error {
	app.ID = f.nextID
	f.nextID++
	clone := *app
	f.apps[app.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *app
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, app *Application) error {
	clone := *app
	f.apps[app.ID] = &clone
	return nil
}

func (f *fakeRepo) ListWithFilters(ctx context.Context, filter ApplicationFilter, scopeRegionIDs, projectIDs, schemeIDs []uint) ([]Application, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListByBeneficiary(ctx context.Context, beneficiaryID uint) ([]Application, error) {
	var out []Application
	for _, app := range f.apps {
		if app.BeneficiaryID == beneficiaryID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	return 0, nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) LogAction(ctx context.Context, userID *uint, regionID *uint, action string, details map[string]interface{}, ip string, status string) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

func (f *fakeAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

// fakeProfiles serves one placement for every lookup.
type fakeProfiles struct {
	placement RegionPlacement
	err       error
}

func (f *fakeProfiles) RegionPlacement(ctx context.Context, userID uint) (RegionPlacement, error) {
	if f.err != nil {
		return RegionPlacement{}, f.err
	}
	return f.placement, nil
}

func placedProfile() *fakeProfiles {
	state, district, area, unit := uint(1), uint(2), uint(3), uint(4)
	return &fakeProfiles{placement: RegionPlacement{
		StateID:    &state,
		DistrictID: &district,
		AreaID:     &area,
		UnitID:     &unit,
	}}
}

func TestCreateApplication_RegionChainFromProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, placedProfile())

	app, err := svc.CreateApplication(context.Background(), CreateApplicationRequest{
		SchemeID:        5,
		Purpose:         "school fees",
		RequestedAmount: 1000,
	}, 10, "")
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	if app.StateID == nil || *app.StateID != 1 {
		t.Error("state_id must come from the profile")
	}
	if app.DistrictID == nil || *app.DistrictID != 2 {
		t.Error("district_id must come from the profile")
	}
	if app.AreaID == nil || *app.AreaID != 3 {
		t.Error("area_id must come from the profile")
	}
	if app.UnitID == nil || *app.UnitID != 4 {
		t.Error("unit_id must come from the profile")
	}
	if app.Status != StatusPending {
		t.Errorf("status = %s, want pending", app.Status)
	}
}

// An unplaced beneficiary can still file; the record simply carries no region
// chain until the profile exists.
func TestCreateApplication_MissingProfileTolerated(t *testing.T) {
	repo := newFakeRepo()
	profiles := &fakeProfiles{err: apperrors.NewNotFound("beneficiary profile", 10)}
	svc := NewService(repo, &fakeAudit{}, profiles)

	app, err := svc.CreateApplication(context.Background(), CreateApplicationRequest{
		SchemeID:        5,
		Purpose:         "medical aid",
		RequestedAmount: 500,
	}, 10, "")
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if app.StateID != nil || app.DistrictID != nil || app.AreaID != nil || app.UnitID != nil {
		t.Error("unplaced beneficiary must yield an empty region chain")
	}
}

func TestCreateApplication_ProfileLookupFailure(t *testing.T) {
	repo := newFakeRepo()
	profiles := &fakeProfiles{err: errors.New("db down")}
	svc := NewService(repo, &fakeAudit{}, profiles)

	if _, err := svc.CreateApplication(context.Background(), CreateApplicationRequest{
		SchemeID:        5,
		Purpose:         "rent",
		RequestedAmount: 500,
	}, 10, ""); err == nil {
		t.Fatal("profile lookup failure must fail the creation")
	}
}

func TestCreateApplication_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, placedProfile())

	_, err := svc.CreateApplication(context.Background(), CreateApplicationRequest{
		SchemeID:        5,
		Purpose:         "misc",
		RequestedAmount: -100,
	}, 10, "")
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
