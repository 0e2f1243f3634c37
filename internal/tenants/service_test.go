package tenants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/internal/users"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

type stubTenantRepo struct {
	byID      map[uuid.UUID]*models.Tenant
	byName    map[string]*models.Tenant
	orphans   []models.User
	createErr error
	deleted   []uuid.UUID
}

func newStubTenantRepo() *stubTenantRepo {
	return &stubTenantRepo{
		byID:   map[uuid.UUID]*models.Tenant{},
		byName: map[string]*models.Tenant{},
	}
}

func (s *stubTenantRepo) add(t *models.Tenant) {
	s.byID[t.ID] = t
	s.byName[t.Name] = t
}

func (s *stubTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.add(tenant)
	return nil
}

func (s *stubTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if t, ok := s.byID[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTenantRepo) FindByName(ctx context.Context, name string) (*models.Tenant, error) {
	if t, ok := s.byName[name]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTenantRepo) Save(ctx context.Context, tenant *models.Tenant) error {
	s.add(tenant)
	return nil
}

func (s *stubTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	if t, ok := s.byID[id]; ok {
		delete(s.byName, t.Name)
		delete(s.byID, id)
	}
	return nil
}

func (s *stubTenantRepo) List(ctx context.Context) ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range s.byID {
		out = append(out, *t)
	}
	return out, nil
}

func (s *stubTenantRepo) ListOrphanOwners(ctx context.Context) ([]models.User, error) {
	return s.orphans, nil
}

type stubOwnerRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	created []*models.User
	saved   []*models.User
}

func newStubOwnerRepo() *stubOwnerRepo {
	return &stubOwnerRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubOwnerRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	s.created = append(s.created, user)
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubOwnerRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOwnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOwnerRepo) Save(ctx context.Context, user *models.User) error {
	s.saved = append(s.saved, user)
	s.byID[user.ID] = user
	return nil
}

type stubTrail struct {
	entries []audit.Entry
}

func (s *stubTrail) Record(ctx context.Context, e audit.Entry) {
	s.entries = append(s.entries, e)
}

func testPasswordCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo *stubTenantRepo, owners *stubOwnerRepo, trail *stubTrail, now time.Time) AdminService {
	t.Helper()
	svc, err := NewAdminService(repo, owners, trail, testPasswordCfg())
	if err != nil {
		t.Fatalf("new admin service: %v", err)
	}
	svc.(*adminService).now = func() time.Time { return now }
	return svc
}

func testActor() Actor {
	return Actor{ID: uuid.New(), Email: "admin@daftar.example"}
}

func TestCreateTenantProvisionsOwnerAndTenant(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	trail := &stubTrail{}
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, owners, trail, now)

	dto, err := svc.CreateTenant(context.Background(), testActor(), CreateTenantInput{
		Name:          "Acme Trading",
		OwnerEmail:    "Owner@Acme.example",
		OwnerName:     "Ibrahim",
		OwnerPassword: "s3cret-pass",
		Plan:          enums.SubscriptionPlanMonthly,
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	if len(owners.created) != 1 {
		t.Fatalf("expected 1 owner created, got %d", len(owners.created))
	}
	owner := owners.created[0]
	if owner.Role != enums.UserRoleStoreOwner {
		t.Fatalf("unexpected owner role %s", owner.Role)
	}
	if owner.Email != "owner@acme.example" {
		t.Fatalf("expected lowercased email, got %q", owner.Email)
	}
	if owner.TenantID == nil || *owner.TenantID != dto.ID {
		t.Fatal("owner not linked to tenant")
	}

	if dto.Plan != enums.SubscriptionPlanMonthly || dto.Status != enums.SubscriptionStatusActive {
		t.Fatalf("unexpected plan/status %s/%s", dto.Plan, dto.Status)
	}
	if want := now.Add(30 * 24 * time.Hour); !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, dto.ExpiresAt)
	}

	if len(trail.entries) != 1 || trail.entries[0].Action != "tenant.create" {
		t.Fatalf("expected tenant.create trail entry, got %+v", trail.entries)
	}
}

func TestCreateTenantDefaultsToTrial(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	now := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, owners, &stubTrail{}, now)

	dto, err := svc.CreateTenant(context.Background(), testActor(), CreateTenantInput{
		Name:          "Trial Co",
		OwnerEmail:    "trial@x.example",
		OwnerPassword: "pw-123456",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if dto.Plan != enums.SubscriptionPlanTrial || dto.Status != enums.SubscriptionStatusTrial {
		t.Fatalf("expected trial plan/status, got %s/%s", dto.Plan, dto.Status)
	}
	if want := now.Add(14 * 24 * time.Hour); !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected 14-day trial expiry, got %s", dto.ExpiresAt)
	}
}

func TestCreateTenantLeavesOrphanOwnerOnTenantFailure(t *testing.T) {
	repo := newStubTenantRepo()
	repo.createErr = errors.New("tenant insert failed")
	owners := newStubOwnerRepo()
	svc := newTestService(t, repo, owners, &stubTrail{}, time.Now().UTC())

	_, err := svc.CreateTenant(context.Background(), testActor(), CreateTenantInput{
		Name:          "Doomed Co",
		OwnerEmail:    "doomed@x.example",
		OwnerPassword: "pw-123456",
	})
	if err == nil {
		t.Fatal("expected error from tenant insert")
	}
	// owner row stays behind, unlinked: that's the contract
	if len(owners.created) != 1 {
		t.Fatalf("expected orphan owner row, got %d", len(owners.created))
	}
	if owners.created[0].TenantID != nil {
		t.Fatal("orphan owner should have no tenant link")
	}
}

func TestCreateTenantRejectsDuplicates(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	now := time.Now().UTC()
	svc := newTestService(t, repo, owners, &stubTrail{}, now)

	if _, err := svc.CreateTenant(context.Background(), testActor(), CreateTenantInput{
		Name:          "Acme",
		OwnerEmail:    "one@x.example",
		OwnerPassword: "pw-123456",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateTenant(context.Background(), testActor(), CreateTenantInput{
		Name:          "Acme",
		OwnerEmail:    "two@x.example",
		OwnerPassword: "pw-123456",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}

	_, err = svc.CreateTenant(context.Background(), testActor(), CreateTenantInput{
		Name:          "Other",
		OwnerEmail:    "one@x.example",
		OwnerPassword: "pw-123456",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate owner email, got %v", err)
	}
}

func TestExtendSubscriptionBanksRemainingTime(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         "Acme",
		OwnerID:      uuid.New(),
		Plan:         enums.SubscriptionPlanMonthly,
		Status:       enums.SubscriptionStatusActive,
		SubscribedAt: now.Add(-20 * 24 * time.Hour),
		ExpiresAt:    now.Add(10 * 24 * time.Hour),
	}
	repo.add(tenant)
	svc := newTestService(t, repo, owners, &stubTrail{}, now)

	dto, err := svc.ExtendSubscription(context.Background(), testActor(), tenant.ID, enums.SubscriptionPlanMonthly)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	// 10 remaining days + 30 new ones
	if want := now.Add(40 * 24 * time.Hour); !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, dto.ExpiresAt)
	}
	if dto.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", dto.Status)
	}
}

func TestExtendSubscriptionUsesStoredExpiryWhenLapsed(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	now := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      "Lapsed",
		OwnerID:   uuid.New(),
		Plan:      enums.SubscriptionPlanMonthly,
		Status:    enums.SubscriptionStatusExpired,
		ExpiresAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	repo.add(tenant)
	svc := newTestService(t, repo, owners, &stubTrail{}, now)

	dto, err := svc.ExtendSubscription(context.Background(), testActor(), tenant.ID, enums.SubscriptionPlanMonthly)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	// the new window stacks onto the stored expiry, lapsed or not
	if want := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC); !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, dto.ExpiresAt)
	}
}

func TestExtendSubscriptionStartsFromNowWithoutExpiry(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	tenant := &models.Tenant{
		ID:      uuid.New(),
		Name:    "Fresh",
		OwnerID: uuid.New(),
		Plan:    enums.SubscriptionPlanMonthly,
		Status:  enums.SubscriptionStatusExpired,
	}
	repo.add(tenant)
	svc := newTestService(t, repo, owners, &stubTrail{}, now)

	dto, err := svc.ExtendSubscription(context.Background(), testActor(), tenant.ID, enums.SubscriptionPlanYearly)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if want := now.Add(365 * 24 * time.Hour); !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, dto.ExpiresAt)
	}
	if dto.Plan != enums.SubscriptionPlanYearly {
		t.Fatalf("expected plan switch, got %s", dto.Plan)
	}
}

func TestDeleteTenantRequiresExactName(t *testing.T) {
	repo := newStubTenantRepo()
	owners := newStubOwnerRepo()
	tenant := &models.Tenant{ID: uuid.New(), Name: "Acme Trading", OwnerID: uuid.New()}
	repo.add(tenant)
	trail := &stubTrail{}
	svc := newTestService(t, repo, owners, trail, time.Now().UTC())

	err := svc.DeleteTenant(context.Background(), testActor(), tenant.ID, "acme trading")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for wrong confirmation, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("tenant must not be deleted on failed confirmation")
	}

	if err := svc.DeleteTenant(context.Background(), testActor(), tenant.ID, "Acme Trading"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != tenant.ID {
		t.Fatal("expected tenant deleted")
	}
	if len(trail.entries) != 1 || trail.entries[0].Action != "tenant.delete" {
		t.Fatalf("expected tenant.delete trail entry, got %+v", trail.entries)
	}
}

func TestListOrphanOwners(t *testing.T) {
	repo := newStubTenantRepo()
	repo.orphans = []models.User{
		{ID: uuid.New(), Email: "ghost@x.example", Name: "Ghost", Role: enums.UserRoleStoreOwner},
	}
	svc := newTestService(t, repo, newStubOwnerRepo(), &stubTrail{}, time.Now().UTC())

	out, err := svc.ListOrphanOwners(context.Background())
	if err != nil {
		t.Fatalf("list orphan owners: %v", err)
	}
	if len(out) != 1 || out[0].Email != "ghost@x.example" {
		t.Fatalf("unexpected orphans %+v", out)
	}
}
