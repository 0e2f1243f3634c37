package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	created []*models.User
	deleted []uuid.UUID
	hashes  map[uuid.UUID]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
		hashes:  map[uuid.UUID]string{},
	}
}

func (s *stubUserRepo) add(u *models.User) {
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
}

func (s *stubUserRepo) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	s.created = append(s.created, user)
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, u := range s.byID {
		if u.TenantID != nil && *u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.hashes[id] = hash
	return nil
}

func (s *stubUserRepo) Save(ctx context.Context, user *models.User) error {
	s.add(user)
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
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

func staffUser(tenantID uuid.UUID, role enums.UserRole) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    strings.ToLower(string(role)) + "@acme.example",
		Name:     "Staff",
		Role:     role,
		TenantID: &tenantID,
		IsActive: true,
	}
}

func TestServiceCreateGeneratesTempPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, err := NewService(repo, testPasswordCfg())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tenantID := uuid.New()
	actorID := uuid.New()
	dto, temp, err := svc.Create(context.Background(), tenantID, actorID, CreateUserInput{
		Email: "New.Staff@Acme.example",
		Name:  "New Staff",
		Role:  enums.UserRoleAccountant,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if temp == "" {
		t.Fatal("expected temp password when none supplied")
	}
	if dto.Email != "new.staff@acme.example" {
		t.Fatalf("expected lowercased email, got %q", dto.Email)
	}
	if dto.TenantID == nil || *dto.TenantID != tenantID {
		t.Fatal("tenant id not stamped")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(repo.created))
	}
	if repo.created[0].PasswordHash == temp {
		t.Fatal("password must be stored hashed")
	}
	if repo.created[0].CreatedBy == nil || *repo.created[0].CreatedBy != actorID {
		t.Fatal("created_by not stamped")
	}
}

func TestServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	tenantID := uuid.New()
	existing := staffUser(tenantID, enums.UserRoleEmployee)
	existing.Email = "taken@acme.example"
	repo.add(existing)

	svc, _ := NewService(repo, testPasswordCfg())
	_, _, err := svc.Create(context.Background(), tenantID, uuid.New(), CreateUserInput{
		Email: "taken@acme.example",
		Name:  "Dup",
		Role:  enums.UserRoleEmployee,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceCreateRejectsPrivilegedRoles(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := NewService(repo, testPasswordCfg())

	for _, role := range []enums.UserRole{enums.UserRoleSuperAdmin, enums.UserRoleStoreOwner} {
		_, _, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateUserInput{
			Email: "x@acme.example",
			Name:  "X",
			Role:  role,
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("role %s: expected validation error, got %v", role, err)
		}
	}
}

func TestServiceUpdateCapabilities(t *testing.T) {
	repo := newStubUserRepo()
	tenantID := uuid.New()
	user := staffUser(tenantID, enums.UserRoleAccountant)
	repo.add(user)

	svc, _ := NewService(repo, testPasswordCfg())
	yes := true
	dto, err := svc.UpdateCapabilities(context.Background(), tenantID, user.ID, CapabilitiesInput{
		CanManageInvoices: &yes,
	})
	if err != nil {
		t.Fatalf("update capabilities: %v", err)
	}
	if !dto.CanManageInvoices {
		t.Fatal("expected invoice grant set")
	}
	if dto.CanManageUsers || dto.CanManageStock {
		t.Fatal("untouched grants should stay off")
	}
}

func TestServiceRefusesCrossTenantTarget(t *testing.T) {
	repo := newStubUserRepo()
	user := staffUser(uuid.New(), enums.UserRoleEmployee)
	repo.add(user)

	svc, _ := NewService(repo, testPasswordCfg())
	otherTenant := uuid.New()

	if _, err := svc.SetActive(context.Background(), otherTenant, user.ID, false); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for cross-tenant target, got %v", err)
	}
	if err := svc.Delete(context.Background(), otherTenant, user.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for cross-tenant delete, got %v", err)
	}
}

func TestServiceRefusesManagingOwner(t *testing.T) {
	repo := newStubUserRepo()
	tenantID := uuid.New()
	owner := staffUser(tenantID, enums.UserRoleStoreOwner)
	repo.add(owner)

	svc, _ := NewService(repo, testPasswordCfg())
	if _, err := svc.SetActive(context.Background(), tenantID, owner.ID, false); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden when deactivating owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), tenantID, owner.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden when deleting owner, got %v", err)
	}
}

func TestServiceResetPasswordStoresNewHash(t *testing.T) {
	repo := newStubUserRepo()
	tenantID := uuid.New()
	user := staffUser(tenantID, enums.UserRoleEmployee)
	repo.add(user)

	svc, _ := NewService(repo, testPasswordCfg())
	password, err := svc.ResetPassword(context.Background(), tenantID, user.ID)
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if password == "" {
		t.Fatal("expected generated password")
	}
	hash, ok := repo.hashes[user.ID]
	if !ok {
		t.Fatal("expected stored hash")
	}
	if hash == password {
		t.Fatal("password must be stored hashed")
	}
}
