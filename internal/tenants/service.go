package tenants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/internal/subscriptions"
	"github.com/ibrahem-systems/daftar-backend/internal/users"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/security"
)

type tenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindByName(ctx context.Context, name string) (*models.Tenant, error)
	Save(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Tenant, error)
	ListOrphanOwners(ctx context.Context) ([]models.User, error)
}

type ownerRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type auditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// AdminService drives the tenant lifecycle. Every operation here is
// super-admin only.
type AdminService interface {
	CreateTenant(ctx context.Context, actor Actor, input CreateTenantInput) (*TenantDTO, error)
	ListTenants(ctx context.Context) ([]TenantDTO, error)
	ExtendSubscription(ctx context.Context, actor Actor, tenantID uuid.UUID, plan enums.SubscriptionPlan) (*TenantDTO, error)
	DeleteTenant(ctx context.Context, actor Actor, tenantID uuid.UUID, confirmName string) error
	ListOrphanOwners(ctx context.Context) ([]OrphanOwnerDTO, error)
}

// Actor identifies the super admin performing a lifecycle operation, for the
// audit trail.
type Actor struct {
	ID    uuid.UUID
	Email string
}

// CreateTenantInput carries everything needed to provision a business and its
// owner in one call.
type CreateTenantInput struct {
	Name          string
	OwnerEmail    string
	OwnerName     string
	OwnerPassword string
	Plan          enums.SubscriptionPlan
	Currency      enums.Currency
}

type adminService struct {
	repo        tenantRepository
	owners      ownerRepository
	trail       auditRecorder
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewAdminService builds the tenant lifecycle service.
func NewAdminService(repo tenantRepository, owners ownerRepository, trail auditRecorder, passwordCfg config.PasswordConfig) (AdminService, error) {
	if repo == nil {
		return nil, errors.New("tenant repository required")
	}
	if owners == nil {
		return nil, errors.New("owner repository required")
	}
	if trail == nil {
		return nil, errors.New("audit recorder required")
	}
	return &adminService{
		repo:        repo,
		owners:      owners,
		trail:       trail,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// CreateTenant provisions owner and tenant in sequence without a wrapping
// transaction: the owner row lands first, then the tenant, then the owner's
// tenant backfill. A failure after step one leaves an orphan owner, which is
// intentional; ListOrphanOwners surfaces them for cleanup or retry.
func (s *adminService) CreateTenant(ctx context.Context, actor Actor, input CreateTenantInput) (*TenantDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.OwnerEmail))
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid owner email")
	}
	if strings.TrimSpace(input.OwnerPassword) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner password is required")
	}
	plan := input.Plan
	if plan == "" {
		plan = enums.SubscriptionPlanTrial
	}
	if _, err := subscriptions.PlanFor(plan); err != nil {
		return nil, err
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyTRY
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}

	if existing, err := s.repo.FindByName(ctx, name); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tenant name already taken")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking tenant name")
	}
	if existing, err := s.owners.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking owner email")
	}

	hash, err := security.HashPassword(input.OwnerPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing owner password")
	}

	// step 1: owner account
	owner, err := s.owners.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.OwnerName),
		Role:         enums.UserRoleStoreOwner,
		CreatedBy:    &actor.ID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating owner")
	}

	// step 2: tenant
	now := s.now().UTC()
	expiresAt, err := subscriptions.Extend(now, plan)
	if err != nil {
		return nil, err
	}
	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         name,
		OwnerID:      owner.ID,
		Plan:         plan,
		Status:       subscriptions.Evaluate(plan, expiresAt, now, 0).Status,
		Currency:     currency,
		SubscribedAt: now,
		ExpiresAt:    expiresAt,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		// owner row stays behind as an orphan
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating tenant")
	}

	// step 3: backfill owner scope
	owner.TenantID = &tenant.ID
	if err := s.owners.Save(ctx, owner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "linking owner to tenant")
	}

	// step 4: trail
	s.trail.Record(ctx, audit.Entry{
		ActorID:    &actor.ID,
		ActorEmail: actor.Email,
		Action:     "tenant.create",
		EntityType: "tenant",
		EntityID:   &tenant.ID,
		Details:    map[string]any{"name": name, "plan": plan, "owner_email": email},
	})

	return fromModel(tenant, owner, now), nil
}

func (s *adminService) ListTenants(ctx context.Context) ([]TenantDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing tenants")
	}

	now := s.now().UTC()
	out := make([]TenantDTO, 0, len(rows))
	for i := range rows {
		tenant := &rows[i]
		owner, err := s.owners.FindByID(ctx, tenant.OwnerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading owner")
		}
		out = append(out, *fromModel(tenant, owner, now))
	}
	return out, nil
}

// ExtendSubscription adds the plan's window onto the tenant's stored expiry,
// lapsed or not. Only a tenant with no expiry at all starts its window from
// now.
func (s *adminService) ExtendSubscription(ctx context.Context, actor Actor, tenantID uuid.UUID, plan enums.SubscriptionPlan) (*TenantDTO, error) {
	tenant, err := s.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	base := tenant.ExpiresAt
	if base.IsZero() {
		base = now
	}
	expiresAt, err := subscriptions.Extend(base, plan)
	if err != nil {
		return nil, err
	}

	tenant.Plan = plan
	tenant.ExpiresAt = expiresAt
	tenant.Status = subscriptions.Evaluate(plan, expiresAt, now, 0).Status
	if err := s.repo.Save(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving tenant")
	}

	s.trail.Record(ctx, audit.Entry{
		TenantID:   &tenant.ID,
		ActorID:    &actor.ID,
		ActorEmail: actor.Email,
		Action:     "tenant.extend_subscription",
		EntityType: "tenant",
		EntityID:   &tenant.ID,
		Details:    map[string]any{"plan": plan, "expires_at": expiresAt},
	})

	owner, err := s.owners.FindByID(ctx, tenant.OwnerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading owner")
	}
	return fromModel(tenant, owner, now), nil
}

// DeleteTenant removes the tenant and, via FK cascade, every row it owns.
// The caller must retype the exact tenant name; destruction this total gets
// no shortcuts.
func (s *adminService) DeleteTenant(ctx context.Context, actor Actor, tenantID uuid.UUID, confirmName string) error {
	tenant, err := s.loadTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if confirmName != tenant.Name {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation name does not match")
	}

	if err := s.repo.Delete(ctx, tenant.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting tenant")
	}

	s.trail.Record(ctx, audit.Entry{
		ActorID:    &actor.ID,
		ActorEmail: actor.Email,
		Action:     "tenant.delete",
		EntityType: "tenant",
		EntityID:   &tenant.ID,
		Details:    map[string]any{"name": tenant.Name},
	})
	return nil
}

func (s *adminService) ListOrphanOwners(ctx context.Context) ([]OrphanOwnerDTO, error) {
	rows, err := s.repo.ListOrphanOwners(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orphan owners")
	}
	out := make([]OrphanOwnerDTO, 0, len(rows))
	for _, u := range rows {
		out = append(out, OrphanOwnerDTO{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}

func (s *adminService) loadTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading tenant")
	}
	return tenant, nil
}
