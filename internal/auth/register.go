package auth

import (
	"context"
	"errors"
	"fmt"
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

// RegisterService handles self-service onboarding: a visitor creates their
// own business on the trial plan.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type registerUserRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type registerTenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByName(ctx context.Context, name string) (*models.Tenant, error)
}

type auditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// RegisterServiceParams packages the dependencies for the onboarding flow.
type RegisterServiceParams struct {
	UserRepo       registerUserRepository
	TenantRepo     registerTenantRepository
	Trail          auditRecorder
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	users       registerUserRepository
	tenants     registerTenantRepository
	trail       auditRecorder
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.TenantRepo == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	if params.Trail == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &registerService{
		users:       params.UserRepo,
		tenants:     params.TenantRepo,
		trail:       params.Trail,
		passwordCfg: params.PasswordConfig,
		now:         time.Now,
	}, nil
}

// Register provisions the owner account and the trial tenant with the same
// sequential steps the admin lifecycle uses: owner first, then tenant, then
// the owner's tenant backfill. No wrapping transaction; a failure after step
// one leaves an orphan owner that the admin orphan report surfaces.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if strings.TrimSpace(req.Password) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	if existing, err := s.tenants.FindByName(ctx, name); err == nil && existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "business name already taken")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking business name")
	}
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	// step 1: owner account
	owner, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.OwnerName),
		Role:         enums.UserRoleStoreOwner,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create owner")
	}

	// step 2: trial tenant
	now := s.now().UTC()
	plan := enums.SubscriptionPlanTrial
	expiresAt, err := subscriptions.Extend(now, plan)
	if err != nil {
		return err
	}
	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         name,
		OwnerID:      owner.ID,
		Plan:         plan,
		Status:       enums.SubscriptionStatusTrial,
		Currency:     enums.CurrencyTRY,
		SubscribedAt: now,
		ExpiresAt:    expiresAt,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		// owner row stays behind as an orphan
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tenant")
	}

	// step 3: backfill owner scope
	owner.TenantID = &tenant.ID
	if err := s.users.Save(ctx, owner); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link owner to tenant")
	}

	// step 4: trail
	s.trail.Record(ctx, audit.Entry{
		TenantID:   &tenant.ID,
		ActorID:    &owner.ID,
		ActorEmail: owner.Email,
		Action:     "auth.register",
		EntityType: "tenant",
		EntityID:   &tenant.ID,
		Details:    map[string]any{"name": name, "plan": plan},
	})

	return nil
}
