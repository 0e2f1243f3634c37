package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/security"
)

const tempPasswordLength = 12

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes tenant-scoped user management. Callers are expected to have
// passed the manage-users permission gate already; the service enforces tenant
// boundaries and role rules.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]UserDTO, error)
	Create(ctx context.Context, tenantID, actorID uuid.UUID, input CreateUserInput) (*UserDTO, string, error)
	UpdateCapabilities(ctx context.Context, tenantID, userID uuid.UUID, input CapabilitiesInput) (*UserDTO, error)
	SetActive(ctx context.Context, tenantID, userID uuid.UUID, active bool) (*UserDTO, error)
	ResetPassword(ctx context.Context, tenantID, userID uuid.UUID) (string, error)
	Delete(ctx context.Context, tenantID, userID uuid.UUID) error
}

// CreateUserInput captures the fields a manager supplies for a new staff user.
// An empty password means "generate one and hand it back".
type CreateUserInput struct {
	Email             string
	Name              string
	Password          string
	Role              enums.UserRole
	CanManageUsers    bool
	CanManageInvoices bool
	CanManageStock    bool
}

// CapabilitiesInput toggles per-user grants.
type CapabilitiesInput struct {
	CanManageUsers    *bool
	CanManageInvoices *bool
	CanManageStock    *bool
}

type service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a user management service.
func NewService(repo userRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, errors.New("user repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]UserDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, tenantID, actorID uuid.UUID, input CreateUserInput) (*UserDTO, string, error) {
	if tenantID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !isStaffRole(input.Role) {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "role cannot be assigned to staff")
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
	}

	password := input.Password
	tempPassword := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating password")
		}
		password = generated
		tempPassword = generated
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	created, err := s.repo.Create(ctx, CreateUserDTO{
		Email:             email,
		PasswordHash:      hash,
		Name:              strings.TrimSpace(input.Name),
		Role:              input.Role,
		TenantID:          &tenantID,
		CanManageUsers:    input.CanManageUsers,
		CanManageInvoices: input.CanManageInvoices,
		CanManageStock:    input.CanManageStock,
		CreatedBy:         &actorID,
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}
	return FromModel(created), tempPassword, nil
}

func (s *service) UpdateCapabilities(ctx context.Context, tenantID, userID uuid.UUID, input CapabilitiesInput) (*UserDTO, error) {
	user, err := s.loadStaff(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if input.CanManageUsers != nil {
		user.CanManageUsers = *input.CanManageUsers
	}
	if input.CanManageInvoices != nil {
		user.CanManageInvoices = *input.CanManageInvoices
	}
	if input.CanManageStock != nil {
		user.CanManageStock = *input.CanManageStock
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving user")
	}
	return FromModel(user), nil
}

func (s *service) SetActive(ctx context.Context, tenantID, userID uuid.UUID, active bool) (*UserDTO, error) {
	user, err := s.loadStaff(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving user")
	}
	return FromModel(user), nil
}

func (s *service) ResetPassword(ctx context.Context, tenantID, userID uuid.UUID) (string, error) {
	user, err := s.loadStaff(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}

	password, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating password")
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing password")
	}
	return password, nil
}

func (s *service) Delete(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.loadStaff(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting user")
	}
	return nil
}

// loadStaff fetches a user and verifies it is a manageable staff member of
// the tenant. A user outside the tenant reads as not found; the tenant owner
// and platform staff cannot be managed through this surface.
func (s *service) loadStaff(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user.TenantID == nil || *user.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if !isStaffRole(user.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot manage this user")
	}
	return user, nil
}

func isStaffRole(role enums.UserRole) bool {
	switch role {
	case enums.UserRoleAccountant, enums.UserRoleWarehouseManager, enums.UserRoleEmployee:
		return true
	default:
		return false
	}
}
