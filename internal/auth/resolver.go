package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/internal/permissions"
	"github.com/ibrahem-systems/daftar-backend/internal/subscriptions"
	pkgAuth "github.com/ibrahem-systems/daftar-backend/pkg/auth"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

// IdentityKind tags the resolved identity variant.
type IdentityKind string

const (
	// IdentitySuperAdmin operates across tenants with every grant.
	IdentitySuperAdmin IdentityKind = "super_admin"
	// IdentityTenantUser is scoped to exactly one tenant.
	IdentityTenantUser IdentityKind = "tenant_user"
	// IdentityOrphan is an authenticated user with no resolvable tenant, such
	// as an owner left behind by a partial provisioning run.
	IdentityOrphan IdentityKind = "orphan"
)

// Identity is the per-request view of who is calling and what they may do.
// Tenant and Subscription are populated only for IdentityTenantUser.
type Identity struct {
	Kind         IdentityKind
	User         *models.User
	Tenant       *models.Tenant
	Subscription subscriptions.Snapshot
	Grants       permissions.Grants
}

// TenantID returns the scope for tenant-bound queries, nil for everyone else.
func (i *Identity) TenantID() *uuid.UUID {
	if i == nil || i.Kind != IdentityTenantUser || i.Tenant == nil {
		return nil
	}
	id := i.Tenant.ID
	return &id
}

type resolverUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type resolverTenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// Resolver turns verified token claims into a full identity by re-reading the
// user, tenant, and subscription state on every request. Capability changes
// and plan lapses take effect immediately instead of waiting out the token.
type Resolver struct {
	users    resolverUserRepository
	tenants  resolverTenantRepository
	adminCfg config.AdminConfig
	warnDays int
	now      func() time.Time
}

// ResolverParams bundles the dependencies required to build a Resolver.
type ResolverParams struct {
	UserRepo    resolverUserRepository
	TenantRepo  resolverTenantRepository
	AdminConfig config.AdminConfig
	WarnDays    int
}

// NewResolver constructs an identity resolver.
func NewResolver(params ResolverParams) (*Resolver, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.TenantRepo == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	return &Resolver{
		users:    params.UserRepo,
		tenants:  params.TenantRepo,
		adminCfg: params.AdminConfig,
		warnDays: params.WarnDays,
		now:      time.Now,
	}, nil
}

// Resolve maps token claims to an identity. A token whose user row is gone
// (deleted tenant cascades take the users with it) resolves to an orphan, as
// does a user with no tenant link. Disabled accounts are rejected outright.
func (r *Resolver) Resolve(ctx context.Context, claims *pkgAuth.AccessTokenClaims) (*Identity, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	user, err := r.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Identity{Kind: IdentityOrphan}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}

	if r.isSuperAdmin(user) {
		return &Identity{
			Kind: IdentitySuperAdmin,
			User: user,
			Grants: permissions.Evaluate(permissions.Subject{
				Role:     enums.UserRoleSuperAdmin,
				IsActive: true,
			}),
		}, nil
	}

	if user.TenantID == nil {
		return &Identity{Kind: IdentityOrphan, User: user}, nil
	}

	tenant, err := r.tenants.FindByID(ctx, *user.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Identity{Kind: IdentityOrphan, User: user}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant")
	}

	snapshot := subscriptions.Evaluate(tenant.Plan, tenant.ExpiresAt, r.now().UTC(), r.warnDays)
	grants := permissions.Evaluate(permissions.Subject{
		Role:                user.Role,
		IsActive:            user.IsActive,
		CanManageUsers:      user.CanManageUsers,
		CanManageInvoices:   user.CanManageInvoices,
		CanManageStock:      user.CanManageStock,
		SubscriptionExpired: snapshot.Expired(),
	})

	return &Identity{
		Kind:         IdentityTenantUser,
		User:         user,
		Tenant:       tenant,
		Subscription: snapshot,
		Grants:       grants,
	}, nil
}

// isSuperAdmin treats both the stored role and the configured allow-list as
// authoritative, so the bootstrap address works before any row says so.
func (r *Resolver) isSuperAdmin(user *models.User) bool {
	return user.Role == enums.UserRoleSuperAdmin || r.adminCfg.IsAdminEmail(user.Email)
}
