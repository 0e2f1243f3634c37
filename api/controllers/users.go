package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/api/middleware"
	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/api/validators"
	"github.com/ibrahem-systems/daftar-backend/internal/auth"
	"github.com/ibrahem-systems/daftar-backend/internal/users"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type createUserRequest struct {
	Email             string         `json:"email" validate:"required,email"`
	Name              string         `json:"name" validate:"required"`
	Password          string         `json:"password"`
	Role              enums.UserRole `json:"role" validate:"required"`
	CanManageUsers    bool           `json:"can_manage_users"`
	CanManageInvoices bool           `json:"can_manage_invoices"`
	CanManageStock    bool           `json:"can_manage_stock"`
}

type capabilitiesRequest struct {
	CanManageUsers    *bool `json:"can_manage_users"`
	CanManageInvoices *bool `json:"can_manage_invoices"`
	CanManageStock    *bool `json:"can_manage_stock"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type createUserResponse struct {
	User              *users.UserDTO `json:"user"`
	GeneratedPassword string         `json:"generated_password,omitempty"`
}

type resetPasswordResponse struct {
	GeneratedPassword string `json:"generated_password"`
}

// staffScope resolves the caller's tenant and enforces the user-management
// grant. List is the only endpoint that skips the grant check.
func staffScope(r *http.Request, needGrant bool) (uuid.UUID, uuid.UUID, error) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil || identity.Kind != auth.IdentityTenantUser || identity.User == nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account")
	}
	tenantID := identity.TenantID()
	if tenantID == nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account")
	}
	if needGrant && !identity.Grants.ManageUsers {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	return *tenantID, identity.User.ID, nil
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
}

// UsersList returns every member of the caller's tenant.
func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := staffScope(r, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UsersCreate provisions a staff account. When no password is supplied the
// generated one is returned exactly once.
func UsersCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, actorID, err := staffScope(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, generated, err := svc.Create(r.Context(), tenantID, actorID, users.CreateUserInput{
			Email:             body.Email,
			Name:              body.Name,
			Password:          body.Password,
			Role:              body.Role,
			CanManageUsers:    body.CanManageUsers,
			CanManageInvoices: body.CanManageInvoices,
			CanManageStock:    body.CanManageStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createUserResponse{
			User:              dto,
			GeneratedPassword: generated,
		})
	}
}

// UsersUpdateCapabilities toggles per-user grants.
func UsersUpdateCapabilities(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := staffScope(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body capabilitiesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpdateCapabilities(r.Context(), tenantID, userID, users.CapabilitiesInput{
			CanManageUsers:    body.CanManageUsers,
			CanManageInvoices: body.CanManageInvoices,
			CanManageStock:    body.CanManageStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UsersSetActive enables or disables a staff account.
func UsersSetActive(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := staffScope(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body setActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.SetActive(r.Context(), tenantID, userID, *body.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UsersResetPassword replaces a staff member's password with a generated one.
func UsersResetPassword(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := staffScope(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		generated, err := svc.ResetPassword(r.Context(), tenantID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resetPasswordResponse{GeneratedPassword: generated})
	}
}

// UsersDelete removes a staff account from the tenant.
func UsersDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := staffScope(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), tenantID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
