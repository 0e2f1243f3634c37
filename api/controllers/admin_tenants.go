package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/api/middleware"
	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/api/validators"
	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/internal/tenants"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type createTenantRequest struct {
	Name          string                 `json:"name" validate:"required"`
	OwnerEmail    string                 `json:"owner_email" validate:"required,email"`
	OwnerName     string                 `json:"owner_name" validate:"required"`
	OwnerPassword string                 `json:"owner_password" validate:"required"`
	Plan          enums.SubscriptionPlan `json:"plan" validate:"required"`
	Currency      enums.Currency         `json:"currency"`
}

type extendSubscriptionRequest struct {
	Plan enums.SubscriptionPlan `json:"plan" validate:"required"`
}

type deleteTenantRequest struct {
	ConfirmName string `json:"confirm_name" validate:"required"`
}

func adminActor(r *http.Request) (tenants.Actor, error) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil || identity.User == nil {
		return tenants.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return tenants.Actor{ID: identity.User.ID, Email: identity.User.Email}, nil
}

func pathTenantID(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
}

// AdminTenantsList returns every business with its computed subscription state.
func AdminTenantsList(svc tenants.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListTenants(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminTenantCreate provisions a business and its owner in one call.
func AdminTenantCreate(svc tenants.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := adminActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createTenantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.CreateTenant(r.Context(), actor, tenants.CreateTenantInput{
			Name:          body.Name,
			OwnerEmail:    body.OwnerEmail,
			OwnerName:     body.OwnerName,
			OwnerPassword: body.OwnerPassword,
			Plan:          body.Plan,
			Currency:      body.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminTenantExtend pushes a tenant's expiry out by the chosen plan's window.
func AdminTenantExtend(svc tenants.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := adminActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tenantID, err := pathTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body extendSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.ExtendSubscription(r.Context(), actor, tenantID, body.Plan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminTenantDelete destroys a business and everything under it. The caller
// must retype the tenant name.
func AdminTenantDelete(svc tenants.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := adminActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tenantID, err := pathTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body deleteTenantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteTenant(r.Context(), actor, tenantID, body.ConfirmName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminOrphanOwnersList surfaces owner accounts left behind by failed
// provisioning runs so an operator can retry or clean up.
func AdminOrphanOwnersList(svc tenants.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListOrphanOwners(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminAuditLogs lists recent trail entries, optionally filtered to a tenant.
func AdminAuditLogs(writer *audit.Writer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var tenantID *uuid.UUID
		if raw := r.URL.Query().Get("tenant_id"); raw != "" {
			id, err := validators.ParsePathUUID(raw, "tenant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			tenantID = &id
		}

		logs, err := writer.List(r.Context(), tenantID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, logs)
	}
}
