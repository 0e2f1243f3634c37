package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/api/middleware"
	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/api/validators"
	"github.com/ibrahem-systems/daftar-backend/internal/auth"
	"github.com/ibrahem-systems/daftar-backend/internal/notifications"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

func notificationTenant(r *http.Request) (uuid.UUID, error) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil || identity.Kind != auth.IdentityTenantUser {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account")
	}
	tenantID := identity.TenantID()
	if tenantID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account")
	}
	return *tenantID, nil
}

// NotificationsList returns the tenant's notifications, newest first.
// ?unread=true filters to unread entries.
func NotificationsList(svc *notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := notificationTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID, validators.ParseQueryBool(r, "unread"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// NotificationMarkRead stamps a notification as read. Re-reading an already
// read notification is a no-op.
func NotificationMarkRead(svc *notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := notificationTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "notificationId"), "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkRead(r.Context(), tenantID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}
