package controllers

import (
	"net/http"

	"github.com/ibrahem-systems/daftar-backend/api/middleware"
	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/api/validators"
	"github.com/ibrahem-systems/daftar-backend/internal/settings"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type upsertSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// SettingsList returns every system setting. Super admin only.
func SettingsList(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.GetAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SettingsUpsert writes one setting and records who changed it.
func SettingsUpsert(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if identity == nil || identity.User == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
			return
		}
		var body upsertSettingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Upsert(r.Context(), identity.User.ID, identity.User.Email, body.Key, body.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

// SupportContact exposes the support contact details without auth so the
// login screen can render them.
func SupportContact(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.SupportContact(r.Context()))
	}
}
