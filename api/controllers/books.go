package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ibrahem-systems/daftar-backend/api/middleware"
	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/api/validators"
	"github.com/ibrahem-systems/daftar-backend/internal/auth"
	"github.com/ibrahem-systems/daftar-backend/internal/books"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type record[T any] interface {
	*T
	models.TenantScoped
}

// bookScope derives the record scope from the resolved identity. Tenant
// membership is enforced by middleware; this is the last line of defense.
func bookScope(r *http.Request) (books.Scope, error) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil || identity.Kind != auth.IdentityTenantUser {
		return books.Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account")
	}
	tenantID := identity.TenantID()
	if tenantID == nil || identity.User == nil {
		return books.Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account")
	}
	return books.Scope{
		TenantID: *tenantID,
		Actor:    books.Actor{ID: identity.User.ID, Email: identity.User.Email},
		Grants:   identity.Grants,
	}, nil
}

// BooksList returns the tenant's rows for one record type, newest first.
func BooksList[T any, P record[T]](res *books.Resource[T, P], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := bookScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res.List(r.Context(), scope))
	}
}

// BooksGet fetches one row by id within the tenant scope.
func BooksGet[T any, P record[T]](res *books.Resource[T, P], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := bookScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "recordId"), "recordId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := res.Get(r.Context(), scope, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// BooksCreate inserts a row. The body is the record shape itself; identity
// columns are stamped server-side from the scope.
func BooksCreate[T any, P record[T]](res *books.Resource[T, P], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := bookScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var row T
		if err := validators.DecodeJSONBody(r, &row); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := res.Create(r.Context(), scope, P(&row))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// BooksUpdate rewrites the row identified by the path id.
func BooksUpdate[T any, P record[T]](res *books.Resource[T, P], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := bookScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "recordId"), "recordId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var row T
		if err := validators.DecodeJSONBody(r, &row); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ptr := P(&row)
		ptr.SetID(id)
		updated, err := res.Update(r.Context(), scope, ptr)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// BooksDelete removes the row identified by the path id.
func BooksDelete[T any, P record[T]](res *books.Resource[T, P], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := bookScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "recordId"), "recordId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := res.Delete(r.Context(), scope, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
