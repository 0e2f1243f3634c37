package permissions

import "github.com/ibrahem-systems/daftar-backend/pkg/enums"

// Subject is the minimal view of a user needed to evaluate capabilities.
// SubscriptionExpired reflects the tenant's computed state at call time.
type Subject struct {
	Role                enums.UserRole
	IsActive            bool
	CanManageUsers      bool
	CanManageInvoices   bool
	CanManageStock      bool
	SubscriptionExpired bool
}

// Grants is the capability set produced for a subject. Controllers gate
// mutations on these flags; they never consult roles directly.
type Grants struct {
	ManageUsers    bool
	ManageInvoices bool
	ManageStock    bool
	ViewBooks      bool
	Admin          bool
}

// Evaluate derives the capability set for a subject. Owners lose write access
// when the subscription lapses, but explicitly granted flags keep working:
// an accountant granted invoice access finishes the books even on an expired
// plan. Reads stay open so data is never held hostage.
func Evaluate(s Subject) Grants {
	if !s.IsActive {
		return Grants{}
	}

	if s.Role == enums.UserRoleSuperAdmin {
		return Grants{
			ManageUsers:    true,
			ManageInvoices: true,
			ManageStock:    true,
			ViewBooks:      true,
			Admin:          true,
		}
	}

	ownerActive := s.Role == enums.UserRoleStoreOwner && !s.SubscriptionExpired

	return Grants{
		ManageUsers:    ownerActive || s.CanManageUsers,
		ManageInvoices: ownerActive || s.CanManageInvoices,
		ManageStock:    ownerActive || s.CanManageStock,
		ViewBooks:      true,
	}
}
