package enums

import "fmt"

// UserRole represents a user's role within the platform.
type UserRole string

const (
	UserRoleSuperAdmin       UserRole = "super_admin"
	UserRoleStoreOwner       UserRole = "store_owner"
	UserRoleAccountant       UserRole = "accountant"
	UserRoleWarehouseManager UserRole = "warehouse_manager"
	UserRoleEmployee         UserRole = "employee"
)

var validUserRoles = []UserRole{
	UserRoleSuperAdmin,
	UserRoleStoreOwner,
	UserRoleAccountant,
	UserRoleWarehouseManager,
	UserRoleEmployee,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
