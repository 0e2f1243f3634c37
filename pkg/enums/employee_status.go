package enums

import "fmt"

// EmployeeStatus describes an employee's standing.
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusOnLeave    EmployeeStatus = "on_leave"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

var validEmployeeStatuses = []EmployeeStatus{
	EmployeeStatusActive,
	EmployeeStatusOnLeave,
	EmployeeStatusTerminated,
}

func (s EmployeeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EmployeeStatus.
func (s EmployeeStatus) IsValid() bool {
	for _, candidate := range validEmployeeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEmployeeStatus converts raw input into an EmployeeStatus.
func ParseEmployeeStatus(value string) (EmployeeStatus, error) {
	for _, candidate := range validEmployeeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee status %q", value)
}
