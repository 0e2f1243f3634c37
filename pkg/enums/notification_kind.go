package enums

import "fmt"

// NotificationKind labels a tenant-facing notification.
type NotificationKind string

const (
	NotificationKindSubscriptionExpired  NotificationKind = "subscription_expired"
	NotificationKindSubscriptionExpiring NotificationKind = "subscription_expiring"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindSubscriptionExpired,
	NotificationKindSubscriptionExpiring,
}

func (k NotificationKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known NotificationKind.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
