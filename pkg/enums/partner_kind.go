package enums

import "fmt"

// PartnerKind classifies a business partner.
type PartnerKind string

const (
	PartnerKindCustomer PartnerKind = "customer"
	PartnerKindSupplier PartnerKind = "supplier"
	PartnerKindBoth     PartnerKind = "both"
)

var validPartnerKinds = []PartnerKind{
	PartnerKindCustomer,
	PartnerKindSupplier,
	PartnerKindBoth,
}

func (k PartnerKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PartnerKind.
func (k PartnerKind) IsValid() bool {
	for _, candidate := range validPartnerKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePartnerKind converts raw input into a PartnerKind.
func ParsePartnerKind(value string) (PartnerKind, error) {
	for _, candidate := range validPartnerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner kind %q", value)
}
