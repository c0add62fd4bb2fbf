// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// Entitlement is the tri-state flag gating which content an account may view.
// A freshly registered account starts at EntitlementUnset and must complete
// tier selection before it counts as entitled to anything.
type Entitlement string

const (
	// EntitlementUnset means the account has not chosen a plan yet.
	EntitlementUnset Entitlement = "unset"
	// EntitlementBasic grants access to the free course tier.
	EntitlementBasic Entitlement = "basic"
	// EntitlementPremium grants access to the full course library.
	EntitlementPremium Entitlement = "premium"
)

// String returns the string representation of the Entitlement.
func (e Entitlement) String() string {
	return string(e)
}

// IsValid checks if the Entitlement is a known value.
func (e Entitlement) IsValid() bool {
	switch e {
	case EntitlementUnset, EntitlementBasic, EntitlementPremium:
		return true
	default:
		return false
	}
}

// Selectable reports whether the value is a tier an account may choose.
// "unset" is a starting point, never a selection target.
func (e Entitlement) Selectable() bool {
	return e == EntitlementBasic || e == EntitlementPremium
}

// Entitled reports whether the account has completed tier selection.
func (e Entitlement) Entitled() bool {
	return e.Selectable()
}

// ParseEntitlement converts a string to an Entitlement, treating the empty
// string as unset. Unknown values are returned as-is and fail IsValid.
func ParseEntitlement(s string) Entitlement {
	if s == "" {
		return EntitlementUnset
	}

	return Entitlement(s)
}
