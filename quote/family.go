/*
family.go - Product family resolution

PURPOSE:
  The system stores BTL and Bridging quotes in structurally parallel table
  pairs. Callers identify the family with a free-form calculatorType string;
  this file resolves that string ONCE at the boundary into an explicit
  ProductFamily tag that is threaded through the store, writer and
  reconciler. No other code re-derives the family from strings.

RESOLUTION RULE:
  A case-insensitive substring match on "bridging" or "bridge" selects the
  Bridging family; everything else (including empty) is BTL.
*/
package quote

import "strings"

// ProductFamily selects one of the two parallel table pairs.
type ProductFamily string

const (
	FamilyBTL      ProductFamily = "BTL"
	FamilyBridging ProductFamily = "BRIDGING"
)

// ResolveFamily maps a caller-supplied calculatorType to a family.
func ResolveFamily(calculatorType string) ProductFamily {
	ct := strings.ToLower(calculatorType)
	if strings.Contains(ct, "bridging") || strings.Contains(ct, "bridge") {
		return FamilyBridging
	}
	return FamilyBTL
}

// Sibling returns the other family, used for fallback probing when a
// caller's calculatorType hint turns out to be stale.
func (f ProductFamily) Sibling() ProductFamily {
	if f == FamilyBridging {
		return FamilyBTL
	}
	return FamilyBridging
}

// Tag is the canonical calculator_type value stored on the quote row.
func (f ProductFamily) Tag() string {
	return string(f)
}
