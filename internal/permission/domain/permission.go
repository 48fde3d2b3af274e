// Package domain defines the permission model for secrets: a four-facet
// bitmask held per (secret, subject) pair. Grants OR bits in, revocations AND
// them out, and a row whose mask empties is removed entirely.
package domain

import (
	"strings"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// Mask is a set of permission facets on a secret.
type Mask uint8

const (
	// None is the empty permission set. It is vacuously always authorized and
	// is used as a sentinel, not a real check.
	None Mask = 0
	// Read allows reading secret metadata and downloading content.
	Read Mask = 1 << 0
	// Write allows mutating secret metadata and content.
	Write Mask = 1 << 1
	// GrantAccess allows granting permissions and approving access requests.
	GrantAccess Mask = 1 << 2
	// RevokeAccess allows revoking permissions.
	RevokeAccess Mask = 1 << 3
	// Full is every facet combined, granted to a secret's creator.
	Full = Read | Write | GrantAccess | RevokeAccess
)

// facetNames maps individual facets to their wire names, in display order.
var facetNames = []struct {
	bit  Mask
	name string
}{
	{Read, "read"},
	{Write, "write"},
	{GrantAccess, "grant_access"},
	{RevokeAccess, "revoke_access"},
}

// Has reports whether every bit in the requested set is present in m.
// Bits are never unioned across rows: a single mask must satisfy them all.
func (m Mask) Has(bits Mask) bool {
	return m&bits == bits
}

// With returns m with the given bits OR-ed in.
func (m Mask) With(bits Mask) Mask {
	return m | bits
}

// Without returns m with the given bits cleared.
func (m Mask) Without(bits Mask) Mask {
	return m &^ bits
}

// IsEmpty reports whether no facet is set.
func (m Mask) IsEmpty() bool {
	return m == None
}

// Facets returns the wire names of the facets set in m.
func (m Mask) Facets() []string {
	facets := make([]string, 0, 4)
	for _, f := range facetNames {
		if m.Has(f.bit) {
			facets = append(facets, f.name)
		}
	}
	return facets
}

// String renders the mask as a comma-separated facet list, or "none".
func (m Mask) String() string {
	if m.IsEmpty() {
		return "none"
	}
	return strings.Join(m.Facets(), ",")
}

// ParseMask builds a Mask from wire facet names. Unknown names are rejected.
func ParseMask(facets []string) (Mask, bool) {
	var m Mask
	for _, facet := range facets {
		matched := false
		for _, f := range facetNames {
			if facet == f.name {
				m = m.With(f.bit)
				matched = true
				break
			}
		}
		if !matched {
			return None, false
		}
	}
	return m, true
}

// SubjectPermissions is the durable permission row for one subject on one secret.
type SubjectPermissions struct {
	SecretName  string
	SubjectType identityDomain.SubjectType
	SubjectID   string
	SubjectName string
	Mask        Mask
}

// CanGrant reports whether this row allows approving grants on the secret.
func (p *SubjectPermissions) CanGrant() bool {
	return p.Mask.Has(GrantAccess)
}
