// Package authz decides whether a principal may act on a resource. The rule
// is binary: the owner of a resource, or any admin, is allowed.
package authz

import (
	"github.com/storefront/orders-api/internal/core/domain"
)

// Decision is the outcome of a policy check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Tier is the access level an operation requires.
type Tier int

const (
	// TierOwnerOrAdmin covers reads and mutations of a single resource.
	TierOwnerOrAdmin Tier = iota
	// TierAdmin covers collection-wide and elevated operations; there is no
	// single owner to compare against.
	TierAdmin
)

// Authorize applies the ownership rule. Callers must have resolved the target
// resource before calling; a missing resource is reported as not found and
// never reaches the policy.
func Authorize(p domain.Principal, ownerID string, tier Tier) Decision {
	if p.IsAdmin() {
		return Allow
	}
	if tier == TierAdmin {
		return Deny
	}
	if p.ID != "" && p.ID == ownerID {
		return Allow
	}
	return Deny
}

// Require is Authorize expressed as an error.
func Require(p domain.Principal, ownerID string, tier Tier) error {
	if Authorize(p, ownerID, tier) == Deny {
		return domain.ErrForbidden
	}
	return nil
}
