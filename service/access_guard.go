package service

import (
	"context"
	"fmt"
)

// AccessGuard centralizes the owner-or-admin policy every mutating admin
// entry point must pass. It has no state of its own: role membership lives
// in the external authorization oracle.
type AccessGuard struct {
	oracle AuthorizationOracle
}

// NewAccessGuard creates a new access guard backed by the given oracle
func NewAccessGuard(oracle AuthorizationOracle) *AccessGuard {
	return &AccessGuard{oracle: oracle}
}

// Authorize returns nil iff the principal is the configured owner or holds
// the administrative role. Oracle failures deny by default.
func (g *AccessGuard) Authorize(ctx context.Context, principal int64) error {
	owner, err := g.oracle.IsOwner(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to query owner role: %w", err)
	}
	if owner {
		return nil
	}

	admin, err := g.oracle.IsAdmin(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to query admin role: %w", err)
	}
	if admin {
		return nil
	}

	return ErrUnauthorized
}
