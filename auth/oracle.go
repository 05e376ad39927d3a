package auth

import (
	"context"

	"fightpool/config"
)

// StaticOracle answers owner and admin checks from configuration. The
// principal set is fixed at startup; changing it means restarting the pool.
type StaticOracle struct {
	ownerID  int64
	adminIDs map[int64]struct{}
}

// NewStaticOracle builds an oracle from the configured owner and admin ids
func NewStaticOracle(cfg *config.Config) *StaticOracle {
	admins := make(map[int64]struct{}, len(cfg.AdminDiscordIDs))
	for _, id := range cfg.AdminDiscordIDs {
		admins[id] = struct{}{}
	}

	return &StaticOracle{
		ownerID:  cfg.OwnerDiscordID,
		adminIDs: admins,
	}
}

// IsOwner reports whether the principal is the pool owner
func (o *StaticOracle) IsOwner(ctx context.Context, principal int64) (bool, error) {
	return principal == o.ownerID, nil
}

// IsAdmin reports whether the principal is a pool admin
func (o *StaticOracle) IsAdmin(ctx context.Context, principal int64) (bool, error) {
	_, ok := o.adminIDs[principal]
	return ok, nil
}
