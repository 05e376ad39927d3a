package models

import (
	"time"
)

// PoolSettings holds the operator-tunable pool parameters. A single row is
// persisted so the configured betting window survives restarts.
type PoolSettings struct {
	BettingWindowSeconds int64     `db:"betting_window_seconds"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// BettingWindow returns the configured window as a duration
func (s *PoolSettings) BettingWindow() time.Duration {
	return time.Duration(s.BettingWindowSeconds) * time.Second
}
