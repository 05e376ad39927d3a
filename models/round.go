package models

import (
	"time"
)

// RoundStatus represents the lifecycle state of a betting round
type RoundStatus string

const (
	RoundStatusPending RoundStatus = "pending"
	RoundStatusOpen    RoundStatus = "open"
	RoundStatusClosed  RoundStatus = "closed"
	RoundStatusSettled RoundStatus = "settled"
)

// Fighter identifies one of the two outcomes of a round
type Fighter int16

const (
	FighterNone Fighter = 0
	FighterA    Fighter = 1
	FighterB    Fighter = 2
)

// IsValid reports whether the fighter is one of the two bettable outcomes
func (f Fighter) IsValid() bool {
	return f == FighterA || f == FighterB
}

func (f Fighter) String() string {
	switch f {
	case FighterA:
		return "A"
	case FighterB:
		return "B"
	default:
		return "none"
	}
}

// Round represents a single betting round between two fighters
type Round struct {
	ID            int64       `db:"id"`
	Status        RoundStatus `db:"status"`
	StartTime     time.Time   `db:"start_time"`
	BettingEndsAt time.Time   `db:"betting_ends_at"`
	TotalWagered  int64       `db:"total_wagered"`
	TotalOnA      int64       `db:"total_on_a"`
	TotalOnB      int64       `db:"total_on_b"`
	Winner        Fighter     `db:"winner"`
	CreatedAt     time.Time   `db:"created_at"`
	SettledAt     *time.Time  `db:"settled_at"`
}

// IsOpen checks if the round has not yet been settled
func (r *Round) IsOpen() bool {
	return r.Status == RoundStatusOpen
}

// IsSettled checks if the round has been settled
func (r *Round) IsSettled() bool {
	return r.Status == RoundStatusSettled
}

// CanAcceptBets checks if a bet may be recorded at the given instant.
// The betting window is derived from the timestamp, independent of Status:
// an open round past its window is locked but not yet settled.
func (r *Round) CanAcceptBets(now time.Time) bool {
	return r.IsOpen() && now.Before(r.BettingEndsAt)
}

// EffectiveStatus resolves the derived Closed sub-state: an open round whose
// betting window has elapsed reports Closed until it is settled.
func (r *Round) EffectiveStatus(now time.Time) RoundStatus {
	if r.Status == RoundStatusOpen && !now.Before(r.BettingEndsAt) {
		return RoundStatusClosed
	}
	return r.Status
}

// TotalOn returns the aggregate amount wagered on the given fighter
func (r *Round) TotalOn(f Fighter) int64 {
	switch f {
	case FighterA:
		return r.TotalOnA
	case FighterB:
		return r.TotalOnB
	default:
		return 0
	}
}

// RecordWager adds a wager's amount to the round aggregates
func (r *Round) RecordWager(f Fighter, amount int64) {
	switch f {
	case FighterA:
		r.TotalOnA += amount
	case FighterB:
		r.TotalOnB += amount
	}
	r.TotalWagered += amount
}

// StopBetting pulls the betting window end to the given instant. It never
// lengthens the window, so repeated calls are no-ops in practice.
func (r *Round) StopBetting(now time.Time) {
	if now.Before(r.BettingEndsAt) {
		r.BettingEndsAt = now
	}
}

// Settle transitions the round to its terminal settled state. Returns false
// if the round is not open; a settled round is immutable.
func (r *Round) Settle(winner Fighter, now time.Time) bool {
	if !r.IsOpen() {
		return false
	}
	r.Status = RoundStatusSettled
	r.Winner = winner
	r.SettledAt = &now
	return true
}

// CheckConservation verifies the aggregate invariant
func (r *Round) CheckConservation() bool {
	return r.TotalOnA >= 0 && r.TotalOnB >= 0 && r.TotalOnA+r.TotalOnB == r.TotalWagered
}
