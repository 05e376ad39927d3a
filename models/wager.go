package models

import (
	"time"
)

// Wager represents a participant's single bet in a round. A participant holds
// at most one wager per round, on exactly one fighter; both the fighter and
// the amount are immutable once recorded.
type Wager struct {
	ID            int64     `db:"id"`
	RoundID       int64     `db:"round_id"`
	ParticipantID int64     `db:"participant_id"`
	Fighter       Fighter   `db:"fighter"`
	Amount        int64     `db:"amount"`
	PayoutAmount  *int64    `db:"payout_amount"`
	CreatedAt     time.Time `db:"created_at"`
}

// CalculatePayout computes the pari-mutuel payout for this wager. Integer
// division truncates toward zero; the truncation residue stays in custody.
func (w *Wager) CalculatePayout(winningTotal int64, totalWagered int64) int64 {
	if winningTotal == 0 {
		return 0
	}
	return (w.Amount * totalWagered) / winningTotal
}

// RoundInfo is the read-only view of a round exposed on the query surface.
// Amounts are reported in external units, with the intake conversion factor
// divided back out.
type RoundInfo struct {
	ID            int64       `json:"id"`
	Status        RoundStatus `json:"status"`
	StartTime     time.Time   `json:"start_time"`
	BettingEndsAt time.Time   `json:"betting_ends_at"`
	TotalOnA      int64       `json:"total_on_a"`
	TotalOnB      int64       `json:"total_on_b"`
	TotalWagered  int64       `json:"total_wagered"`
	Winner        Fighter     `json:"winner"`
}

// SettlementEntry is one planned payout within a settlement
type SettlementEntry struct {
	ParticipantID int64
	WagerAmount   int64
	Payout        int64
}

// SettlementPlan is the full payout schedule for a round, in the order the
// winning participants first wagered. The ordering is externally observable
// and must be stable across replays.
type SettlementPlan struct {
	RoundID      int64
	Winner       Fighter
	TotalWagered int64
	WinningTotal int64
	Entries      []SettlementEntry
}

// TotalPayout sums the planned payouts
func (p *SettlementPlan) TotalPayout() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.Payout
	}
	return total
}

// Dust returns the truncation residue that remains in custody after payout
func (p *SettlementPlan) Dust() int64 {
	return p.TotalWagered - p.TotalPayout()
}

// SettlementResult describes a completed round settlement
type SettlementResult struct {
	Round   *Round
	Winners []*Wager
	Losers  []*Wager
	Payouts map[int64]int64 // participant ID -> payout amount
}
