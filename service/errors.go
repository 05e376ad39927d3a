package service

import (
	"errors"
)

// Every operation fails atomically: when one of these is returned, no ledger
// or lifecycle mutation from the failed operation is retained. There is no
// automatic retry; the caller re-invokes after resolving the condition.
var (
	// ErrUnauthorized is returned when the caller is neither the owner nor
	// holds the administrative role.
	ErrUnauthorized = errors.New("caller is not authorized to manage rounds")

	// ErrRoundAlreadyActive is returned by StartRound while a round is open.
	ErrRoundAlreadyActive = errors.New("a round is already active")

	// ErrRoundNotActive is returned by lifecycle and wager operations that
	// require an open round, including a repeated DeclareWinner.
	ErrRoundNotActive = errors.New("no round is currently active")

	// ErrBettingClosed is returned when the betting window has elapsed,
	// regardless of the round still being open.
	ErrBettingClosed = errors.New("betting window has closed")

	// ErrAlreadyWagered is returned on a second bet by the same participant
	// in the same round.
	ErrAlreadyWagered = errors.New("participant has already wagered in this round")

	// ErrInvalidAmount is returned for a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidFighter is returned when the outcome is neither fighter A
	// nor fighter B.
	ErrInvalidFighter = errors.New("fighter must be A or B")

	// ErrInsufficientAllowance is returned when the participant has not
	// pre-authorized enough of the custodial asset.
	ErrInsufficientAllowance = errors.New("insufficient custodial allowance")

	// ErrTransferFailed is returned when a custodian debit or credit did not
	// succeed. During settlement this aborts the whole round transition.
	ErrTransferFailed = errors.New("custodian transfer failed")
)
