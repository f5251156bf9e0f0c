package entities

import "errors"

// Sentinel errors for the draw lifecycle and settlement engine.
// Callers discriminate with errors.Is; every failed operation aborts
// atomically with no partial ledger mutation.
var (
	// Integrity errors - the randomness protocol was violated.
	ErrRandomnessAlreadyRevealed = errors.New("randomness value already revealed before commit")
	ErrInvalidRandomnessAccount  = errors.New("randomness source does not match committed reference")
	ErrInvalidRandomnessProof    = errors.New("randomness proof is degenerate or unusable")

	// Timing errors - retry with a fresh commit.
	ErrRandomnessExpired     = errors.New("randomness seed marker is older than the commit window")
	ErrRandomnessNotFresh    = errors.New("randomness seed marker outside the reveal window")
	ErrRandomnessNotResolved = errors.New("randomness value not yet resolved")
	ErrCancelTooEarly        = errors.New("commit timeout has not elapsed")

	// State errors - caller bug, do not retry verbatim.
	ErrDrawInProgress   = errors.New("a draw is already in progress")
	ErrNoDrawInProgress = errors.New("no draw is in progress")
	ErrDrawNotRevealed  = errors.New("draw has not been revealed")
	ErrDrawFinalized    = errors.New("draw is already finalized")
	ErrSalesClosed      = errors.New("ticket sales are closed for this draw")

	// Validation errors.
	ErrInvalidWinnerCounts = errors.New("winner counts are invalid")
	ErrInvalidGameParams   = errors.New("game parameters are invalid")
	ErrUnknownGame         = errors.New("game is not configured")

	// Arithmetic and solvency errors.
	ErrArithmeticOverflow = errors.New("integer overflow in balance arithmetic")
	ErrInsolvent          = errors.New("prize obligations exceed jackpot, reserve, and insurance")
)
