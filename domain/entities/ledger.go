package entities

import "time"

// DrawState is the per-draw lifecycle state carried on the ledger.
// Valid transitions: Idle -> CommitPending -> Revealed -> Idle
// (finalize), with CommitPending -> Idle only through the timeout
// cancellation path.
type DrawState string

const (
	DrawStateIdle          DrawState = "idle"
	DrawStateCommitPending DrawState = "commit_pending"
	DrawStateRevealed      DrawState = "revealed"
)

// LotteryLedger is the long-lived treasury and draw-cycle state of one
// game. It is loaded, mutated, and stored inside a single transaction
// per operation; no ambient access.
type LotteryLedger struct {
	ID   int64  `db:"id"`
	Game string `db:"game"`

	JackpotBalance   int64 `db:"jackpot_balance"`
	ReserveBalance   int64 `db:"reserve_balance"`
	InsuranceBalance int64 `db:"insurance_balance"`

	SeedAmount int64 `db:"seed_amount"`
	SoftCap    int64 `db:"soft_cap"`
	HardCap    int64 `db:"hard_cap"`

	HouseFeeBps   int64 `db:"house_fee_bps"`
	CurrentDrawID int64 `db:"current_draw_id"`

	State          DrawState `db:"state"`
	RolldownActive bool      `db:"rolldown_active"`
	TotalTickets   int64     `db:"total_tickets"`

	CommitSlot      *int64     `db:"commit_slot"`
	CommitTimestamp *time.Time `db:"commit_timestamp"`
	RandomnessRef   *string    `db:"randomness_ref"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsDrawInProgress reports whether a commit is outstanding.
func (l *LotteryLedger) IsDrawInProgress() bool {
	return l.State != DrawStateIdle
}

// BeginCommit binds an external randomness request to the next draw.
// The ledger must be idle; a second commit while one is outstanding is
// rejected.
func (l *LotteryLedger) BeginCommit(ref string, seedSlot int64, now time.Time) error {
	if l.State != DrawStateIdle {
		return ErrDrawInProgress
	}
	l.State = DrawStateCommitPending
	l.RandomnessRef = &ref
	l.CommitSlot = &seedSlot
	l.CommitTimestamp = &now
	// Provisional only; settled conclusively at reveal.
	l.RolldownActive = l.JackpotBalance >= l.SoftCap
	return nil
}

// MarkRevealed transitions the ledger to the revealed state and records
// the conclusive rolldown decision for this draw.
func (l *LotteryLedger) MarkRevealed(rolldown bool) error {
	if l.State != DrawStateCommitPending {
		return ErrNoDrawInProgress
	}
	l.State = DrawStateRevealed
	l.RolldownActive = rolldown
	return nil
}

// ClearCommit is the timeout recovery path. It drops the outstanding
// commit without touching balances. Only legal before a reveal.
func (l *LotteryLedger) ClearCommit() error {
	if l.State != DrawStateCommitPending {
		return ErrNoDrawInProgress
	}
	l.State = DrawStateIdle
	l.RandomnessRef = nil
	l.CommitSlot = nil
	l.CommitTimestamp = nil
	l.RolldownActive = false
	return nil
}

// CompleteDraw applies post-settlement bookkeeping: new balances and
// fee rate, draw counter advance, and a return to the idle state.
func (l *LotteryLedger) CompleteDraw(jackpot, reserve, insurance, feeBps int64) error {
	if l.State != DrawStateRevealed {
		return ErrDrawNotRevealed
	}
	l.JackpotBalance = jackpot
	l.ReserveBalance = reserve
	l.InsuranceBalance = insurance
	l.HouseFeeBps = feeBps
	l.CurrentDrawID++
	l.TotalTickets = 0
	l.State = DrawStateIdle
	l.RolldownActive = false
	l.RandomnessRef = nil
	l.CommitSlot = nil
	l.CommitTimestamp = nil
	return nil
}
