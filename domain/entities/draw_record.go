package entities

import "time"

// DrawRecord is the durable audit record of one draw cycle. It is
// created at reveal with winner counts and prizes zeroed, mutated
// exactly once at finalization, and immutable thereafter.
type DrawRecord struct {
	ID       int64 `db:"id"`
	LedgerID int64 `db:"ledger_id"`
	DrawID   int64 `db:"draw_id"`

	WinningNumbers  []int64 `db:"winning_numbers"`  // PickCount unique values in [1, NumberRange], ascending
	RandomnessProof []byte  `db:"randomness_proof"` // raw 32-byte entropy, retained for audit

	TotalTickets int64 `db:"total_tickets"`
	WasRolldown  bool  `db:"was_rolldown"`

	WinnerCounts     []int64 `db:"winner_counts"`     // per tier, zeroed until finalization
	PrizePerWinner   []int64 `db:"prize_per_winner"`  // per tier, zeroed until finalization
	TotalDistributed int64   `db:"total_distributed"` // monetary tiers only

	RevealedAt  time.Time  `db:"revealed_at"`
	FinalizedAt *time.Time `db:"finalized_at"` // NULL until finalization

	CreatedAt time.Time `db:"created_at"`
}

// IsFinalized reports whether settlement has been applied.
func (d *DrawRecord) IsFinalized() bool {
	return d.FinalizedAt != nil
}

// Finalize records the settlement outcome. The one-shot guard rejects a
// second finalization outright so a retried external call can never
// double-pay.
func (d *DrawRecord) Finalize(counts, prizes []int64, totalDistributed int64, now time.Time) error {
	if d.IsFinalized() {
		return ErrDrawFinalized
	}
	d.WinnerCounts = counts
	d.PrizePerWinner = prizes
	d.TotalDistributed = totalDistributed
	d.FinalizedAt = &now
	return nil
}
