package entities

import "time"

// LedgerMovement records one fund movement against the treasury, with
// the balances as they stood after the movement. Every mutation of the
// ledger's balances writes exactly one movement row in the same
// transaction, so the trail replays to the current balances.
type LedgerMovement struct {
	ID        int64  `db:"id"`
	LedgerID  int64  `db:"ledger_id"`
	DrawID    int64  `db:"draw_id"`
	RequestID string `db:"request_id"` // idempotency/audit key

	MovementType MovementType `db:"movement_type"`

	JackpotDelta   int64 `db:"jackpot_delta"`
	ReserveDelta   int64 `db:"reserve_delta"`
	InsuranceDelta int64 `db:"insurance_delta"`

	JackpotAfter   int64 `db:"jackpot_after"`
	ReserveAfter   int64 `db:"reserve_after"`
	InsuranceAfter int64 `db:"insurance_after"`

	Metadata map[string]interface{} `db:"metadata"`

	CreatedAt time.Time `db:"created_at"`
}

// TotalDelta returns the net change across all three buckets. Internal
// movements (dust, reseed) net to zero; intake and payouts do not.
func (m *LedgerMovement) TotalDelta() int64 {
	return m.JackpotDelta + m.ReserveDelta + m.InsuranceDelta
}
