package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedger() *LotteryLedger {
	return &LotteryLedger{
		ID:             1,
		Game:           "classic",
		JackpotBalance: 1_000_000,
		ReserveBalance: 50_000,
		SeedAmount:     500_000,
		SoftCap:        1_600_000_000_000,
		HardCap:        2_000_000_000_000,
		HouseFeeBps:    400,
		CurrentDrawID:  3,
		State:          DrawStateIdle,
	}
}

func TestLedger_BeginCommit(t *testing.T) {
	ledger := testLedger()
	now := time.Now().UTC()

	err := ledger.BeginCommit("req-1", 42, now)
	require.NoError(t, err)

	assert.Equal(t, DrawStateCommitPending, ledger.State)
	require.NotNil(t, ledger.RandomnessRef)
	assert.Equal(t, "req-1", *ledger.RandomnessRef)
	require.NotNil(t, ledger.CommitSlot)
	assert.Equal(t, int64(42), *ledger.CommitSlot)
	require.NotNil(t, ledger.CommitTimestamp)
	assert.Equal(t, now, *ledger.CommitTimestamp)
	assert.True(t, ledger.IsDrawInProgress())
}

func TestLedger_BeginCommit_RejectsDoubleCommit(t *testing.T) {
	ledger := testLedger()
	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))

	err := ledger.BeginCommit("req-2", 50, time.Now().UTC())
	assert.ErrorIs(t, err, ErrDrawInProgress)

	// First commit untouched
	assert.Equal(t, "req-1", *ledger.RandomnessRef)
}

func TestLedger_BeginCommit_ProvisionalRolldownFlag(t *testing.T) {
	ledger := testLedger()
	ledger.JackpotBalance = ledger.SoftCap

	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))
	assert.True(t, ledger.RolldownActive)
}

func TestLedger_MarkRevealed(t *testing.T) {
	ledger := testLedger()
	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))

	require.NoError(t, ledger.MarkRevealed(true))
	assert.Equal(t, DrawStateRevealed, ledger.State)
	assert.True(t, ledger.RolldownActive)
}

func TestLedger_MarkRevealed_RequiresPendingCommit(t *testing.T) {
	ledger := testLedger()
	assert.ErrorIs(t, ledger.MarkRevealed(false), ErrNoDrawInProgress)
}

func TestLedger_ClearCommit(t *testing.T) {
	ledger := testLedger()
	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))

	require.NoError(t, ledger.ClearCommit())
	assert.Equal(t, DrawStateIdle, ledger.State)
	assert.Nil(t, ledger.RandomnessRef)
	assert.Nil(t, ledger.CommitSlot)
	assert.Nil(t, ledger.CommitTimestamp)
	assert.False(t, ledger.RolldownActive)

	// Balances and draw counter untouched by a cancellation
	assert.Equal(t, int64(1_000_000), ledger.JackpotBalance)
	assert.Equal(t, int64(3), ledger.CurrentDrawID)
}

func TestLedger_ClearCommit_OnlyWhilePending(t *testing.T) {
	ledger := testLedger()
	assert.ErrorIs(t, ledger.ClearCommit(), ErrNoDrawInProgress)

	// A revealed draw cannot be cancelled, only finalized
	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))
	require.NoError(t, ledger.MarkRevealed(false))
	assert.ErrorIs(t, ledger.ClearCommit(), ErrNoDrawInProgress)
}

func TestLedger_CompleteDraw(t *testing.T) {
	ledger := testLedger()
	ledger.TotalTickets = 4_000
	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))
	require.NoError(t, ledger.MarkRevealed(false))

	require.NoError(t, ledger.CompleteDraw(500_000, 60_000, 9_000, 300))

	assert.Equal(t, DrawStateIdle, ledger.State)
	assert.Equal(t, int64(4), ledger.CurrentDrawID)
	assert.Equal(t, int64(500_000), ledger.JackpotBalance)
	assert.Equal(t, int64(60_000), ledger.ReserveBalance)
	assert.Equal(t, int64(9_000), ledger.InsuranceBalance)
	assert.Equal(t, int64(300), ledger.HouseFeeBps)
	assert.Equal(t, int64(0), ledger.TotalTickets)
	assert.Nil(t, ledger.RandomnessRef)
	assert.False(t, ledger.RolldownActive)
}

func TestLedger_CompleteDraw_RequiresRevealedState(t *testing.T) {
	ledger := testLedger()
	assert.ErrorIs(t, ledger.CompleteDraw(0, 0, 0, 0), ErrDrawNotRevealed)

	require.NoError(t, ledger.BeginCommit("req-1", 42, time.Now().UTC()))
	assert.ErrorIs(t, ledger.CompleteDraw(0, 0, 0, 0), ErrDrawNotRevealed)
}
