package services_test

import (
	"context"
	"testing"
	"time"

	"drawhouse/application"
	"drawhouse/domain/entities"
	"drawhouse/domain/events"
	"drawhouse/domain/interfaces"
	"drawhouse/domain/services"
	"drawhouse/domain/testhelpers"
	"drawhouse/repository"
	"drawhouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIntegration(t *testing.T) (*application.Orchestrator, *testutil.TestDatabase) {
	testDB := testutil.SetupTestDatabase(t)
	factory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	orchestrator := application.NewOrchestrator(
		factory,
		[]*entities.GameParams{entities.DefaultClassicParams()},
		services.DrawTimings{
			CommitSlackSlots:  16,
			RevealWindowSlots: 64,
			CancelTimeout:     10 * time.Minute,
		},
	)
	require.NoError(t, orchestrator.EnsureLedgers(context.Background()))
	return orchestrator, testDB
}

func TestDrawCycle_EndToEnd(t *testing.T) {
	orchestrator, testDB := setupIntegration(t)
	ctx := context.Background()

	// Ledger bootstrapped with the seed amount
	var status *interfaces.LedgerStatus
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		var err error
		status, err = svc.GetStatus(ctx, "classic")
		return err
	}))
	assert.Equal(t, int64(500_000), status.Ledger.JackpotBalance)
	assert.Equal(t, int64(1), status.Ledger.CurrentDrawID)

	// Ticket sales accumulate into the treasury
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.RecordTicketSales(ctx, "classic", 5_000, 1_000_000)
		return err
	}))

	// Commit, then reveal once the source resolves
	source := &testhelpers.FakeRandomnessSource{Ref: "e2e-req", Slot: 300}
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Commit(ctx, "classic", source, 305)
		return err
	}))

	source.IsResolved = true
	source.Entropy = integrationEntropy("e2e")

	var reveal *interfaces.RevealResult
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		var err error
		reveal, err = svc.Reveal(ctx, "classic", source, 310)
		return err
	}))
	require.Len(t, reveal.Record.WinningNumbers, 6)

	// Finalize from reported winner counts
	var settlement *interfaces.SettlementResult
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		var err error
		settlement, err = svc.Finalize(ctx, "classic", 1, entities.WinnerCounts{0, 1, 8, 90, 400})
		return err
	}))

	// 4000 + 8*150 + 90*5 = 5650
	assert.Equal(t, int64(5_650), settlement.TotalDistributed)
	assert.Equal(t, int64(2), settlement.Ledger.CurrentDrawID)
	assert.Equal(t, entities.DrawStateIdle, settlement.Ledger.State)

	// The audit trail for the draw survives in the database
	movementRepo := repository.NewMovementRepository(testDB.DB)
	movements, err := movementRepo.ListByDraw(ctx, settlement.Ledger.ID, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, movements)

	// Finalizing the same draw again is rejected
	err = orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Finalize(ctx, "classic", 1, entities.WinnerCounts{0, 0, 0, 0, 0})
		return err
	})
	assert.ErrorIs(t, err, entities.ErrDrawFinalized)
}

func TestDrawCycle_FailedFinalizeRollsBack(t *testing.T) {
	orchestrator, testDB := setupIntegration(t)
	ctx := context.Background()

	source := &testhelpers.FakeRandomnessSource{Ref: "rb-req", Slot: 100}
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Commit(ctx, "classic", source, 100)
		return err
	}))

	source.IsResolved = true
	source.Entropy = integrationEntropy("rollback")
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Reveal(ctx, "classic", source, 105)
		return err
	}))

	// Winner counts exceeding ticket sales abort the transaction
	err := orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Finalize(ctx, "classic", 1, entities.WinnerCounts{0, 50, 0, 0, 0})
		return err
	})
	assert.ErrorIs(t, err, entities.ErrInvalidWinnerCounts)

	// Ledger still awaits a valid finalization with balances intact
	ledger, lerr := repository.NewLedgerRepository(testDB.DB).GetByGame(ctx, "classic")
	require.NoError(t, lerr)
	assert.Equal(t, entities.DrawStateRevealed, ledger.State)
	assert.Equal(t, int64(500_000), ledger.JackpotBalance)
	assert.Equal(t, int64(1), ledger.CurrentDrawID)
}

func TestDrawCycle_CancelRecovery(t *testing.T) {
	orchestrator, testDB := setupIntegration(t)
	ctx := context.Background()

	source := &testhelpers.FakeRandomnessSource{Ref: "stuck-req", Slot: 100}
	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Commit(ctx, "classic", source, 100)
		return err
	}))

	// Too early to cancel
	err := orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		return svc.Cancel(ctx, "classic")
	})
	assert.ErrorIs(t, err, entities.ErrCancelTooEarly)

	// Age the commit past the timeout directly in the database
	_, err = testDB.DB.Exec(ctx,
		`UPDATE lottery_ledgers SET commit_timestamp = commit_timestamp - INTERVAL '1 hour' WHERE game = $1`,
		"classic")
	require.NoError(t, err)

	require.NoError(t, orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		return svc.Cancel(ctx, "classic")
	}))

	ledger, err := repository.NewLedgerRepository(testDB.DB).GetByGame(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, entities.DrawStateIdle, ledger.State)
	assert.Nil(t, ledger.RandomnessRef)
	assert.Equal(t, int64(1), ledger.CurrentDrawID)
}

// integrationEntropy derives a deterministic 32-byte entropy value
func integrationEntropy(seed string) []byte {
	entropy := make([]byte, services.EntropySize)
	for i := range entropy {
		entropy[i] = byte((i*31 + len(seed)*17 + int(seed[i%len(seed)])) % 251)
	}
	return entropy
}
