package repository

import (
	"context"
	"testing"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLedger(t *testing.T, repo *LedgerRepository, game string) *entities.LotteryLedger {
	t.Helper()
	ledger := &entities.LotteryLedger{
		Game:           game,
		JackpotBalance: 500_000,
		ReserveBalance: 10_000,
		SeedAmount:     500_000,
		SoftCap:        1_600_000_000_000,
		HardCap:        2_000_000_000_000,
		HouseFeeBps:    300,
		CurrentDrawID:  1,
		State:          entities.DrawStateIdle,
	}
	require.NoError(t, repo.Create(context.Background(), ledger))
	return ledger
}

func TestLedgerRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	created := createTestLedger(t, repo, "classic")
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := repo.GetByGame(ctx, "classic")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, int64(500_000), fetched.JackpotBalance)
	assert.Equal(t, entities.DrawStateIdle, fetched.State)
	assert.Nil(t, fetched.RandomnessRef)
}

func TestLedgerRepository_GetMissingGame(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)

	ledger, err := repo.GetByGame(context.Background(), "nosuchgame")
	require.NoError(t, err)
	assert.Nil(t, ledger)
}

func TestLedgerRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	ledger := createTestLedger(t, repo, "classic")

	now := time.Now().UTC()
	require.NoError(t, ledger.BeginCommit("req-abc", 42, now))
	ledger.JackpotBalance = 750_000
	require.NoError(t, repo.Update(ctx, ledger))

	fetched, err := repo.GetByGame(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, int64(750_000), fetched.JackpotBalance)
	assert.Equal(t, entities.DrawStateCommitPending, fetched.State)
	require.NotNil(t, fetched.RandomnessRef)
	assert.Equal(t, "req-abc", *fetched.RandomnessRef)
	require.NotNil(t, fetched.CommitSlot)
	assert.Equal(t, int64(42), *fetched.CommitSlot)
}

func TestDrawRepository_CreateAndFinalize(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	drawRepo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	ledger := createTestLedger(t, ledgerRepo, "classic")

	record := &entities.DrawRecord{
		LedgerID:        ledger.ID,
		DrawID:          1,
		WinningNumbers:  []int64{4, 9, 17, 23, 38, 44},
		RandomnessProof: make([]byte, 32),
		TotalTickets:    250,
		WinnerCounts:    make([]int64, entities.TierCount),
		PrizePerWinner:  make([]int64, entities.TierCount),
		RevealedAt:      time.Now().UTC(),
	}
	require.NoError(t, drawRepo.Create(ctx, record))
	assert.NotZero(t, record.ID)

	fetched, err := drawRepo.GetByDrawID(ctx, ledger.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, []int64{4, 9, 17, 23, 38, 44}, fetched.WinningNumbers)
	assert.False(t, fetched.IsFinalized())

	require.NoError(t, fetched.Finalize(
		[]int64{0, 1, 4, 20, 30},
		[]int64{0, 4000, 150, 5, 1},
		4_700,
		time.Now().UTC(),
	))
	require.NoError(t, drawRepo.Update(ctx, fetched))

	final, err := drawRepo.GetByDrawID(ctx, ledger.ID, 1)
	require.NoError(t, err)
	assert.True(t, final.IsFinalized())
	assert.Equal(t, int64(4_700), final.TotalDistributed)
	assert.Equal(t, []int64{0, 1, 4, 20, 30}, final.WinnerCounts)
}

func TestDrawRepository_ListRecent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	drawRepo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	ledger := createTestLedger(t, ledgerRepo, "classic")

	for drawID := int64(1); drawID <= 5; drawID++ {
		record := &entities.DrawRecord{
			LedgerID:        ledger.ID,
			DrawID:          drawID,
			WinningNumbers:  []int64{1, 2, 3, 4, 5, 6},
			RandomnessProof: make([]byte, 32),
			WinnerCounts:    make([]int64, entities.TierCount),
			PrizePerWinner:  make([]int64, entities.TierCount),
			RevealedAt:      time.Now().UTC(),
		}
		require.NoError(t, drawRepo.Create(ctx, record))
	}

	records, err := drawRepo.ListRecent(ctx, ledger.ID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(5), records[0].DrawID)
	assert.Equal(t, int64(4), records[1].DrawID)
	assert.Equal(t, int64(3), records[2].DrawID)
}

func TestMovementRepository_RecordAndList(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	movementRepo := NewMovementRepository(testDB.DB)
	ctx := context.Background()

	ledger := createTestLedger(t, ledgerRepo, "classic")

	movement := &entities.LedgerMovement{
		LedgerID:       ledger.ID,
		DrawID:         1,
		RequestID:      "req-move-1",
		MovementType:   entities.MovementTypeTicketSales,
		JackpotDelta:   67_200,
		ReserveDelta:   24_000,
		InsuranceDelta: 4_800,
		JackpotAfter:   567_200,
		ReserveAfter:   34_000,
		InsuranceAfter: 4_800,
		Metadata: map[string]interface{}{
			"tickets": 500,
		},
	}
	require.NoError(t, movementRepo.Record(ctx, movement))
	assert.NotZero(t, movement.ID)

	movements, err := movementRepo.ListByDraw(ctx, ledger.ID, 1)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entities.MovementTypeTicketSales, movements[0].MovementType)
	assert.Equal(t, int64(67_200), movements[0].JackpotDelta)
	assert.NotNil(t, movements[0].Metadata)
}
