package repository

import (
	"context"
	"sync"
	"testing"

	"drawhouse/domain/entities"
	"drawhouse/domain/events"
	"drawhouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersists(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	ledger := &entities.LotteryLedger{
		Game:           "classic",
		JackpotBalance: 500_000,
		SeedAmount:     500_000,
		SoftCap:        1_600_000_000_000,
		HardCap:        2_000_000_000_000,
		CurrentDrawID:  1,
		State:          entities.DrawStateIdle,
	}
	require.NoError(t, uow.LedgerRepository().Create(ctx, ledger))
	require.NoError(t, uow.Commit())

	// Visible outside the transaction after commit
	fetched, err := NewLedgerRepository(testDB.DB).GetByGame(ctx, "classic")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, ledger.ID, fetched.ID)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	ledger := &entities.LotteryLedger{
		Game:          "classic",
		SeedAmount:    500_000,
		SoftCap:       1_600_000_000_000,
		HardCap:       2_000_000_000_000,
		CurrentDrawID: 1,
		State:         entities.DrawStateIdle,
	}
	require.NoError(t, uow.LedgerRepository().Create(ctx, ledger))
	require.NoError(t, uow.Rollback())

	fetched, err := NewLedgerRepository(testDB.DB).GetByGame(ctx, "classic")
	require.NoError(t, err)
	assert.Nil(t, fetched)
}

func TestUnitOfWork_EventsFlushOnlyAfterCommit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()

	var mu sync.Mutex
	var received []events.Event
	done := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeTicketSales, func(ctx context.Context, e events.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		done <- struct{}{}
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.EventPublisher().Publish(events.TicketSalesEvent{Game: "classic", Tickets: 10}))

	// Nothing emitted while the transaction is open
	mu.Lock()
	assert.Empty(t, received)
	mu.Unlock()

	require.NoError(t, uow.Commit())
	<-done

	mu.Lock()
	require.Len(t, received, 1)
	sale := received[0].(events.TicketSalesEvent)
	assert.Equal(t, int64(10), sale.Tickets)
	mu.Unlock()
}

func TestUnitOfWork_EventsDiscardedOnRollback(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()

	var mu sync.Mutex
	emitted := 0
	bus.Subscribe(events.EventTypeTicketSales, func(ctx context.Context, e events.Event) {
		mu.Lock()
		emitted++
		mu.Unlock()
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.EventPublisher().Publish(events.TicketSalesEvent{Game: "classic"}))
	require.NoError(t, uow.Rollback())

	// A rolled-back operation must not leak its events
	mu.Lock()
	assert.Equal(t, 0, emitted)
	mu.Unlock()
}

func TestUnitOfWork_DoubleBeginRejected(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}
