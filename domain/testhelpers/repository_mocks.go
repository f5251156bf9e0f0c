package testhelpers

import (
	"context"

	"drawhouse/domain/entities"
	"drawhouse/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) GetByGame(ctx context.Context, game string) (*entities.LotteryLedger, error) {
	args := m.Called(ctx, game)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotteryLedger), args.Error(1)
}

func (m *MockLedgerRepository) GetByGameForUpdate(ctx context.Context, game string) (*entities.LotteryLedger, error) {
	args := m.Called(ctx, game)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotteryLedger), args.Error(1)
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *entities.LotteryLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) Update(ctx context.Context, ledger *entities.LotteryLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) Create(ctx context.Context, record *entities.DrawRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDrawRepository) GetByDrawID(ctx context.Context, ledgerID, drawID int64) (*entities.DrawRecord, error) {
	args := m.Called(ctx, ledgerID, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawRecord), args.Error(1)
}

func (m *MockDrawRepository) GetByDrawIDForUpdate(ctx context.Context, ledgerID, drawID int64) (*entities.DrawRecord, error) {
	args := m.Called(ctx, ledgerID, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawRecord), args.Error(1)
}

func (m *MockDrawRepository) Update(ctx context.Context, record *entities.DrawRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDrawRepository) ListRecent(ctx context.Context, ledgerID int64, limit int) ([]*entities.DrawRecord, error) {
	args := m.Called(ctx, ledgerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DrawRecord), args.Error(1)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Record(ctx context.Context, movement *entities.LedgerMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) ListByDraw(ctx context.Context, ledgerID, drawID int64) ([]*entities.LedgerMovement, error) {
	args := m.Called(ctx, ledgerID, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerMovement), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
