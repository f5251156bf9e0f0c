package interfaces

import (
	"context"

	"drawhouse/domain/entities"
	"drawhouse/domain/events"
)

// LedgerRepository defines data access for the per-game lottery ledger
type LedgerRepository interface {
	// GetByGame retrieves the ledger for a game, nil if absent
	GetByGame(ctx context.Context, game string) (*entities.LotteryLedger, error)

	// GetByGameForUpdate retrieves the ledger with a row lock for update
	GetByGameForUpdate(ctx context.Context, game string) (*entities.LotteryLedger, error)

	// Create persists a new ledger
	Create(ctx context.Context, ledger *entities.LotteryLedger) error

	// Update persists all mutable ledger fields
	Update(ctx context.Context, ledger *entities.LotteryLedger) error
}

// DrawRepository defines data access for draw records
type DrawRepository interface {
	// Create persists a new draw record created at reveal
	Create(ctx context.Context, record *entities.DrawRecord) error

	// GetByDrawID retrieves a draw record by ledger and draw cycle, nil if absent
	GetByDrawID(ctx context.Context, ledgerID, drawID int64) (*entities.DrawRecord, error)

	// GetByDrawIDForUpdate retrieves a draw record with a row lock for update
	GetByDrawIDForUpdate(ctx context.Context, ledgerID, drawID int64) (*entities.DrawRecord, error)

	// Update persists the finalization mutation
	Update(ctx context.Context, record *entities.DrawRecord) error

	// ListRecent returns the most recent draw records, newest first
	ListRecent(ctx context.Context, ledgerID int64, limit int) ([]*entities.DrawRecord, error)
}

// MovementRepository defines data access for the treasury audit trail
type MovementRepository interface {
	// Record creates a new ledger movement entry
	Record(ctx context.Context, movement *entities.LedgerMovement) error

	// ListByDraw returns all movements for a draw cycle, oldest first
	ListByDraw(ctx context.Context, ledgerID, drawID int64) ([]*entities.LedgerMovement, error)
}

// EventPublisher publishes domain events to interested consumers
type EventPublisher interface {
	Publish(event events.Event) error
}
