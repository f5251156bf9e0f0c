package repository

import (
	"context"
	"fmt"

	"drawhouse/database"
	"drawhouse/domain/events"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// UnitOfWork scopes one settlement-engine operation to a single
// database transaction. Every repository handed out operates on the
// same transaction, so a failed validation rolls back all of an
// operation's writes together.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	LedgerRepository() interfaces.LedgerRepository
	DrawRepository() interfaces.DrawRepository
	MovementRepository() interfaces.MovementRepository
	EventPublisher() interfaces.EventPublisher
}

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db  *database.DB
	tx  pgx.Tx
	ctx context.Context

	ledgerRepo   *LedgerRepository
	drawRepo     *DrawRepository
	movementRepo *MovementRepository
	eventBus     *events.TransactionalBus
}

// UnitOfWorkFactory creates transaction-scoped units of work
type UnitOfWorkFactory struct {
	db  *database.DB
	bus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, bus *events.Bus) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db, bus: bus}
}

// Create returns a fresh unit of work
func (f *UnitOfWorkFactory) Create() UnitOfWork {
	return &unitOfWork{db: f.db, eventBus: events.NewTransactionalBus(f.bus)}
}

// ReadOnlyRepositories returns repositories backed by the shared pool,
// outside any transaction. Status and listing queries use this path.
func (f *UnitOfWorkFactory) ReadOnlyRepositories() (interfaces.LedgerRepository, interfaces.DrawRepository, interfaces.MovementRepository) {
	return NewLedgerRepository(f.db), NewDrawRepository(f.db), NewMovementRepository(f.db)
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.ledgerRepo = NewLedgerRepository(tx)
	u.drawRepo = NewDrawRepository(tx)
	u.movementRepo = NewMovementRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	if err := u.tx.Commit(u.ctx); err != nil {
		u.eventBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.eventBus.Flush(u.ctx)
	u.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(u.ctx); err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.eventBus.Discard()
	u.tx = nil
	return nil
}

// EventPublisher returns the transaction-scoped event publisher.
// Events publish to the main bus only after Commit succeeds.
func (u *unitOfWork) EventPublisher() interfaces.EventPublisher {
	return u.eventBus
}

// LedgerRepository returns the transaction-scoped ledger repository
func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return u.ledgerRepo
}

// DrawRepository returns the transaction-scoped draw repository
func (u *unitOfWork) DrawRepository() interfaces.DrawRepository {
	return u.drawRepo
}

// MovementRepository returns the transaction-scoped movement repository
func (u *unitOfWork) MovementRepository() interfaces.MovementRepository {
	return u.movementRepo
}
