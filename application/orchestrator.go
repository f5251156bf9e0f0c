package application

import (
	"context"
	"fmt"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"
	"drawhouse/domain/services"
	"drawhouse/infrastructure"
	"drawhouse/repository"
)

// Orchestrator runs each draw-cycle operation inside its own unit of
// work. A service instance lives only as long as the transaction that
// backs its repositories; events queued during the operation publish
// only after the commit lands.
type Orchestrator struct {
	uowFactory *repository.UnitOfWorkFactory
	gameParams []*entities.GameParams
	timings    services.DrawTimings
}

// NewOrchestrator creates an orchestrator over the given factory
func NewOrchestrator(
	uowFactory *repository.UnitOfWorkFactory,
	gameParams []*entities.GameParams,
	timings services.DrawTimings,
) *Orchestrator {
	return &Orchestrator{
		uowFactory: uowFactory,
		gameParams: gameParams,
		timings:    timings,
	}
}

// Execute runs fn against a transaction-scoped draw service and
// commits if fn succeeds. Any error rolls the whole operation back.
func (o *Orchestrator) Execute(ctx context.Context, fn func(svc interfaces.DrawService) error) error {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	svc := services.NewDrawService(
		uow.LedgerRepository(),
		uow.DrawRepository(),
		uow.MovementRepository(),
		uow.EventPublisher(),
		o.gameParams,
		o.timings,
	)

	if err := fn(svc); err != nil {
		uow.Rollback()
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Read runs fn against a pool-backed draw service with no transaction.
// Fit for status and listing queries only; events raised here are
// dropped.
func (o *Orchestrator) Read(fn func(svc interfaces.DrawService) error) error {
	ledgerRepo, drawRepo, movementRepo := o.uowFactory.ReadOnlyRepositories()
	svc := services.NewDrawService(
		ledgerRepo,
		drawRepo,
		movementRepo,
		infrastructure.NewNoopEventPublisher(),
		o.gameParams,
		o.timings,
	)
	return fn(svc)
}

// EnsureLedgers creates a ledger row for any configured game that does
// not have one yet. New ledgers start idle at draw 1 with the jackpot
// seeded to the game's seed amount.
func (o *Orchestrator) EnsureLedgers(ctx context.Context) error {
	for _, p := range o.gameParams {
		uow := o.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		existing, err := uow.LedgerRepository().GetByGame(ctx, p.Game)
		if err != nil {
			uow.Rollback()
			return fmt.Errorf("failed to check ledger for game %s: %w", p.Game, err)
		}
		if existing != nil {
			uow.Rollback()
			continue
		}

		ledger := &entities.LotteryLedger{
			Game:           p.Game,
			JackpotBalance: p.SeedAmount,
			SeedAmount:     p.SeedAmount,
			SoftCap:        p.SoftCap,
			HardCap:        p.HardCap,
			HouseFeeBps:    services.FeeBps(p, p.SeedAmount, false),
			CurrentDrawID:  1,
			State:          entities.DrawStateIdle,
		}
		if err := uow.LedgerRepository().Create(ctx, ledger); err != nil {
			uow.Rollback()
			return fmt.Errorf("failed to create ledger for game %s: %w", p.Game, err)
		}
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit ledger for game %s: %w", p.Game, err)
		}
	}
	return nil
}

// Games returns the configured game identifiers
func (o *Orchestrator) Games() []string {
	games := make([]string, 0, len(o.gameParams))
	for _, p := range o.gameParams {
		games = append(games, p.Game)
	}
	return games
}
