package repository

import (
	"context"
	"fmt"

	"drawhouse/domain/entities"

	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `
	id, game, jackpot_balance, reserve_balance, insurance_balance,
	seed_amount, soft_cap, hard_cap, house_fee_bps, current_draw_id,
	state, rolldown_active, total_tickets,
	commit_slot, commit_timestamp, randomness_ref,
	created_at, updated_at`

// LedgerRepository implements lottery ledger data access
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(q Queryable) *LedgerRepository {
	return &LedgerRepository{q: q}
}

func scanLedger(row pgx.Row) (*entities.LotteryLedger, error) {
	var ledger entities.LotteryLedger
	err := row.Scan(
		&ledger.ID,
		&ledger.Game,
		&ledger.JackpotBalance,
		&ledger.ReserveBalance,
		&ledger.InsuranceBalance,
		&ledger.SeedAmount,
		&ledger.SoftCap,
		&ledger.HardCap,
		&ledger.HouseFeeBps,
		&ledger.CurrentDrawID,
		&ledger.State,
		&ledger.RolldownActive,
		&ledger.TotalTickets,
		&ledger.CommitSlot,
		&ledger.CommitTimestamp,
		&ledger.RandomnessRef,
		&ledger.CreatedAt,
		&ledger.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// GetByGame retrieves the ledger for a game
func (r *LedgerRepository) GetByGame(ctx context.Context, game string) (*entities.LotteryLedger, error) {
	query := `SELECT` + ledgerColumns + `
		FROM lottery_ledgers
		WHERE game = $1`

	ledger, err := scanLedger(r.q.QueryRow(ctx, query, game))
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for game %s: %w", game, err)
	}
	return ledger, nil
}

// GetByGameForUpdate retrieves the ledger with a row lock for update
func (r *LedgerRepository) GetByGameForUpdate(ctx context.Context, game string) (*entities.LotteryLedger, error) {
	query := `SELECT` + ledgerColumns + `
		FROM lottery_ledgers
		WHERE game = $1
		FOR UPDATE`

	ledger, err := scanLedger(r.q.QueryRow(ctx, query, game))
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger for game %s: %w", game, err)
	}
	return ledger, nil
}

// Create persists a new ledger
func (r *LedgerRepository) Create(ctx context.Context, ledger *entities.LotteryLedger) error {
	query := `
		INSERT INTO lottery_ledgers
		(game, jackpot_balance, reserve_balance, insurance_balance,
		 seed_amount, soft_cap, hard_cap, house_fee_bps, current_draw_id,
		 state, rolldown_active, total_tickets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		ledger.Game,
		ledger.JackpotBalance,
		ledger.ReserveBalance,
		ledger.InsuranceBalance,
		ledger.SeedAmount,
		ledger.SoftCap,
		ledger.HardCap,
		ledger.HouseFeeBps,
		ledger.CurrentDrawID,
		ledger.State,
		ledger.RolldownActive,
		ledger.TotalTickets,
	).Scan(&ledger.ID, &ledger.CreatedAt, &ledger.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ledger for game %s: %w", ledger.Game, err)
	}
	return nil
}

// Update persists all mutable ledger fields
func (r *LedgerRepository) Update(ctx context.Context, ledger *entities.LotteryLedger) error {
	query := `
		UPDATE lottery_ledgers
		SET jackpot_balance = $2,
		    reserve_balance = $3,
		    insurance_balance = $4,
		    house_fee_bps = $5,
		    current_draw_id = $6,
		    state = $7,
		    rolldown_active = $8,
		    total_tickets = $9,
		    commit_slot = $10,
		    commit_timestamp = $11,
		    randomness_ref = $12,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		ledger.ID,
		ledger.JackpotBalance,
		ledger.ReserveBalance,
		ledger.InsuranceBalance,
		ledger.HouseFeeBps,
		ledger.CurrentDrawID,
		ledger.State,
		ledger.RolldownActive,
		ledger.TotalTickets,
		ledger.CommitSlot,
		ledger.CommitTimestamp,
		ledger.RandomnessRef,
	).Scan(&ledger.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ledger %d: %w", ledger.ID, err)
	}
	return nil
}
