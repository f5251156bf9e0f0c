package repository

import (
	"context"
	"fmt"

	"drawhouse/domain/entities"

	"github.com/jackc/pgx/v5"
)

const drawColumns = `
	id, ledger_id, draw_id, winning_numbers, randomness_proof,
	total_tickets, was_rolldown, winner_counts, prize_per_winner,
	total_distributed, revealed_at, finalized_at, created_at`

// DrawRepository implements draw record data access
type DrawRepository struct {
	q Queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(q Queryable) *DrawRepository {
	return &DrawRepository{q: q}
}

func scanDraw(row pgx.Row) (*entities.DrawRecord, error) {
	var record entities.DrawRecord
	err := row.Scan(
		&record.ID,
		&record.LedgerID,
		&record.DrawID,
		&record.WinningNumbers,
		&record.RandomnessProof,
		&record.TotalTickets,
		&record.WasRolldown,
		&record.WinnerCounts,
		&record.PrizePerWinner,
		&record.TotalDistributed,
		&record.RevealedAt,
		&record.FinalizedAt,
		&record.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new draw record created at reveal
func (r *DrawRepository) Create(ctx context.Context, record *entities.DrawRecord) error {
	query := `
		INSERT INTO draw_records
		(ledger_id, draw_id, winning_numbers, randomness_proof,
		 total_tickets, was_rolldown, winner_counts, prize_per_winner,
		 total_distributed, revealed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.LedgerID,
		record.DrawID,
		record.WinningNumbers,
		record.RandomnessProof,
		record.TotalTickets,
		record.WasRolldown,
		record.WinnerCounts,
		record.PrizePerWinner,
		record.TotalDistributed,
		record.RevealedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw record for draw %d: %w", record.DrawID, err)
	}
	return nil
}

// GetByDrawID retrieves a draw record by ledger and draw cycle
func (r *DrawRepository) GetByDrawID(ctx context.Context, ledgerID, drawID int64) (*entities.DrawRecord, error) {
	query := `SELECT` + drawColumns + `
		FROM draw_records
		WHERE ledger_id = $1 AND draw_id = $2`

	record, err := scanDraw(r.q.QueryRow(ctx, query, ledgerID, drawID))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw record %d: %w", drawID, err)
	}
	return record, nil
}

// GetByDrawIDForUpdate retrieves a draw record with a row lock for update
func (r *DrawRepository) GetByDrawIDForUpdate(ctx context.Context, ledgerID, drawID int64) (*entities.DrawRecord, error) {
	query := `SELECT` + drawColumns + `
		FROM draw_records
		WHERE ledger_id = $1 AND draw_id = $2
		FOR UPDATE`

	record, err := scanDraw(r.q.QueryRow(ctx, query, ledgerID, drawID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw record %d: %w", drawID, err)
	}
	return record, nil
}

// Update persists the finalization mutation
func (r *DrawRepository) Update(ctx context.Context, record *entities.DrawRecord) error {
	query := `
		UPDATE draw_records
		SET winner_counts = $2,
		    prize_per_winner = $3,
		    total_distributed = $4,
		    finalized_at = $5
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		record.ID,
		record.WinnerCounts,
		record.PrizePerWinner,
		record.TotalDistributed,
		record.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update draw record %d: %w", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draw record %d not found", record.ID)
	}
	return nil
}

// ListRecent returns the most recent draw records, newest first
func (r *DrawRepository) ListRecent(ctx context.Context, ledgerID int64, limit int) ([]*entities.DrawRecord, error) {
	query := `SELECT` + drawColumns + `
		FROM draw_records
		WHERE ledger_id = $1
		ORDER BY draw_id DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, ledgerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw records: %w", err)
	}
	defer rows.Close()

	var records []*entities.DrawRecord
	for rows.Next() {
		record, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
