package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"drawhouse/domain/entities"
)

// MovementRepository implements treasury audit trail data access
type MovementRepository struct {
	q Queryable
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(q Queryable) *MovementRepository {
	return &MovementRepository{q: q}
}

// Record creates a new ledger movement entry
func (r *MovementRepository) Record(ctx context.Context, movement *entities.LedgerMovement) error {
	metadataJSON, err := json.Marshal(movement.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal movement metadata: %w", err)
	}

	query := `
		INSERT INTO ledger_movements
		(ledger_id, draw_id, request_id, movement_type,
		 jackpot_delta, reserve_delta, insurance_delta,
		 jackpot_after, reserve_after, insurance_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		movement.LedgerID,
		movement.DrawID,
		movement.RequestID,
		movement.MovementType,
		movement.JackpotDelta,
		movement.ReserveDelta,
		movement.InsuranceDelta,
		movement.JackpotAfter,
		movement.ReserveAfter,
		movement.InsuranceAfter,
		metadataJSON,
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger movement: %w", err)
	}
	return nil
}

// ListByDraw returns all movements for a draw cycle, oldest first
func (r *MovementRepository) ListByDraw(ctx context.Context, ledgerID, drawID int64) ([]*entities.LedgerMovement, error) {
	query := `
		SELECT id, ledger_id, draw_id, request_id, movement_type,
		       jackpot_delta, reserve_delta, insurance_delta,
		       jackpot_after, reserve_after, insurance_after,
		       metadata, created_at
		FROM ledger_movements
		WHERE ledger_id = $1 AND draw_id = $2
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, ledgerID, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger movements: %w", err)
	}
	defer rows.Close()

	var movements []*entities.LedgerMovement
	for rows.Next() {
		var m entities.LedgerMovement
		var metadataJSON []byte
		if err := rows.Scan(
			&m.ID,
			&m.LedgerID,
			&m.DrawID,
			&m.RequestID,
			&m.MovementType,
			&m.JackpotDelta,
			&m.ReserveDelta,
			&m.InsuranceDelta,
			&m.JackpotAfter,
			&m.ReserveAfter,
			&m.InsuranceAfter,
			&metadataJSON,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger movement: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal movement metadata: %w", err)
			}
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}
