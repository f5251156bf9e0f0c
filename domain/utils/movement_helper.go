package utils

import (
	"context"
	"fmt"

	"drawhouse/domain/entities"
	"drawhouse/domain/events"
	"drawhouse/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordMovement records a treasury movement entry and emits the
// matching event. This is the single entry point for all balance
// changes in the system; the movement row commits or rolls back with
// the ledger mutation it describes.
func RecordMovement(ctx context.Context, movementRepo interfaces.MovementRepository, eventPublisher interfaces.EventPublisher, game string, movement *entities.LedgerMovement) error {
	if err := movementRepo.Record(ctx, movement); err != nil {
		return fmt.Errorf("failed to record ledger movement: %w", err)
	}

	event := events.LedgerMovementEvent{
		Game:           game,
		DrawID:         movement.DrawID,
		MovementType:   movement.MovementType.String(),
		JackpotDelta:   movement.JackpotDelta,
		ReserveDelta:   movement.ReserveDelta,
		InsuranceDelta: movement.InsuranceDelta,
	}
	log.WithFields(log.Fields{
		"game":           game,
		"drawID":         movement.DrawID,
		"movementType":   movement.MovementType,
		"jackpotDelta":   movement.JackpotDelta,
		"reserveDelta":   movement.ReserveDelta,
		"insuranceDelta": movement.InsuranceDelta,
	}).Debug("Publishing LedgerMovementEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish ledger movement event")
	}

	return nil
}
