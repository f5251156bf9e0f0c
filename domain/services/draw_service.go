package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/events"
	"drawhouse/domain/interfaces"
	"drawhouse/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DrawTimings holds the protocol windows shared by every game.
type DrawTimings struct {
	// CommitSlackSlots bounds how old a randomness seed marker may be
	// at commit time, preventing stockpiled precomputed randomness.
	CommitSlackSlots int64

	// RevealWindowSlots bounds how long after the seed slot a reveal is
	// accepted, limiting the front-running window.
	RevealWindowSlots int64

	// CancelTimeout is how long a commit may sit unrevealed before the
	// recovery path may clear it.
	CancelTimeout time.Duration
}

// drawService implements the draw-cycle business logic for all games
type drawService struct {
	ledgerRepo   interfaces.LedgerRepository
	drawRepo     interfaces.DrawRepository
	movementRepo interfaces.MovementRepository

	eventPublisher interfaces.EventPublisher

	params  map[string]*entities.GameParams
	timings DrawTimings

	now func() time.Time
}

// NewDrawService creates a new draw service over transaction-scoped
// repositories. One instance serves every configured game variant.
func NewDrawService(
	ledgerRepo interfaces.LedgerRepository,
	drawRepo interfaces.DrawRepository,
	movementRepo interfaces.MovementRepository,
	eventPublisher interfaces.EventPublisher,
	gameParams []*entities.GameParams,
	timings DrawTimings,
) interfaces.DrawService {
	params := make(map[string]*entities.GameParams, len(gameParams))
	for _, p := range gameParams {
		params[p.Game] = p
	}
	return &drawService{
		ledgerRepo:     ledgerRepo,
		drawRepo:       drawRepo,
		movementRepo:   movementRepo,
		eventPublisher: eventPublisher,
		params:         params,
		timings:        timings,
		now:            time.Now,
	}
}

func (s *drawService) gameParams(game string) (*entities.GameParams, error) {
	p, ok := s.params[game]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownGame, game)
	}
	return p, nil
}

func (s *drawService) lockedLedger(ctx context.Context, game string) (*entities.LotteryLedger, error) {
	ledger, err := s.ledgerRepo.GetByGameForUpdate(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: no ledger for %q", entities.ErrUnknownGame, game)
	}
	return ledger, nil
}

// RecordTicketSales folds a sales batch into the treasury: house fee
// first at the current rate, remainder split across the jackpot,
// reserve, and insurance buckets by the configured shares.
func (s *drawService) RecordTicketSales(ctx context.Context, game string, tickets, grossAmount int64) (*interfaces.SalesResult, error) {
	if tickets <= 0 {
		return nil, errors.New("ticket count must be positive")
	}
	if grossAmount < 0 {
		return nil, errors.New("gross amount must be non-negative")
	}
	params, err := s.gameParams(game)
	if err != nil {
		return nil, err
	}

	ledger, err := s.lockedLedger(ctx, game)
	if err != nil {
		return nil, err
	}
	if ledger.State != entities.DrawStateIdle {
		return nil, entities.ErrSalesClosed
	}

	fee, err := utils.MulBps(grossAmount, ledger.HouseFeeBps)
	if err != nil {
		return nil, err
	}
	net := grossAmount - fee

	jackpotShare, err := utils.MulBps(net, params.JackpotShareBps)
	if err != nil {
		return nil, err
	}
	reserveShare, err := utils.MulBps(net, params.ReserveShareBps)
	if err != nil {
		return nil, err
	}
	// Remainder to insurance so split rounding never loses a unit.
	insuranceShare := net - jackpotShare - reserveShare

	if ledger.JackpotBalance, err = utils.CheckedAdd(ledger.JackpotBalance, jackpotShare); err != nil {
		return nil, err
	}
	if ledger.ReserveBalance, err = utils.CheckedAdd(ledger.ReserveBalance, reserveShare); err != nil {
		return nil, err
	}
	if ledger.InsuranceBalance, err = utils.CheckedAdd(ledger.InsuranceBalance, insuranceShare); err != nil {
		return nil, err
	}
	ledger.TotalTickets += tickets

	movement := &entities.LedgerMovement{
		LedgerID:       ledger.ID,
		DrawID:         ledger.CurrentDrawID,
		RequestID:      uuid.NewString(),
		MovementType:   entities.MovementTypeTicketSales,
		JackpotDelta:   jackpotShare,
		ReserveDelta:   reserveShare,
		InsuranceDelta: insuranceShare,
		JackpotAfter:   ledger.JackpotBalance,
		ReserveAfter:   ledger.ReserveBalance,
		InsuranceAfter: ledger.InsuranceBalance,
		Metadata: map[string]interface{}{
			"tickets":       tickets,
			"gross_amount":  grossAmount,
			"fee_amount":    fee,
			"house_fee_bps": ledger.HouseFeeBps,
		},
	}
	if err := utils.RecordMovement(ctx, s.movementRepo, s.eventPublisher, game, movement); err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TicketSalesEvent{
		Game:        game,
		DrawID:      ledger.CurrentDrawID,
		Tickets:     tickets,
		GrossAmount: grossAmount,
		FeeAmount:   fee,
	}); err != nil {
		log.WithError(err).Error("failed to publish ticket sales event")
	}

	return &interfaces.SalesResult{
		Ledger:      ledger,
		Tickets:     tickets,
		GrossAmount: grossAmount,
		FeeAmount:   fee,
		NetAmount:   net,
	}, nil
}

// Commit binds one external randomness request to the next draw. The
// request must not be resolvable yet and its seed marker must be
// recent; both checks keep an operator from cherry-picking an outcome.
func (s *drawService) Commit(ctx context.Context, game string, source interfaces.RandomnessSource, currentSlot int64) (*entities.LotteryLedger, error) {
	if _, err := s.gameParams(game); err != nil {
		return nil, err
	}

	ledger, err := s.lockedLedger(ctx, game)
	if err != nil {
		return nil, err
	}
	if ledger.State != entities.DrawStateIdle {
		return nil, entities.ErrDrawInProgress
	}

	resolved, err := source.Resolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read randomness state: %w", err)
	}
	if resolved {
		return nil, entities.ErrRandomnessAlreadyRevealed
	}

	seedSlot, err := source.SeedSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed slot: %w", err)
	}
	if seedSlot > currentSlot || currentSlot-seedSlot > s.timings.CommitSlackSlots {
		return nil, fmt.Errorf("%w: seeded at slot %d, current slot %d",
			entities.ErrRandomnessExpired, seedSlot, currentSlot)
	}

	if err := ledger.BeginCommit(source.Reference(), seedSlot, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	log.WithFields(log.Fields{
		"game":     game,
		"drawID":   ledger.CurrentDrawID,
		"ref":      source.Reference(),
		"seedSlot": seedSlot,
	}).Info("randomness committed")

	if err := s.eventPublisher.Publish(events.DrawCommittedEvent{
		Game:          game,
		DrawID:        ledger.CurrentDrawID,
		RandomnessRef: source.Reference(),
		CommitSlot:    seedSlot,
	}); err != nil {
		log.WithError(err).Error("failed to publish draw committed event")
	}

	return ledger, nil
}

// Reveal verifies the committed randomness and turns it into winning
// numbers plus the rolldown decision. The reveal must strictly follow
// its own commit, within a bounded slot window, against the exact
// source that was committed.
func (s *drawService) Reveal(ctx context.Context, game string, source interfaces.RandomnessSource, currentSlot int64) (*interfaces.RevealResult, error) {
	params, err := s.gameParams(game)
	if err != nil {
		return nil, err
	}

	ledger, err := s.lockedLedger(ctx, game)
	if err != nil {
		return nil, err
	}
	if ledger.State != entities.DrawStateCommitPending {
		return nil, entities.ErrNoDrawInProgress
	}

	if ledger.RandomnessRef == nil || source.Reference() != *ledger.RandomnessRef {
		return nil, entities.ErrInvalidRandomnessAccount
	}

	seedSlot, err := source.SeedSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed slot: %w", err)
	}
	if ledger.CommitSlot == nil || seedSlot != *ledger.CommitSlot {
		return nil, fmt.Errorf("%w: seed slot %d does not match committed slot",
			entities.ErrRandomnessNotFresh, seedSlot)
	}
	if currentSlot <= seedSlot {
		return nil, fmt.Errorf("%w: reveal at slot %d precedes seed slot %d",
			entities.ErrRandomnessNotFresh, currentSlot, seedSlot)
	}
	if currentSlot-seedSlot > s.timings.RevealWindowSlots {
		return nil, fmt.Errorf("%w: reveal window of %d slots elapsed",
			entities.ErrRandomnessNotFresh, s.timings.RevealWindowSlots)
	}

	resolved, err := source.Resolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read randomness state: %w", err)
	}
	if !resolved {
		return nil, entities.ErrRandomnessNotResolved
	}

	entropy, err := source.Value(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read randomness value: %w", err)
	}
	if err := ValidateEntropy(entropy); err != nil {
		return nil, err
	}

	numbers, err := GenerateWinningNumbers(entropy, params.PickCount, params.NumberRange)
	if err != nil {
		return nil, err
	}

	probabilityBps := RolldownProbabilityBps(ledger.JackpotBalance, ledger.SoftCap, ledger.HardCap)
	rolldown := ledger.JackpotBalance >= ledger.HardCap ||
		ShouldTriggerRolldown(entropy, probabilityBps)

	record := &entities.DrawRecord{
		LedgerID:        ledger.ID,
		DrawID:          ledger.CurrentDrawID,
		WinningNumbers:  numbers,
		RandomnessProof: entropy,
		TotalTickets:    ledger.TotalTickets,
		WasRolldown:     rolldown,
		WinnerCounts:    make([]int64, entities.TierCount),
		PrizePerWinner:  make([]int64, entities.TierCount),
		RevealedAt:      s.now().UTC(),
	}
	if err := s.drawRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create draw record: %w", err)
	}

	if err := ledger.MarkRevealed(rolldown); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	log.WithFields(log.Fields{
		"game":           game,
		"drawID":         record.DrawID,
		"winningNumbers": numbers,
		"rolldown":       rolldown,
		"probabilityBps": probabilityBps,
	}).Info("draw revealed")

	if err := s.eventPublisher.Publish(events.DrawRevealedEvent{
		Game:           game,
		DrawID:         record.DrawID,
		WinningNumbers: numbers,
		Rolldown:       rolldown,
		ProbabilityBps: probabilityBps,
	}); err != nil {
		log.WithError(err).Error("failed to publish draw revealed event")
	}

	return &interfaces.RevealResult{Record: record, ProbabilityBps: probabilityBps}, nil
}

// Finalize settles a revealed draw from the externally reported winner
// counts, applies the outcome to the treasury, and advances the draw
// cycle. The record's one-shot guard makes a retried call error instead
// of double-paying.
func (s *drawService) Finalize(ctx context.Context, game string, drawID int64, counts entities.WinnerCounts) (*interfaces.SettlementResult, error) {
	params, err := s.gameParams(game)
	if err != nil {
		return nil, err
	}

	ledger, err := s.lockedLedger(ctx, game)
	if err != nil {
		return nil, err
	}
	record, err := s.drawRepo.GetByDrawIDForUpdate(ctx, ledger.ID, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("no draw record for draw %d", drawID)
	}
	if record.IsFinalized() {
		return nil, entities.ErrDrawFinalized
	}
	if ledger.State != entities.DrawStateRevealed || drawID != ledger.CurrentDrawID {
		return nil, entities.ErrDrawNotRevealed
	}

	if err := counts.Validate(record.TotalTickets); err != nil {
		return nil, err
	}

	outcome, err := CalculateSettlement(SettlementInput{
		Params:    params,
		Jackpot:   ledger.JackpotBalance,
		Reserve:   ledger.ReserveBalance,
		Insurance: ledger.InsuranceBalance,
		Rolldown:  record.WasRolldown,
		Counts:    counts,
	})
	if err != nil {
		return nil, err
	}

	if err := s.recordSettlementMovements(ctx, game, ledger, counts, outcome, record.WasRolldown); err != nil {
		return nil, err
	}

	if err := record.Finalize(counts, outcome.PrizePerWinner, outcome.TotalDistributed, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.drawRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update draw record: %w", err)
	}

	if err := ledger.CompleteDraw(outcome.Jackpot, outcome.Reserve, outcome.Insurance, outcome.HouseFeeBps); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	log.WithFields(log.Fields{
		"game":             game,
		"drawID":           drawID,
		"totalDistributed": outcome.TotalDistributed,
		"scaleBps":         outcome.ScaleBps,
		"rolldown":         record.WasRolldown,
		"reseeded":         outcome.Reseeded,
		"newJackpot":       outcome.Jackpot,
	}).Info("draw finalized")

	if err := s.eventPublisher.Publish(events.DrawFinalizedEvent{
		Game:             game,
		DrawID:           drawID,
		WinnerCounts:     counts,
		PrizePerWinner:   outcome.PrizePerWinner,
		TotalDistributed: outcome.TotalDistributed,
		Rolldown:         record.WasRolldown,
		Reseeded:         outcome.Reseeded,
	}); err != nil {
		log.WithError(err).Error("failed to publish draw finalized event")
	}

	return &interfaces.SettlementResult{
		Record:            record,
		Ledger:            ledger,
		PrizePerWinner:    outcome.PrizePerWinner,
		TotalDistributed:  outcome.TotalDistributed,
		ScaleBps:          outcome.ScaleBps,
		InsuranceDrawdown: outcome.InsuranceDrawdown,
		Dust:              outcome.Dust,
		Reseeded:          outcome.Reseeded,
	}, nil
}

// recordSettlementMovements writes the audit trail for one settlement:
// payouts, insurance drawdown, dust, and reseed, each with the balances
// as they stand after the whole settlement applied.
func (s *drawService) recordSettlementMovements(ctx context.Context, game string, ledger *entities.LotteryLedger, counts entities.WinnerCounts, outcome *SettlementOutcome, rolldown bool) error {
	drawID := ledger.CurrentDrawID
	record := func(mt entities.MovementType, jackpotDelta, reserveDelta, insuranceDelta int64, meta map[string]interface{}) error {
		return utils.RecordMovement(ctx, s.movementRepo, s.eventPublisher, game, &entities.LedgerMovement{
			LedgerID:       ledger.ID,
			DrawID:         drawID,
			RequestID:      uuid.NewString(),
			MovementType:   mt,
			JackpotDelta:   jackpotDelta,
			ReserveDelta:   reserveDelta,
			InsuranceDelta: insuranceDelta,
			JackpotAfter:   outcome.Jackpot,
			ReserveAfter:   outcome.Reserve,
			InsuranceAfter: outcome.Insurance,
			Metadata:       meta,
		})
	}

	if outcome.TotalDistributed > 0 {
		mt := entities.MovementTypeFixedPrizePayout
		if rolldown {
			mt = entities.MovementTypeRolldownPayout
		} else if counts[entities.TierJackpot] > 0 {
			mt = entities.MovementTypeJackpotPayout
		}
		if err := record(mt, -outcome.JackpotPaid, -outcome.ReservePaid, 0, map[string]interface{}{
			"total_distributed": outcome.TotalDistributed,
			"prize_per_winner":  outcome.PrizePerWinner,
			"winner_counts":     counts,
			"scale_bps":         outcome.ScaleBps,
		}); err != nil {
			return err
		}
	}
	if outcome.InsuranceDrawdown > 0 {
		if err := record(entities.MovementTypeInsuranceDrawdown, 0, 0, -outcome.InsuranceDrawdown, map[string]interface{}{
			"drawdown": outcome.InsuranceDrawdown,
		}); err != nil {
			return err
		}
	}
	if outcome.Dust > 0 {
		if err := record(entities.MovementTypeSplitDust, -outcome.Dust, outcome.Dust, 0, map[string]interface{}{
			"dust": outcome.Dust,
		}); err != nil {
			return err
		}
	}
	if outcome.Reseeded {
		if err := record(entities.MovementTypeReseed, outcome.Jackpot, -outcome.Jackpot, 0, map[string]interface{}{
			"seed_amount": outcome.Jackpot,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Cancel clears a commit whose reveal never arrived. It only acts after
// the timeout window and never touches balances.
func (s *drawService) Cancel(ctx context.Context, game string) error {
	ledger, err := s.lockedLedger(ctx, game)
	if err != nil {
		return err
	}
	if ledger.State != entities.DrawStateCommitPending {
		return entities.ErrNoDrawInProgress
	}
	if ledger.CommitTimestamp == nil || s.now().UTC().Sub(*ledger.CommitTimestamp) < s.timings.CancelTimeout {
		return entities.ErrCancelTooEarly
	}

	ref := ""
	if ledger.RandomnessRef != nil {
		ref = *ledger.RandomnessRef
	}
	if err := ledger.ClearCommit(); err != nil {
		return err
	}
	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return fmt.Errorf("failed to update ledger: %w", err)
	}

	log.WithFields(log.Fields{
		"game":   game,
		"drawID": ledger.CurrentDrawID,
		"ref":    ref,
	}).Warn("stale randomness commit cancelled")

	if err := s.eventPublisher.Publish(events.DrawCancelledEvent{
		Game:          game,
		DrawID:        ledger.CurrentDrawID,
		RandomnessRef: ref,
	}); err != nil {
		log.WithError(err).Error("failed to publish draw cancelled event")
	}
	return nil
}

// GetStatus returns the ledger and, if a draw is revealed but not yet
// finalized, its record.
func (s *drawService) GetStatus(ctx context.Context, game string) (*interfaces.LedgerStatus, error) {
	ledger, err := s.ledgerRepo.GetByGame(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: no ledger for %q", entities.ErrUnknownGame, game)
	}

	status := &interfaces.LedgerStatus{Ledger: ledger}
	if ledger.State == entities.DrawStateRevealed {
		record, err := s.drawRepo.GetByDrawID(ctx, ledger.ID, ledger.CurrentDrawID)
		if err != nil {
			return nil, fmt.Errorf("failed to get draw record: %w", err)
		}
		status.CurrentDraw = record
	}
	return status, nil
}

// ListDraws returns recent draw records, newest first.
func (s *drawService) ListDraws(ctx context.Context, game string, limit int) ([]*entities.DrawRecord, error) {
	ledger, err := s.ledgerRepo.GetByGame(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: no ledger for %q", entities.ErrUnknownGame, game)
	}
	records, err := s.drawRepo.ListRecent(ctx, ledger.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %w", err)
	}
	return records, nil
}
