package interfaces

import (
	"context"

	"drawhouse/domain/entities"
)

// DrawService orchestrates the full draw cycle for every configured
// game: ticket-sale intake, randomness commit and reveal, settlement,
// and the timeout recovery path. Each call runs inside one transaction
// supplied by the caller's unit of work; a failed validation aborts the
// whole operation with zero side effects.
type DrawService interface {
	// RecordTicketSales folds a sales batch into the treasury. Only
	// legal while the ledger is idle; sales close at commit.
	RecordTicketSales(ctx context.Context, game string, tickets, grossAmount int64) (*SalesResult, error)

	// Commit binds an external randomness request to the next draw.
	Commit(ctx context.Context, game string, source RandomnessSource, currentSlot int64) (*entities.LotteryLedger, error)

	// Reveal verifies the committed randomness, generates the winning
	// numbers, and takes the rolldown decision.
	Reveal(ctx context.Context, game string, source RandomnessSource, currentSlot int64) (*RevealResult, error)

	// Finalize settles a revealed draw from externally reported winner
	// counts. Exactly-once: a second call for the same draw errors.
	Finalize(ctx context.Context, game string, drawID int64, counts entities.WinnerCounts) (*SettlementResult, error)

	// Cancel clears a stuck commit after the timeout window. The sole
	// recovery path when a reveal never arrives.
	Cancel(ctx context.Context, game string) error

	// GetStatus returns the ledger and, when present, the revealed but
	// unfinalized draw record.
	GetStatus(ctx context.Context, game string) (*LedgerStatus, error)

	// ListDraws returns recent draw records, newest first.
	ListDraws(ctx context.Context, game string, limit int) ([]*entities.DrawRecord, error)
}

// SalesResult reports a ticket-sale intake
type SalesResult struct {
	Ledger      *entities.LotteryLedger
	Tickets     int64
	GrossAmount int64
	FeeAmount   int64
	NetAmount   int64
}

// RevealResult reports a successful reveal
type RevealResult struct {
	Record         *entities.DrawRecord
	ProbabilityBps int64
}

// SettlementResult reports a finalized draw
type SettlementResult struct {
	Record            *entities.DrawRecord
	Ledger            *entities.LotteryLedger
	PrizePerWinner    []int64
	TotalDistributed  int64
	ScaleBps          int64
	InsuranceDrawdown int64
	Dust              int64
	Reseeded          bool
}

// LedgerStatus is the ops view of one game
type LedgerStatus struct {
	Ledger      *entities.LotteryLedger
	CurrentDraw *entities.DrawRecord // nil unless revealed and unfinalized
}
