package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDrawCommitted  EventType = "draw_committed"
	EventTypeDrawRevealed   EventType = "draw_revealed"
	EventTypeDrawFinalized  EventType = "draw_finalized"
	EventTypeDrawCancelled  EventType = "draw_cancelled"
	EventTypeTicketSales    EventType = "ticket_sales"
	EventTypeLedgerMovement EventType = "ledger_movement"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DrawCommittedEvent marks a randomness request bound to a draw
type DrawCommittedEvent struct {
	Game          string
	DrawID        int64
	RandomnessRef string
	CommitSlot    int64
}

func (e DrawCommittedEvent) Type() EventType {
	return EventTypeDrawCommitted
}

// DrawRevealedEvent carries the generated winning numbers
type DrawRevealedEvent struct {
	Game           string
	DrawID         int64
	WinningNumbers []int64
	Rolldown       bool
	ProbabilityBps int64
}

func (e DrawRevealedEvent) Type() EventType {
	return EventTypeDrawRevealed
}

// DrawFinalizedEvent carries the settlement outcome
type DrawFinalizedEvent struct {
	Game             string
	DrawID           int64
	WinnerCounts     []int64
	PrizePerWinner   []int64
	TotalDistributed int64
	Rolldown         bool
	Reseeded         bool
}

func (e DrawFinalizedEvent) Type() EventType {
	return EventTypeDrawFinalized
}

// DrawCancelledEvent marks a stuck commit cleared by the timeout path
type DrawCancelledEvent struct {
	Game          string
	DrawID        int64
	RandomnessRef string
}

func (e DrawCancelledEvent) Type() EventType {
	return EventTypeDrawCancelled
}

// TicketSalesEvent records a sales batch folded into the treasury
type TicketSalesEvent struct {
	Game        string
	DrawID      int64
	Tickets     int64
	GrossAmount int64
	FeeAmount   int64
}

func (e TicketSalesEvent) Type() EventType {
	return EventTypeTicketSales
}

// LedgerMovementEvent mirrors one audit-trail movement row
type LedgerMovementEvent struct {
	Game           string
	DrawID         int64
	MovementType   string
	JackpotDelta   int64
	ReserveDelta   int64
	InsuranceDelta int64
}

func (e LedgerMovementEvent) Type() EventType {
	return EventTypeLedgerMovement
}
