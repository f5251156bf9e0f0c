package entities

// MovementType classifies a treasury fund movement for the audit trail.
type MovementType string

const (
	// Intake movements
	MovementTypeTicketSales MovementType = "ticket_sales"

	// Settlement movements
	MovementTypeJackpotPayout     MovementType = "jackpot_payout"
	MovementTypeFixedPrizePayout  MovementType = "fixed_prize_payout"
	MovementTypeRolldownPayout    MovementType = "rolldown_payout"
	MovementTypeInsuranceDrawdown MovementType = "insurance_drawdown"
	MovementTypeSplitDust         MovementType = "split_dust"
	MovementTypeReseed            MovementType = "reseed"
)

// IsPayout returns true if the movement pays prize money out of the
// treasury.
func (mt MovementType) IsPayout() bool {
	return mt == MovementTypeJackpotPayout ||
		mt == MovementTypeFixedPrizePayout ||
		mt == MovementTypeRolldownPayout
}

// IsInternal returns true for movements between treasury buckets that
// never leave the system.
func (mt MovementType) IsInternal() bool {
	return mt == MovementTypeSplitDust ||
		mt == MovementTypeReseed ||
		mt == MovementTypeInsuranceDrawdown
}

// String returns the string representation of the movement type.
func (mt MovementType) String() string {
	return string(mt)
}
