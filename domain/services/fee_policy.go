package services

import "drawhouse/domain/entities"

// FeeBps returns the house fee rate for the current jackpot level.
// During an active rolldown the flat rolldown fee applies; otherwise
// the first tier whose threshold exceeds the jackpot wins, with the
// last table entry as the catch-all ceiling. Pure and total.
func FeeBps(params *entities.GameParams, jackpotBalance int64, rolldownActive bool) int64 {
	if rolldownActive {
		return params.RolldownFeeBps
	}
	for _, tier := range params.FeeTiers {
		if jackpotBalance < tier.Threshold {
			return tier.FeeBps
		}
	}
	return params.FeeTiers[len(params.FeeTiers)-1].FeeBps
}
