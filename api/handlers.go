package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"
)

type salesRequest struct {
	Tickets     int64 `json:"tickets" binding:"required,gt=0"`
	GrossAmount int64 `json:"gross_amount" binding:"required,gt=0"`
}

type finalizeRequest struct {
	DrawID       int64   `json:"draw_id" binding:"required,gt=0"`
	WinnerCounts []int64 `json:"winner_counts" binding:"required"`
}

func (s *Server) getStatus(c *gin.Context) {
	game := c.Param("game")

	var status *interfaces.LedgerStatus
	err := s.orchestrator.Read(func(svc interfaces.DrawService) error {
		var err error
		status, err = svc.GetStatus(c.Request.Context(), game)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStatusResponse(status))
}

func (s *Server) listDraws(c *gin.Context) {
	game := c.Param("game")
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	var records []*entities.DrawRecord
	err := s.orchestrator.Read(func(svc interfaces.DrawService) error {
		var err error
		records, err = svc.ListDraws(c.Request.Context(), game, limit)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, record := range records {
		out = append(out, toDrawResponse(record))
	}
	c.JSON(http.StatusOK, gin.H{"draws": out})
}

func (s *Server) recordSales(c *gin.Context) {
	game := c.Param("game")

	var req salesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var result *interfaces.SalesResult
	err := s.orchestrator.Execute(c.Request.Context(), func(svc interfaces.DrawService) error {
		var err error
		result, err = svc.RecordTicketSales(c.Request.Context(), game, req.Tickets, req.GrossAmount)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":         game,
		"draw_id":      result.Ledger.CurrentDrawID,
		"tickets":      result.Tickets,
		"gross_amount": result.GrossAmount,
		"fee_amount":   result.FeeAmount,
		"net_amount":   result.NetAmount,
		"jackpot":      result.Ledger.JackpotBalance,
	})
}

func (s *Server) commit(c *gin.Context) {
	game := c.Param("game")
	ctx := c.Request.Context()

	source, err := s.beacon.RequestRandomness(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	currentSlot, err := s.beacon.CurrentSlot(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var ledger *entities.LotteryLedger
	err = s.orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		var err error
		ledger, err = svc.Commit(ctx, game, source, currentSlot)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":           game,
		"draw_id":        ledger.CurrentDrawID,
		"state":          ledger.State,
		"randomness_ref": ledger.RandomnessRef,
		"commit_slot":    ledger.CommitSlot,
	})
}

func (s *Server) reveal(c *gin.Context) {
	game := c.Param("game")
	ctx := c.Request.Context()

	currentSlot, err := s.beacon.CurrentSlot(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var result *interfaces.RevealResult
	err = s.orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		status, err := svc.GetStatus(ctx, game)
		if err != nil {
			return err
		}
		if status.Ledger.RandomnessRef == nil {
			return entities.ErrNoDrawInProgress
		}
		source := s.beacon.Lookup(*status.Ledger.RandomnessRef)
		result, err = svc.Reveal(ctx, game, source, currentSlot)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":            game,
		"draw_id":         result.Record.DrawID,
		"winning_numbers": result.Record.WinningNumbers,
		"rolldown":        result.Record.WasRolldown,
		"probability_bps": result.ProbabilityBps,
	})
}

func (s *Server) finalize(c *gin.Context) {
	game := c.Param("game")

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var result *interfaces.SettlementResult
	err := s.orchestrator.Execute(c.Request.Context(), func(svc interfaces.DrawService) error {
		var err error
		result, err = svc.Finalize(c.Request.Context(), game, req.DrawID, entities.WinnerCounts(req.WinnerCounts))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":               game,
		"draw_id":            result.Record.DrawID,
		"winner_counts":      result.Record.WinnerCounts,
		"prize_per_winner":   result.PrizePerWinner,
		"total_distributed":  result.TotalDistributed,
		"scale_bps":          result.ScaleBps,
		"insurance_drawdown": result.InsuranceDrawdown,
		"dust":               result.Dust,
		"reseeded":           result.Reseeded,
		"jackpot":            result.Ledger.JackpotBalance,
		"reserve":            result.Ledger.ReserveBalance,
		"insurance":          result.Ledger.InsuranceBalance,
		"next_draw_id":       result.Ledger.CurrentDrawID,
	})
}

func (s *Server) cancel(c *gin.Context) {
	game := c.Param("game")

	err := s.orchestrator.Execute(c.Request.Context(), func(svc interfaces.DrawService) error {
		return svc.Cancel(c.Request.Context(), game)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "state": entities.DrawStateIdle})
}

func toStatusResponse(status *interfaces.LedgerStatus) gin.H {
	ledger := status.Ledger
	resp := gin.H{
		"game":            ledger.Game,
		"current_draw_id": ledger.CurrentDrawID,
		"state":           ledger.State,
		"jackpot":         ledger.JackpotBalance,
		"reserve":         ledger.ReserveBalance,
		"insurance":       ledger.InsuranceBalance,
		"house_fee_bps":   ledger.HouseFeeBps,
		"rolldown_active": ledger.RolldownActive,
		"total_tickets":   ledger.TotalTickets,
	}
	if ledger.RandomnessRef != nil {
		resp["randomness_ref"] = *ledger.RandomnessRef
		resp["commit_slot"] = *ledger.CommitSlot
	}
	if status.CurrentDraw != nil {
		resp["current_draw"] = toDrawResponse(status.CurrentDraw)
	}
	return resp
}

func toDrawResponse(record *entities.DrawRecord) gin.H {
	resp := gin.H{
		"draw_id":         record.DrawID,
		"winning_numbers": record.WinningNumbers,
		"total_tickets":   record.TotalTickets,
		"rolldown":        record.WasRolldown,
		"finalized":       record.IsFinalized(),
		"revealed_at":     record.RevealedAt,
	}
	if record.IsFinalized() {
		resp["winner_counts"] = record.WinnerCounts
		resp["prize_per_winner"] = record.PrizePerWinner
		resp["total_distributed"] = record.TotalDistributed
		resp["finalized_at"] = record.FinalizedAt
	}
	return resp
}

// respondError maps domain errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entities.ErrUnknownGame):
		status = http.StatusNotFound
	case errors.Is(err, entities.ErrDrawInProgress),
		errors.Is(err, entities.ErrNoDrawInProgress),
		errors.Is(err, entities.ErrDrawNotRevealed),
		errors.Is(err, entities.ErrDrawFinalized),
		errors.Is(err, entities.ErrSalesClosed),
		errors.Is(err, entities.ErrCancelTooEarly):
		status = http.StatusConflict
	case errors.Is(err, entities.ErrInvalidWinnerCounts),
		errors.Is(err, entities.ErrInvalidGameParams):
		status = http.StatusBadRequest
	case errors.Is(err, entities.ErrRandomnessAlreadyRevealed),
		errors.Is(err, entities.ErrInvalidRandomnessAccount),
		errors.Is(err, entities.ErrInvalidRandomnessProof),
		errors.Is(err, entities.ErrRandomnessExpired),
		errors.Is(err, entities.ErrRandomnessNotFresh),
		errors.Is(err, entities.ErrRandomnessNotResolved):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
