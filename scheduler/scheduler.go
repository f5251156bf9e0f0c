package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"drawhouse/application"
	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"
	"drawhouse/infrastructure"
)

// Scheduler drives the draw cycle without operator involvement: a cron
// schedule commits each game's next draw, and a poll loop reveals the
// randomness once the beacon resolves it. Stuck commits are cancelled
// once the timeout window passes.
type Scheduler struct {
	orchestrator *application.Orchestrator
	beacon       *infrastructure.BeaconClient
	cron         *cron.Cron
	pollInterval time.Duration
	stopChan     chan struct{}
}

// New creates a scheduler for every configured game
func New(orchestrator *application.Orchestrator, beacon *infrastructure.BeaconClient, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		beacon:       beacon,
		cron:         cron.New(),
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start registers the commit schedule and launches the reveal poller.
// Returns a cleanup function to stop everything gracefully.
func (s *Scheduler) Start(drawSchedule string) (func(), error) {
	for _, game := range s.orchestrator.Games() {
		game := game
		if _, err := s.cron.AddFunc(drawSchedule, func() {
			s.commitDraw(game)
		}); err != nil {
			return nil, err
		}
	}
	s.cron.Start()

	go s.pollLoop()

	log.WithFields(log.Fields{
		"schedule":     drawSchedule,
		"pollInterval": s.pollInterval,
	}).Info("Draw scheduler started")

	return func() {
		close(s.stopChan)
		ctx := s.cron.Stop()
		<-ctx.Done()
		log.Info("Draw scheduler stopped")
	}, nil
}

func (s *Scheduler) pollLoop() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, game := range s.orchestrator.Games() {
				s.tryReveal(game)
			}
		case <-s.stopChan:
			return
		}
	}
}

// commitDraw binds a fresh randomness request to the game's next draw
func (s *Scheduler) commitDraw(game string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	source, err := s.beacon.RequestRandomness(ctx)
	if err != nil {
		log.WithError(err).WithField("game", game).Error("Failed to request randomness for scheduled draw")
		return
	}
	currentSlot, err := s.beacon.CurrentSlot(ctx)
	if err != nil {
		log.WithError(err).WithField("game", game).Error("Failed to read beacon slot for scheduled draw")
		return
	}

	err = s.orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		_, err := svc.Commit(ctx, game, source, currentSlot)
		return err
	})
	if err != nil {
		if errors.Is(err, entities.ErrDrawInProgress) {
			log.WithField("game", game).Warn("Skipping scheduled commit, draw already in progress")
			return
		}
		log.WithError(err).WithField("game", game).Error("Scheduled commit failed")
		return
	}
	log.WithField("game", game).Info("Scheduled draw committed")
}

// tryReveal reveals a pending commit once the beacon resolves it, or
// cancels the commit when it has sat unrevealed past the timeout.
func (s *Scheduler) tryReveal(game string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	currentSlot, err := s.beacon.CurrentSlot(ctx)
	if err != nil {
		log.WithError(err).WithField("game", game).Error("Failed to read beacon slot")
		return
	}

	err = s.orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		status, err := svc.GetStatus(ctx, game)
		if err != nil {
			return err
		}
		if status.Ledger.State != entities.DrawStateCommitPending {
			return nil
		}

		source := s.beacon.Lookup(*status.Ledger.RandomnessRef)
		_, err = svc.Reveal(ctx, game, source, currentSlot)
		return err
	})
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, entities.ErrRandomnessNotResolved):
		// Beacon has not resolved yet, next tick retries
	case errors.Is(err, entities.ErrRandomnessNotFresh),
		errors.Is(err, entities.ErrRandomnessExpired),
		errors.Is(err, entities.ErrInvalidRandomnessProof):
		log.WithError(err).WithField("game", game).Warn("Commit unrevealable, attempting cancellation")
		s.tryCancel(game)
	default:
		log.WithError(err).WithField("game", game).Error("Reveal attempt failed")
	}
}

func (s *Scheduler) tryCancel(game string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.orchestrator.Execute(ctx, func(svc interfaces.DrawService) error {
		return svc.Cancel(ctx, game)
	})
	if err != nil {
		if errors.Is(err, entities.ErrCancelTooEarly) {
			return
		}
		log.WithError(err).WithField("game", game).Error("Cancel attempt failed")
		return
	}
	log.WithField("game", game).Info("Stuck commit cancelled")
}
