package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartSettlementSweeper starts a background worker that periodically settles
// bets whose voting window has closed, so settlement does not depend on a
// judge showing up after expiry. Returns a function that stops the worker.
func StartSettlementSweeper(ctx context.Context, judging JudgingService, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	sweep := func() {
		settled, err := judging.SettleExpired(ctx)
		if err != nil {
			log.WithError(err).Error("Settlement sweep failed")
			return
		}
		if settled > 0 {
			log.WithField("settled", settled).Info("Settlement sweep completed")
		}
	}

	go func() {
		log.Info("Settlement sweeper started")

		// Run immediately on startup to catch bets that expired while
		// the process was down
		sweep()

		for {
			select {
			case <-ctx.Done():
				log.Info("Settlement sweeper shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Settlement sweeper shutting down (stop requested)")
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
