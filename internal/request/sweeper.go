package request

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically flips expired pending requests to failed. It is an
// optional tidy-up; settlement correctness does not depend on it because
// expiry is re-checked inside the settlement transaction.
type Sweeper struct {
	store    Store
	interval time.Duration
}

// NewSweeper creates a new expiry sweeper
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval}
}

// Run sweeps on the configured interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.FailExpired(ctx)
			if err != nil {
				log.Printf("request sweeper: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("request sweeper: expired %d pending requests", n)
			}
		}
	}
}
