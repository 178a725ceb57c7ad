package bookings

import (
	"context"
	"log"
	"time"
)

// ExpiryWorker releases seats from pending bookings whose hold window has
// elapsed. State lives in the bookings table, so due holds are picked up again
// after a restart; the poll interval only bounds how late a release can fire.
type ExpiryWorker struct {
	service  Service
	interval time.Duration
	done     chan struct{}
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(service Service, interval time.Duration) *ExpiryWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ExpiryWorker{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start starts the background expiry loop
func (w *ExpiryWorker) Start(ctx context.Context) {
	log.Printf("Started booking expiry worker with %v interval", w.interval)

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		// Run immediately on startup to reclaim holds that came due while the
		// process was down
		w.releaseDue(ctx)

		for {
			select {
			case <-ticker.C:
				w.releaseDue(ctx)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background expiry loop
func (w *ExpiryWorker) Stop() {
	close(w.done)
	log.Println("Booking expiry worker stopped")
}

func (w *ExpiryWorker) releaseDue(ctx context.Context) {
	released, err := w.service.ReleaseExpiredHolds(ctx)
	if err != nil {
		log.Printf("Error releasing expired holds: %v", err)
		return
	}

	if released > 0 {
		log.Printf("Released %d expired seat holds", released)
	}
}
