package paymentlinks

import (
	"context"
	"log"
	"time"
)

// SweepWorker expires shareable links past their deadline and releases the
// seats they still hold. Runs on a fixed interval independently of any user
// session.
type SweepWorker struct {
	service  Service
	interval time.Duration
	done     chan struct{}
}

// NewSweepWorker creates a new link sweep worker
func NewSweepWorker(service Service, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &SweepWorker{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start starts the background sweep loop
func (w *SweepWorker) Start(ctx context.Context) {
	log.Printf("Started payment link sweep worker with %v interval", w.interval)

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		// Catch up on links that expired while the process was down
		w.sweep(ctx)

		for {
			select {
			case <-ticker.C:
				w.sweep(ctx)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background sweep loop
func (w *SweepWorker) Stop() {
	close(w.done)
	log.Println("Payment link sweep worker stopped")
}

func (w *SweepWorker) sweep(ctx context.Context) {
	expired, err := w.service.ExpireDue(ctx)
	if err != nil {
		log.Printf("Error sweeping expired payment links: %v", err)
		return
	}

	if expired > 0 {
		log.Printf("Expired %d payment links", expired)
	}
}
