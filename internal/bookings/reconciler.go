package bookings

import (
	"context"
	"log"
	"time"
)

// JobProcessor handles background jobs for booking operations
type JobProcessor struct {
	service Service
	config  *JobConfig
	done    chan struct{}
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	ReconcileInterval time.Duration
	StuckAfter        time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		ReconcileInterval: 5 * time.Minute,  // Re-check abandoned checkouts every 5 minutes
		StuckAfter:        15 * time.Minute, // A callback this late is not coming
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		service: service,
		config:  config,
		done:    make(chan struct{}),
	}
}

// Start starts all background jobs
func (jp *JobProcessor) Start(ctx context.Context) {
	log.Println("Starting booking background jobs...")

	go jp.startPaymentReconciler(ctx)

	log.Println("Booking background jobs started")
}

// Stop stops all background jobs
func (jp *JobProcessor) Stop() {
	log.Println("Stopping booking background jobs...")
	close(jp.done)
	log.Println("Booking background jobs stopped")
}

// startPaymentReconciler periodically settles bookings whose payment
// callback never arrived
func (jp *JobProcessor) startPaymentReconciler(ctx context.Context) {
	ticker := time.NewTicker(jp.config.ReconcileInterval)
	defer ticker.Stop()

	log.Printf("Started payment reconciler with %v interval", jp.config.ReconcileInterval)

	for {
		select {
		case <-ticker.C:
			jp.reconcilePayments(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// reconcilePayments processes stuck pending payments
func (jp *JobProcessor) reconcilePayments(ctx context.Context) {
	settled, err := jp.service.ReconcilePendingPayments(ctx, jp.config.StuckAfter)
	if err != nil {
		log.Printf("Error reconciling pending payments: %v", err)
		return
	}

	if settled > 0 {
		log.Printf("Reconciled %d pending payments", settled)
	}
}

// GetJobStatus returns the status of background jobs
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	return map[string]interface{}{
		"reconcile_interval": jp.config.ReconcileInterval.String(),
		"stuck_after":        jp.config.StuckAfter.String(),
		"status":             "running",
	}
}
