package service

import (
	"context"
	"log"
	"time"
)

// StartSnapshotJob periodically checkpoints the book and truncates the
// audit log, stopping when ctx is cancelled.
func (s *OrderService) StartSnapshotJob(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.Checkpoint(); err != nil {
					log.Printf("service: checkpoint failed: %v", err)
				}
			}
		}
	}()
}
