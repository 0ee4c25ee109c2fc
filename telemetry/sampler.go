package telemetry

import (
	"context"
	"fmt"
	"time"
)

// Stats is a point-in-time snapshot of a TimedUC instance's internal
// bookkeeping, sampled by Sampler and published as a single line of
// space-separated "key=value" pairs, with no trailing newline.
type Stats struct {
	NumCopies uint64
	CopyTime  time.Duration
}

// Source is satisfied by uc.TimedUC[S, R] for any S, R.
type Source interface {
	NumCopies() uint64
	CopyTime() time.Duration
}

// Sampler periodically reads a Source's stats and publishes them through a
// Producer, decoupling the wait-free hot path from any observability
// backpressure.
type Sampler struct {
	src      Source
	producer *Producer
	key      []byte
	interval time.Duration
}

// NewSampler builds a Sampler publishing src's stats under key every
// interval.
func NewSampler(src Source, producer *Producer, key string, interval time.Duration) *Sampler {
	return &Sampler{src: src, producer: producer, key: []byte(key), interval: interval}
}

// Run blocks, sampling and publishing until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := Stats{NumCopies: s.src.NumCopies(), CopyTime: s.src.CopyTime()}
			line := fmt.Appendf(nil, "num_copies=%d copy_time_ns=%d", st.NumCopies, st.CopyTime.Nanoseconds())
			_ = s.producer.Send(ctx, s.key, line)
		}
	}
}
