package telemetry

import (
	"context"
	"testing"
	"time"
)

type fakeSource struct {
	numCopies uint64
	copyTime  time.Duration
}

func (f *fakeSource) NumCopies() uint64       { return f.numCopies }
func (f *fakeSource) CopyTime() time.Duration { return f.copyTime }

func TestSamplerRunStopsOnContextCancel(t *testing.T) {
	src := &fakeSource{numCopies: 7, copyTime: 3 * time.Millisecond}
	producer := NewProducer([]string{"127.0.0.1:0"}, "test-topic")
	defer producer.Close()

	s := NewSampler(src, producer, "test", 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
