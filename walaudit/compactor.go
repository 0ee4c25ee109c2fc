package walaudit

import (
	"os"

	"cx/infra/memory"
)

// segmentRemover adapts a plain file-deletion to memory.ReclaimablePool,
// so infra/memory's epoch-based RCU reclaimer can be applied to retired
// segment files instead of pooled values.
type segmentRemover struct{}

func (segmentRemover) PutAny(v any) {
	if path, ok := v.(string); ok {
		_ = os.Remove(path)
	}
}

// Compactor reclaims fully-truncated segment files once no in-flight
// Replay is still scanning the directory. TruncateBefore routes through a
// Compactor, when one is attached to a WAL, instead of deleting segment
// files immediately out from under a concurrent Replay.
type Compactor struct {
	ring    *memory.RetireRing
	readers *memory.ReaderEpoch
	remover segmentRemover
}

// NewCompactor returns a Compactor with room for up to 256 retired
// segments awaiting reclamation.
func NewCompactor() *Compactor {
	return &Compactor{ring: memory.NewRetireRing(256), readers: &memory.ReaderEpoch{}}
}

// BeginScan marks the calling goroutine as having an in-flight scan over
// the WAL's segment files; Tick will not reclaim anything retired before
// the matching EndScan.
func (c *Compactor) BeginScan() { c.readers.Enter() }

// EndScan marks the scan complete.
func (c *Compactor) EndScan() { c.readers.Exit() }

// RetireSegment marks path as safe to delete once no scan predates it.
func (c *Compactor) RetireSegment(path string) bool {
	return c.ring.Enqueue(path)
}

// Tick advances the reclamation epoch and deletes any segment no longer
// possibly visible to an in-flight scan. Call this periodically from a
// background goroutine.
func (c *Compactor) Tick() {
	memory.AdvanceEpochAndReclaim(c.ring, c.remover, c.readers)
}
