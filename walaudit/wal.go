package walaudit

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"
)

// Config controls segment rotation policy.
type Config struct {
	Dir         string
	SegmentSize int64
}

// WAL is an append-only, segmented, checksummed audit log.
type WAL struct {
	dir        string
	segSize    int64
	current    *segment
	segIndex   int
	lastRotate time.Time
	compactor  *Compactor
}

// AttachCompactor routes future TruncateBefore deletions through c instead
// of removing segment files immediately, so a concurrent Replay scanning
// the directory never has a file vanish out from under it.
func (w *WAL) AttachCompactor(c *Compactor) { w.compactor = c }

// Open creates or reopens the audit log at cfg.Dir.
func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	seg, err := openSegment(cfg.Dir, 0)
	if err != nil {
		return nil, err
	}
	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		current:    seg,
		lastRotate: time.Now(),
	}, nil
}

// Append durably writes r, framed as
// [kind:1][ticket:8][time:8][len:4][args][crc:4], rotating to a new
// segment if the current one has grown past SegmentSize.
func (w *WAL) Append(r *Record) error {
	argsLen := uint32(len(r.Args))
	buf := make([]byte, 1+8+8+4+argsLen+4)

	buf[0] = byte(r.Kind)
	binary.BigEndian.PutUint64(buf[1:9], r.Ticket)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], argsLen)
	copy(buf[21:], r.Args)

	crc := crc32sum(buf[:21+argsLen])
	binary.BigEndian.PutUint32(buf[21+argsLen:], crc)

	if err := w.current.append(buf); err != nil {
		return err
	}
	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *WAL) rotate() error {
	_ = w.current.close()
	w.segIndex++
	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// Close closes the active segment.
func (w *WAL) Close() error {
	return w.current.close()
}

// TruncateBefore removes any segment whose every record has a ticket at
// or below seq — called after a snapshot checkpoint makes those records
// unnecessary for replay.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := filepath.Glob(filepath.Join(w.dir, "segment-*.wal"))
	if err != nil {
		return err
	}
	for _, path := range files {
		maxTicket, err := maxTicketInSegment(path)
		if err != nil {
			continue
		}
		if maxTicket <= seq {
			if w.compactor != nil {
				w.compactor.RetireSegment(path)
				continue
			}
			_ = os.Remove(path)
		}
	}
	return nil
}
