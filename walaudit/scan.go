package walaudit

import (
	"encoding/binary"
	"io"
	"os"
)

// maxTicketInSegment scans a segment and returns the largest ticket found.
// Used only for snapshot-driven truncation.
func maxTicketInSegment(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var max uint64
	for {
		// Header: [kind:1][ticket:8][time:8][len:4]
		header := make([]byte, 21)
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return max, nil
			}
			return max, err
		}
		ticket := binary.BigEndian.Uint64(header[1:9])
		if ticket > max {
			max = ticket
		}
		argsLen := binary.BigEndian.Uint32(header[17:21])
		if _, err := f.Seek(int64(argsLen+4), io.SeekCurrent); err != nil {
			return max, err
		}
	}
}
