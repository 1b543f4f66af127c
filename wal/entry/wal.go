package entry

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config configures an entry WAL instance.
type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
}

func (c Config) withDefaults() Config {
	if c.SegmentSize == 0 {
		c.SegmentSize = 2 * 1024 * 1024
	}
	if c.SegmentDuration == 0 {
		c.SegmentDuration = 5 * time.Minute
	}
	return c
}

// WAL is a segment-rotating append-only log of mutation intents.
type WAL struct {
	dir        string
	segSize    int64
	current    *segment
	segIndex   int
	lastRotate time.Time
}

// Open opens (creating if necessary) a WAL rooted at cfg.Dir, resuming
// at the highest-indexed existing segment.
func Open(cfg Config) (*WAL, error) {
	cfg = cfg.withDefaults()
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	index := latestSegmentIndex(cfg.Dir)
	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		current:    seg,
		segIndex:   index,
		lastRotate: time.Now(),
	}, nil
}

func latestSegmentIndex(dir string) int {
	files, _ := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	max := 0
	for _, f := range files {
		var idx int
		if _, err := fmt.Sscanf(filepath.Base(f), "segment-%06d.wal", &idx); err == nil && idx > max {
			max = idx
		}
	}
	return max
}

// Append writes r to the current segment, framed and checksummed, and
// rotates to a new segment if the size threshold is crossed.
func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))

	// Frame: [op:1][seq:8][time:8][len:4][payload][crc:4]
	buf := make([]byte, 1+8+8+4+payloadLen+4)

	buf[0] = byte(r.Op)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[21:], r.Data)

	crc := checksum(buf[:21+payloadLen])
	binary.BigEndian.PutUint32(buf[21+payloadLen:], crc)

	if err := w.current.append(buf); err != nil {
		return err
	}

	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

// Sync flushes the current segment to stable storage.
func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) rotate() error {
	if err := w.current.close(); err != nil {
		return err
	}
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}

	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// Close flushes and closes the current segment.
func (w *WAL) Close() error {
	syncErr := w.current.sync()
	if err := w.current.close(); err != nil {
		return err
	}
	return syncErr
}

// TruncateBefore deletes every segment whose highest sequence number
// is at most seq — called after a snapshot has durably captured
// everything up to that point.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := filepath.Glob(filepath.Join(w.dir, "segment-*.wal"))
	if err != nil {
		return err
	}

	for _, path := range files {
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq != 0 && maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}
