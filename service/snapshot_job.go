package service

import (
	"log"
	"time"

	"github.com/FlovinTue/concurrent-sorted-list/internal/csl"
	"github.com/FlovinTue/concurrent-sorted-list/snapshot"
)

// StartSnapshotJob launches a background goroutine that periodically
// dumps the service's contents to dir, then truncates both WALs up to
// the snapshotted sequence number. It runs until ctx-style cancellation
// is wired in by the caller; stop is a function the caller can invoke
// to end the loop (mirroring the ticker-goroutine shape the rest of
// this codebase uses for background jobs).
func (s *MultisetService[K, V]) StartSnapshotJob(dir string, interval time.Duration) (stop func()) {
	w := &snapshot.Writer{Dir: dir}
	done := make(chan struct{})

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-done:
				return
			case <-t.C:
				s.runSnapshot(w)
			}
		}
	}()

	return func() { close(done) }
}

func (s *MultisetService[K, V]) runSnapshot(w *snapshot.Writer) {
	seq := s.seq.Current()
	entries := s.Snapshot()

	encoded := make([]snapshot.Entry, len(entries))
	for i, e := range entries {
		encoded[i] = snapshot.Entry{
			Key:   s.codec.EncodeKey(e.key),
			Value: s.codec.EncodeValue(e.value),
		}
	}

	if err := w.Write(seq, encoded); err != nil {
		log.Printf("[snapshot] write failed at seq %d: %v", seq, err)
		return
	}

	if err := s.entryWAL.TruncateBefore(seq); err != nil {
		log.Printf("[snapshot] entry wal truncate failed: %v", err)
	}
	if err := s.exitWAL.TruncateAckedUpTo(seq); err != nil {
		log.Printf("[snapshot] exit wal truncate failed: %v", err)
	}
}

// LoadSnapshot restores list contents from a prior snapshot at path,
// returning the snapshot's sequence number (0 if none exists).
func LoadSnapshot[K csl.Key, V any](path string, list *csl.List[K, V], codec Codec[K, V]) (uint64, error) {
	seq, entries, err := snapshot.Load(path)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		key, err := codec.DecodeKey(e.Key)
		if err != nil {
			return seq, err
		}
		value, err := codec.DecodeValue(e.Value)
		if err != nil {
			return seq, err
		}
		list.Insert(key, value)
	}
	return seq, nil
}
