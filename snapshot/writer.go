package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"
)

// Writer durably dumps a set of entries to dir/snapshot.bin.
type Writer struct {
	Dir string
}

// Write encodes entries as a Snapshot at the given sequence number.
func (w *Writer) Write(seq uint64, entries []Entry) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.Dir, "snapshot.bin")
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Entries: entries,
	}

	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	// Rename over any prior snapshot so a crash mid-write never leaves
	// a half-written snapshot.bin behind.
	return os.Rename(tmp, path)
}
