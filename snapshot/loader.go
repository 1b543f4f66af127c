package snapshot

import (
	"encoding/gob"
	"os"
)

// Load reads the snapshot at path, returning its sequence number and
// entries. A missing file is not an error — snapshots are optional;
// callers fall back to a full entry-WAL replay when Seq is 0 and err
// is nil.
func Load(path string) (uint64, []Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, nil, err
	}
	return s.Seq, s.Entries, nil
}
