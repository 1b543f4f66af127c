// Package exit implements the outbox half of the write-ahead log: a
// durable record of popped events awaiting broadcast to an external
// sink, backed by Pebble rather than the flat segment files entry
// uses, since the outbox needs point lookups and state scans rather
// than pure sequential replay.
package exit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// State is where a popped event sits in the broadcast pipeline.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Record is one outbox entry.
type Record struct {
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) < 13 {
		return Record{}, errors.New("invalid exit record length")
	}
	return Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte{}, b[13:]...),
	}, nil
}

// WAL is the Pebble-backed outbox.
type WAL struct {
	db *pebble.DB
}

// Open opens (creating if necessary) an outbox database at dir.
func Open(dir string) (*WAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // durability of the outbox itself matters
	})
	if err != nil {
		return nil, errors.Wrap(err, "open exit wal")
	}
	return &WAL{db: db}, nil
}

// Close closes the underlying database.
func (w *WAL) Close() error {
	return w.db.Close()
}

// PutNew inserts a new outbox entry in state NEW.
func (w *WAL) PutNew(seq uint64, payload []byte) error {
	rec := Record{State: StateNew, Payload: payload}
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// MarkSent transitions seq to SENT, incrementing its retry count.
func (w *WAL) MarkSent(seq uint64) error {
	return w.updateState(seq, StateSent)
}

// MarkAcked transitions seq to ACKED.
func (w *WAL) MarkAcked(seq uint64) error {
	return w.updateState(seq, StateAcked)
}

// MarkFailed transitions seq to FAILED.
func (w *WAL) MarkFailed(seq uint64) error {
	return w.updateState(seq, StateFailed)
}

func (w *WAL) updateState(seq uint64, state State) error {
	rec, err := w.Get(seq)
	if err != nil {
		return errors.Wrapf(err, "update state for seq %d", seq)
	}
	rec.State = state
	rec.Retries++
	rec.LastAttempt = time.Now().UnixNano()
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// Delete removes an ACKED record during cleanup.
func (w *WAL) Delete(seq uint64) error {
	return w.db.Delete(keyFor(seq), pebble.Sync)
}

// Get returns the current record for seq.
func (w *WAL) Get(seq uint64) (Record, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if err != nil {
		return Record{}, errors.Wrapf(err, "get seq %d", seq)
	}
	defer closer.Close()
	return decodeRecord(val)
}

// ScanByState iterates every record in the given state in sequence
// order, stopping and returning the first error fn reports.
func (w *WAL) ScanByState(state State, fn func(seq uint64, rec Record) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("seq/"),
		UpperBound: []byte("seq/~"),
	})
	if err != nil {
		return errors.Wrap(err, "scan exit wal")
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(seq, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncateAckedUpTo deletes every ACKED record with seq <= upTo.
func (w *WAL) TruncateAckedUpTo(upTo uint64) error {
	return w.ScanByState(StateAcked, func(seq uint64, _ Record) error {
		if seq > upTo {
			return nil
		}
		return w.Delete(seq)
	})
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("seq/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("seq/"))), "%d", &id)
	return id, err
}
