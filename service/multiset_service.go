package service

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/FlovinTue/concurrent-sorted-list/internal/csl"
	"github.com/FlovinTue/concurrent-sorted-list/internal/metrics"
	"github.com/FlovinTue/concurrent-sorted-list/internal/sequence"
	entrywal "github.com/FlovinTue/concurrent-sorted-list/wal/entry"
	exitwal "github.com/FlovinTue/concurrent-sorted-list/wal/exit"
)

// MultisetService is the sole write entry point into a csl.List: every
// insert is logged to the entry WAL before it reaches the list, and
// every successful pop is logged to the entry WAL and to the exit WAL
// (the outbox) right after it leaves the list and before it is
// reported to the caller.
type MultisetService[K csl.Key, V any] struct {
	list     *csl.List[K, V]
	entryWAL *entrywal.WAL
	exitWAL  *exitwal.WAL
	seq      *sequence.Sequencer
	codec    Codec[K, V]

	lastStats csl.Stats
}

// New wires a MultisetService around an already-constructed list and
// WAL pair. Use ReplayFromWAL beforehand to recover list state from a
// prior run's entry WAL.
func New[K csl.Key, V any](
	list *csl.List[K, V],
	entryWAL *entrywal.WAL,
	exitWAL *exitwal.WAL,
	seq *sequence.Sequencer,
	codec Codec[K, V],
) *MultisetService[K, V] {
	return &MultisetService[K, V]{
		list:     list,
		entryWAL: entryWAL,
		exitWAL:  exitWAL,
		seq:      seq,
		codec:    codec,
	}
}

// Insert logs the intent, then mutates the list. It returns an error
// only if the WAL append itself fails; the in-memory Insert cannot
// fail.
func (s *MultisetService[K, V]) Insert(key K, value V) (seq uint64, err error) {
	seq = s.seq.Next()

	payload := encodeKV(s.codec, key, value)
	if err := s.entryWAL.Append(entrywal.NewRecord(entrywal.OpInsert, seq, payload)); err != nil {
		return seq, errors.Wrap(err, "append insert intent")
	}

	s.list.Insert(key, value)
	return seq, nil
}

// TryPop removes and returns the current minimum, logging the removal
// to both WALs: the entry WAL (so replay does not resurrect an
// already-popped element) and the exit WAL (so the broadcaster can
// publish it at least once).
func (s *MultisetService[K, V]) TryPop() (key K, value V, ok bool, err error) {
	key, value, ok = s.list.TryPop()
	if !ok {
		metrics.AdmissionFailures.Inc()
		return key, value, false, nil
	}

	seq := s.seq.Next()
	if err := s.entryWAL.Append(entrywal.NewRecord(entrywal.OpPop, seq, encodeKV(s.codec, key, value))); err != nil {
		return key, value, true, errors.Wrap(err, "append pop intent")
	}
	if err := s.exitWAL.PutNew(seq, encodeKV(s.codec, key, value)); err != nil {
		return key, value, true, errors.Wrap(err, "record outbox entry")
	}
	return key, value, true, nil
}

// CompareTryPop removes the current minimum only if its key equals
// expected, with the same WAL bookkeeping as TryPop on success.
func (s *MultisetService[K, V]) CompareTryPop(expected K) (actual K, value V, ok bool, err error) {
	actual, ok = expected, false
	var out V
	actual, ok = s.list.CompareTryPop(expected, &out)
	if !ok {
		if actual == expected {
			metrics.AdmissionFailures.Inc()
		}
		return actual, value, false, nil
	}

	seq := s.seq.Next()
	if err := s.entryWAL.Append(entrywal.NewRecord(entrywal.OpCompareTryPop, seq, s.codec.EncodeKey(actual))); err != nil {
		return actual, out, true, errors.Wrap(err, "append compare-pop intent")
	}
	if err := s.exitWAL.PutNew(seq, encodeKV(s.codec, actual, out)); err != nil {
		return actual, out, true, errors.Wrap(err, "record outbox entry")
	}
	return actual, out, true, nil
}

// TryPeekTopKey returns the key of the current minimum without
// removing it.
func (s *MultisetService[K, V]) TryPeekTopKey() (K, bool) {
	return s.list.TryPeekTopKey()
}

// Size returns the advisory current element count.
func (s *MultisetService[K, V]) Size() uint64 {
	return s.list.Size()
}

// AdvanceEpoch drives reclamation of physically-removed nodes, then
// syncs the core's internal counters into the process's Prometheus
// collectors. The core itself never imports a metrics library — this
// is the seam that reads csl.Stats and reports it, run from the same
// ticker that drives reclamation so neither needs its own goroutine.
func (s *MultisetService[K, V]) AdvanceEpoch() {
	s.list.AdvanceEpoch()
	s.syncStats()
}

// syncStats reports the delta since the last call for each monotonic
// counter (Stats only ever grows within a process lifetime) and sets
// the current value for the one gauge.
func (s *MultisetService[K, V]) syncStats() {
	cur := s.list.Stats()

	metrics.InsertRetries.Add(float64(cur.InsertRetries - s.lastStats.InsertRetries))
	metrics.PopMisses.Add(float64(cur.PopMisses - s.lastStats.PopMisses))
	metrics.PoolBlockAllocations.Add(float64(cur.PoolBlockAllocations - s.lastStats.PoolBlockAllocations))
	metrics.RetireBacklog.Set(float64(cur.RetireBacklog))

	s.lastStats = cur
}

// Snapshot drains the entire list into a holding slice and reinserts
// every entry, returning an encoded copy of what was drained. Because
// the core list has no iteration API (see SPEC_FULL.md's Non-goals),
// this is the only way to observe its full contents, and it is
// explicitly not atomic: a concurrent Insert or pop can interleave
// with the drain or the reinsertion pass. Snapshots are therefore a
// best-effort, eventually-consistent view, suitable for periodic
// durable backup but not for any caller requiring linearisability.
func (s *MultisetService[K, V]) Snapshot() []snapshotEntry[K, V] {
	type held struct {
		key   K
		value V
	}
	var drained []held
	for {
		key, value, ok := s.list.TryPop()
		if !ok {
			break
		}
		drained = append(drained, held{key: key, value: value})
	}

	out := make([]snapshotEntry[K, V], len(drained))
	for i, h := range drained {
		out[i] = snapshotEntry[K, V]{key: h.key, value: h.value}
		s.list.Insert(h.key, h.value)
	}
	return out
}

// snapshotEntry is an encodable (key, value) pair; EncodeKey/
// EncodeValue are applied lazily via the service's codec so this type
// stays generic.
type snapshotEntry[K csl.Key, V any] struct {
	key   K
	value V
}

func encodeKV[K csl.Key, V any](codec Codec[K, V], key K, value V) []byte {
	k := codec.EncodeKey(key)
	v := codec.EncodeValue(value)
	buf := make([]byte, 4+len(k)+len(v))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(k)))
	copy(buf[4:], k)
	copy(buf[4+len(k):], v)
	return buf
}

func decodeKV[K csl.Key, V any](codec Codec[K, V], payload []byte) (K, V, error) {
	var zeroK K
	var zeroV V
	if len(payload) < 4 {
		return zeroK, zeroV, errors.New("malformed kv payload")
	}
	klen := binary.BigEndian.Uint32(payload[:4])
	if uint32(len(payload)) < 4+klen {
		return zeroK, zeroV, errors.New("malformed kv payload: key length overruns payload")
	}
	key, err := codec.DecodeKey(payload[4 : 4+klen])
	if err != nil {
		return zeroK, zeroV, errors.Wrap(err, "decode key")
	}
	value, err := codec.DecodeValue(payload[4+klen:])
	if err != nil {
		return zeroK, zeroV, errors.Wrap(err, "decode value")
	}
	return key, value, nil
}
