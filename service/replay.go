package service

import (
	"github.com/cockroachdb/errors"

	"github.com/FlovinTue/concurrent-sorted-list/internal/csl"
	"github.com/FlovinTue/concurrent-sorted-list/internal/heap"
	"github.com/FlovinTue/concurrent-sorted-list/internal/sequence"
	entrywal "github.com/FlovinTue/concurrent-sorted-list/wal/entry"
)

// ReplayFromWAL rebuilds list from walDir's entry WAL by re-executing
// every logged mutation in sequence order. It must run before the
// service accepts traffic.
//
// afterSeq is the sequence number of the last snapshot already loaded
// into list (0 if none was loaded). Truncation only removes whole
// segments entirely at or below a snapshotted sequence (see
// wal/entry's TruncateBefore), so the segment straddling the boundary
// can still carry records at or below afterSeq; replaying those would
// re-apply mutations the snapshot already reflects, inserting
// duplicates the list never had. Every record with Seq <= afterSeq is
// skipped for exactly that reason.
//
// Segments are replayed file by file; a crash mid-rotation can
// occasionally leave one segment's tail interleaved with the next
// segment's head out of sequence order. Records are routed through a
// sequential heap keyed by sequence number before being re-applied, so
// replay always executes them in the order they actually committed
// regardless of which segment they ended up in.
func ReplayFromWAL[K csl.Key, V any](
	walDir string,
	list *csl.List[K, V],
	codec Codec[K, V],
	seqGen *sequence.Sequencer,
	afterSeq uint64,
) error {
	type op struct {
		kind  entrywal.Op
		key   K
		value V
	}

	reorder := heap.New[uint64, op](func(a, b uint64) bool { return a < b })

	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= afterSeq {
			return nil
		}
		switch rec.Op {
		case entrywal.OpInsert:
			key, value, err := decodeKV(codec, rec.Data)
			if err != nil {
				return errors.Wrapf(err, "decode insert record at seq %d", rec.Seq)
			}
			reorder.Push(rec.Seq, op{kind: entrywal.OpInsert, key: key, value: value})
		case entrywal.OpPop:
			reorder.Push(rec.Seq, op{kind: entrywal.OpPop})
		case entrywal.OpCompareTryPop:
			key, err := codec.DecodeKey(rec.Data)
			if err != nil {
				return errors.Wrapf(err, "decode compare-pop record at seq %d", rec.Seq)
			}
			reorder.Push(rec.Seq, op{kind: entrywal.OpCompareTryPop, key: key})
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "replay entry wal")
	}

	for reorder.Size() > 0 {
		_, o, ok := reorder.TryPop()
		if !ok {
			break
		}
		switch o.kind {
		case entrywal.OpInsert:
			list.Insert(o.key, o.value)
		case entrywal.OpPop:
			list.TryPop()
		case entrywal.OpCompareTryPop:
			var discard V
			list.CompareTryPop(o.key, &discard)
		}
	}

	seqGen.Reset(lastSeq)
	return nil
}
