package service

import (
	"testing"

	"github.com/FlovinTue/concurrent-sorted-list/internal/csl"
	"github.com/FlovinTue/concurrent-sorted-list/internal/sequence"
	entrywal "github.com/FlovinTue/concurrent-sorted-list/wal/entry"
	exitwal "github.com/FlovinTue/concurrent-sorted-list/wal/exit"
)

func newTestService(t *testing.T) *MultisetService[uint64, []byte] {
	t.Helper()

	entryWAL, err := entrywal.Open(entrywal.Config{Dir: t.TempDir(), SegmentSize: 64 << 20})
	if err != nil {
		t.Fatalf("entrywal.Open() error = %v", err)
	}
	t.Cleanup(func() { entryWAL.Close() })

	exitWAL, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatalf("exitwal.Open() error = %v", err)
	}
	t.Cleanup(func() { exitWAL.Close() })

	list := csl.NewOrdered[uint64, []byte]()
	return New[uint64, []byte](list, entryWAL, exitWAL, sequence.New(0), Uint64BytesCodec{})
}

func TestServiceInsertAndTryPop(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Insert(5, []byte("five")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := svc.Insert(1, []byte("one")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	key, value, ok, err := svc.TryPop()
	if err != nil {
		t.Fatalf("TryPop() error = %v", err)
	}
	if !ok || key != 1 || string(value) != "one" {
		t.Fatalf("TryPop() = (%d, %q, %v), want (1, \"one\", true)", key, value, ok)
	}
}

func TestServiceTryPopWritesOutboxEntry(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Insert(1, []byte("one")); err != nil {
		t.Fatal(err)
	}

	seqBefore := svc.seq.Current()
	_, _, ok, err := svc.TryPop()
	if err != nil || !ok {
		t.Fatalf("TryPop() = (ok=%v, err=%v), want (true, nil)", ok, err)
	}

	var pending []uint64
	if err := svc.exitWAL.ScanByState(exitwal.StateNew, func(seq uint64, _ exitwal.Record) error {
		pending = append(pending, seq)
		return nil
	}); err != nil {
		t.Fatalf("ScanByState() error = %v", err)
	}
	if len(pending) != 1 || pending[0] <= seqBefore {
		t.Fatalf("expected exactly one new outbox entry after seq %d, got %v", seqBefore, pending)
	}
}

func TestServiceCompareTryPopMismatch(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Insert(5, []byte("five")); err != nil {
		t.Fatal(err)
	}

	actual, _, ok, err := svc.CompareTryPop(6)
	if err != nil {
		t.Fatalf("CompareTryPop() error = %v", err)
	}
	if ok {
		t.Fatal("CompareTryPop() with mismatched key reported success")
	}
	if actual != 5 {
		t.Errorf("CompareTryPop() actual = %d, want 5", actual)
	}
}

func TestServiceReplayRebuildsList(t *testing.T) {
	dir := t.TempDir()

	entryWAL, err := entrywal.Open(entrywal.Config{Dir: dir, SegmentSize: 64 << 20})
	if err != nil {
		t.Fatal(err)
	}
	exitWAL, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	list := csl.NewOrdered[uint64, []byte]()
	svc := New[uint64, []byte](list, entryWAL, exitWAL, sequence.New(0), Uint64BytesCodec{})

	for i := uint64(1); i <= 5; i++ {
		if _, err := svc.Insert(i, []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, ok, err := svc.TryPop(); err != nil || !ok {
		t.Fatalf("TryPop() = (ok=%v, err=%v)", ok, err)
	}
	if err := entryWAL.Close(); err != nil {
		t.Fatal(err)
	}
	exitWAL.Close()

	recoveredList := csl.NewOrdered[uint64, []byte]()
	seqGen := sequence.New(0)
	if err := ReplayFromWAL[uint64, []byte](dir, recoveredList, Uint64BytesCodec{}, seqGen, 0); err != nil {
		t.Fatalf("ReplayFromWAL() error = %v", err)
	}

	if recoveredList.Size() != 4 {
		t.Fatalf("recovered list size = %d, want 4 (5 inserted, 1 popped)", recoveredList.Size())
	}

	key, _, ok := recoveredList.TryPop()
	if !ok || key != 2 {
		t.Fatalf("recovered list minimum = %d, want 2 (1 was popped before the crash)", key)
	}
}

func TestReplayFromWALSkipsRecordsCoveredBySnapshot(t *testing.T) {
	dir := t.TempDir()

	entryWAL, err := entrywal.Open(entrywal.Config{Dir: dir, SegmentSize: 64 << 20})
	if err != nil {
		t.Fatal(err)
	}
	exitWAL, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	list := csl.NewOrdered[uint64, []byte]()
	svc := New[uint64, []byte](list, entryWAL, exitWAL, sequence.New(0), Uint64BytesCodec{})

	var snapSeq uint64
	for i := uint64(1); i <= 3; i++ {
		seq, err := svc.Insert(i, []byte{byte(i)})
		if err != nil {
			t.Fatal(err)
		}
		snapSeq = seq
	}
	// A snapshot taken here would capture keys 1-3 at snapSeq. The
	// segment is not rotated (and so not truncated) before more records
	// land in the same file, reproducing the straddling-segment case:
	// records at or below snapSeq are still on disk for replay to see.
	for i := uint64(4); i <= 6; i++ {
		if _, err := svc.Insert(i, []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := entryWAL.Close(); err != nil {
		t.Fatal(err)
	}
	exitWAL.Close()

	recoveredList := csl.NewOrdered[uint64, []byte]()
	for i := uint64(1); i <= 3; i++ {
		recoveredList.Insert(i, []byte{byte(i)})
	}

	seqGen := sequence.New(0)
	if err := ReplayFromWAL[uint64, []byte](dir, recoveredList, Uint64BytesCodec{}, seqGen, snapSeq); err != nil {
		t.Fatalf("ReplayFromWAL() error = %v", err)
	}

	if got := recoveredList.Size(); got != 6 {
		t.Fatalf("recovered list size = %d, want 6 (3 from snapshot + 3 replayed, no duplicates)", got)
	}
}

func TestServiceSnapshotRoundTrip(t *testing.T) {
	svc := newTestService(t)
	for i := uint64(1); i <= 10; i++ {
		if _, err := svc.Insert(i, []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}

	entries := svc.Snapshot()
	if len(entries) != 10 {
		t.Fatalf("Snapshot() returned %d entries, want 10", len(entries))
	}
	if svc.Size() != 10 {
		t.Fatalf("Size() after Snapshot() = %d, want 10 (snapshot must reinsert everything)", svc.Size())
	}
}
