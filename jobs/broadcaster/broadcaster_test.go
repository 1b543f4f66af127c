package broadcaster

import (
	"errors"
	"testing"

	"github.com/IBM/sarama/mocks"

	exitwal "github.com/FlovinTue/concurrent-sorted-list/wal/exit"
)

var errSendFailed = errors.New("broker unavailable")

func openTestExitWAL(t *testing.T) *exitwal.WAL {
	t.Helper()
	w, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatalf("exitwal.Open() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestDrainOnceMarksSentThenAcked(t *testing.T) {
	exitWAL := openTestExitWAL(t)
	if err := exitWAL.PutNew(1, []byte("payload")); err != nil {
		t.Fatal(err)
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(exitWAL, producer, "events", 0)
	b.drainOnce()

	rec, err := exitWAL.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.State != exitwal.StateAcked {
		t.Errorf("State after drainOnce() = %v, want ACKED", rec.State)
	}
}

func TestDrainOnceMarksFailedOnSendError(t *testing.T) {
	exitWAL := openTestExitWAL(t)
	if err := exitWAL.PutNew(1, []byte("payload")); err != nil {
		t.Fatal(err)
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errSendFailed)

	b := NewWithProducer(exitWAL, producer, "events", 0)
	b.drainOnce()

	rec, err := exitWAL.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.State != exitwal.StateFailed {
		t.Errorf("State after a failed send = %v, want FAILED", rec.State)
	}
}
