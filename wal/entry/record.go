package entry

import "time"

// Op identifies which multiset mutation a Record replays.
type Op uint8

const (
	// OpInsert carries an encoded (key, value) pair to insert.
	OpInsert Op = iota
	// OpPop carries the encoded (key, value) that was removed, so
	// replay can exclude it from the reconstructed list rather than
	// resurrecting an element that was already delivered to a caller.
	OpPop
	// OpCompareTryPop carries an encoded expected key.
	OpCompareTryPop
)

// Record is one intent logged before (Insert) or after (Pop,
// CompareTryPop) a mutation reaches the multiset core.
type Record struct {
	Op   Op
	Seq  uint64
	Time int64
	Data []byte
}

// NewRecord stamps a Record with the current time.
func NewRecord(op Op, seq uint64, data []byte) *Record {
	return &Record{
		Op:   op,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
