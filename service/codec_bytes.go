package service

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Uint64BytesCodec is a Codec for the common case of an integer key
// and an opaque byte-slice value — the shape used by the gRPC
// transport and the Kafka tailer, where the payload is whatever bytes
// the caller handed in.
type Uint64BytesCodec struct{}

func (Uint64BytesCodec) EncodeKey(k uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, k)
	return buf
}

func (Uint64BytesCodec) DecodeKey(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.Newf("invalid encoded key length %d, want 8", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func (Uint64BytesCodec) EncodeValue(v []byte) []byte {
	return v
}

func (Uint64BytesCodec) DecodeValue(b []byte) ([]byte, error) {
	return append([]byte{}, b...), nil
}
