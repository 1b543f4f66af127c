package service

// Codec turns keys and values into bytes for the write-ahead log and
// snapshots, and back. Callers provide one per concrete (K, V)
// instantiation of MultisetService; internal/csl itself never needs
// to serialize anything, since it is pure in-memory.
type Codec[K comparable, V any] interface {
	EncodeKey(K) []byte
	DecodeKey([]byte) (K, error)
	EncodeValue(V) []byte
	DecodeValue([]byte) (V, error)
}
