package api

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is a distinct content-subtype rather than a reuse of
// grpc-go's built-in "proto" name, so registering it cannot shadow the
// default codec for any other service sharing the process. Clients
// that want wire messages encoded by this package must dial with
// grpc.CallContentSubtype(codecName) (or an equivalent per-call
// CallOption); everything else keeps grpc-go's normal codec
// resolution untouched.
const codecName = "multiset+proto"

// wireCodec implements encoding.Codec over wireMessage.
type wireCodec struct{}

func (wireCodec) Name() string { return codecName }

func (wireCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("api: %T does not implement wireMessage", v)
	}
	return m.Marshal(), nil
}

func (wireCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("api: %T does not implement wireMessage", v)
	}
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(wireCodec{})
}
