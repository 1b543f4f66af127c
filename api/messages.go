// Package api exposes MultisetService over gRPC. No protoc-generated
// stubs exist for this service, so wire messages are hand-encoded with
// the stable, low-level google.golang.org/protobuf/encoding/protowire
// package rather than the protoc-gen-go message runtime
// (protoreflect, MessageState, and friends) that would normally back
// generated types.
package api

import "google.golang.org/protobuf/encoding/protowire"

// wireMessage is the minimal contract codec.go needs: every request
// and response type in this package implements it directly instead of
// satisfying proto.Message.
type wireMessage interface {
	Marshal() []byte
	Unmarshal([]byte) error
}

type InsertRequest struct {
	Key   uint64
	Value []byte
}

func (m *InsertRequest) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Key)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Value)
	return b
}

func (m *InsertRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Key = v
			return n, nil
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Value = append([]byte{}, v...)
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
}

type InsertResponse struct {
	Seq uint64
}

func (m *InsertResponse) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Seq)
	return b
}

func (m *InsertResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Seq = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

type TryPopRequest struct{}

func (m *TryPopRequest) Marshal() []byte          { return nil }
func (m *TryPopRequest) Unmarshal(b []byte) error { return forEachField(b, skipField) }

type TryPopResponse struct {
	Ok    bool
	Key   uint64
	Value []byte
}

func (m *TryPopResponse) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(m.Ok))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Key)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Value)
	return b
}

func (m *TryPopResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Ok = v != 0
			return n, nil
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Key = v
			return n, nil
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Value = append([]byte{}, v...)
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
}

type CompareTryPopRequest struct {
	ExpectedKey uint64
}

func (m *CompareTryPopRequest) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.ExpectedKey)
	return b
}

func (m *CompareTryPopRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.ExpectedKey = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

type CompareTryPopResponse struct {
	Ok        bool
	ActualKey uint64
	Value     []byte
}

func (m *CompareTryPopResponse) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(m.Ok))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.ActualKey)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Value)
	return b
}

func (m *CompareTryPopResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Ok = v != 0
			return n, nil
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.ActualKey = v
			return n, nil
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Value = append([]byte{}, v...)
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
}

type PeekRequest struct{}

func (m *PeekRequest) Marshal() []byte          { return nil }
func (m *PeekRequest) Unmarshal(b []byte) error { return forEachField(b, skipField) }

type PeekResponse struct {
	Ok  bool
	Key uint64
}

func (m *PeekResponse) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(m.Ok))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Key)
	return b
}

func (m *PeekResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Ok = v != 0
			return n, nil
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Key = v
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
}

type SizeRequest struct{}

func (m *SizeRequest) Marshal() []byte          { return nil }
func (m *SizeRequest) Unmarshal(b []byte) error { return forEachField(b, skipField) }

type SizeResponse struct {
	Size uint64
}

func (m *SizeResponse) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Size)
	return b
}

func (m *SizeResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Size = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func boolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// forEachField walks every (tag, value) pair in b, dispatching the
// value portion to fn and advancing past whatever fn reports it
// consumed. Unknown field numbers are skipped via
// protowire.ConsumeFieldValue, matching protobuf's forward-compatible
// unknown-field handling.
func forEachField(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		consumed, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 {
			return protowire.ParseError(consumed)
		}
		b = b[consumed:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return protowire.ConsumeFieldValue(num, typ, b), nil
}
