package api

import (
	"context"
	"log"

	"google.golang.org/grpc"

	"github.com/FlovinTue/concurrent-sorted-list/service"
)

// MultisetServiceServer is the interface Server implements, kept
// separate so callers can register a test double under the same
// ServiceDesc without touching the real MultisetService.
type MultisetServiceServer interface {
	Insert(context.Context, *InsertRequest) (*InsertResponse, error)
	TryPop(context.Context, *TryPopRequest) (*TryPopResponse, error)
	CompareTryPop(context.Context, *CompareTryPopRequest) (*CompareTryPopResponse, error)
	Peek(context.Context, *PeekRequest) (*PeekResponse, error)
	Size(context.Context, *SizeRequest) (*SizeResponse, error)
}

// Server adapts a service.MultisetService[uint64, []byte] to gRPC.
type Server struct {
	svc *service.MultisetService[uint64, []byte]
}

// NewServer wraps svc for gRPC transport.
func NewServer(svc *service.MultisetService[uint64, []byte]) *Server {
	return &Server{svc: svc}
}

func (s *Server) Insert(ctx context.Context, req *InsertRequest) (*InsertResponse, error) {
	seq, err := s.svc.Insert(req.Key, req.Value)
	if err != nil {
		return nil, err
	}
	log.Printf("[grpc] Insert key=%d seq=%d", req.Key, seq)
	return &InsertResponse{Seq: seq}, nil
}

func (s *Server) TryPop(ctx context.Context, req *TryPopRequest) (*TryPopResponse, error) {
	key, value, ok, err := s.svc.TryPop()
	if err != nil {
		return nil, err
	}
	return &TryPopResponse{Ok: ok, Key: key, Value: value}, nil
}

func (s *Server) CompareTryPop(ctx context.Context, req *CompareTryPopRequest) (*CompareTryPopResponse, error) {
	actual, value, ok, err := s.svc.CompareTryPop(req.ExpectedKey)
	if err != nil {
		return nil, err
	}
	return &CompareTryPopResponse{Ok: ok, ActualKey: actual, Value: value}, nil
}

func (s *Server) Peek(ctx context.Context, req *PeekRequest) (*PeekResponse, error) {
	key, ok := s.svc.TryPeekTopKey()
	return &PeekResponse{Ok: ok, Key: key}, nil
}

func (s *Server) Size(ctx context.Context, req *SizeRequest) (*SizeResponse, error) {
	return &SizeResponse{Size: s.svc.Size()}, nil
}

// RegisterMultisetServiceServer registers srv against grpcSrv under
// the service descriptor below — the hand-written equivalent of what
// protoc-gen-go-grpc would emit into a _grpc.pb.go file.
func RegisterMultisetServiceServer(grpcSrv *grpc.Server, srv MultisetServiceServer) {
	grpcSrv.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "multiset.MultisetService",
	HandlerType: (*MultisetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Insert", Handler: insertHandler},
		{MethodName: "TryPop", Handler: tryPopHandler},
		{MethodName: "CompareTryPop", Handler: compareTryPopHandler},
		{MethodName: "Peek", Handler: peekHandler},
		{MethodName: "Size", Handler: sizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "multiset.proto",
}

func insertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(InsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MultisetServiceServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/multiset.MultisetService/Insert"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MultisetServiceServer).Insert(ctx, req.(*InsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func tryPopHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TryPopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MultisetServiceServer).TryPop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/multiset.MultisetService/TryPop"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MultisetServiceServer).TryPop(ctx, req.(*TryPopRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func compareTryPopHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CompareTryPopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MultisetServiceServer).CompareTryPop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/multiset.MultisetService/CompareTryPop"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MultisetServiceServer).CompareTryPop(ctx, req.(*CompareTryPopRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func peekHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PeekRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MultisetServiceServer).Peek(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/multiset.MultisetService/Peek"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MultisetServiceServer).Peek(ctx, req.(*PeekRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func sizeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SizeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MultisetServiceServer).Size(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/multiset.MultisetService/Size"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MultisetServiceServer).Size(ctx, req.(*SizeRequest))
	}
	return interceptor(ctx, in, info, handler)
}
