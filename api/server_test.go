package api

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/FlovinTue/concurrent-sorted-list/internal/csl"
	"github.com/FlovinTue/concurrent-sorted-list/internal/sequence"
	"github.com/FlovinTue/concurrent-sorted-list/service"
	entrywal "github.com/FlovinTue/concurrent-sorted-list/wal/entry"
	exitwal "github.com/FlovinTue/concurrent-sorted-list/wal/exit"
)

// dial starts a real grpc.Server over an in-memory bufconn listener
// and returns a ClientConn to it, so this test exercises the actual
// gRPC transport and the wireCodec registered in codec.go, not just
// the handler functions directly.
func dial(t *testing.T) (*grpc.Server, *grpc.ClientConn) {
	t.Helper()

	entryWAL, err := entrywal.Open(entrywal.Config{Dir: t.TempDir(), SegmentSize: 64 << 20})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { entryWAL.Close() })

	exitWAL, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { exitWAL.Close() })

	list := csl.NewOrdered[uint64, []byte]()
	svc := service.New[uint64, []byte](list, entryWAL, exitWAL, sequence.New(0), service.Uint64BytesCodec{})

	grpcSrv := grpc.NewServer()
	RegisterMultisetServiceServer(grpcSrv, NewServer(svc))

	lis := bufconn.Listen(1024 * 1024)
	go grpcSrv.Serve(lis)
	t.Cleanup(grpcSrv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return grpcSrv, conn
}

// invoke calls method with the codec's content-subtype selected, the
// way a real caller must: registering wireCodec under a distinct
// subtype (codec.go) means it is never picked implicitly.
func invoke(ctx context.Context, conn *grpc.ClientConn, method string, req, resp interface{}) error {
	return conn.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(codecName))
}

func TestServerInsertAndTryPopOverGRPC(t *testing.T) {
	_, conn := dial(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	insertResp := new(InsertResponse)
	if err := invoke(ctx, conn, "/multiset.MultisetService/Insert",
		&InsertRequest{Key: 5, Value: []byte("five")}, insertResp); err != nil {
		t.Fatalf("Insert invoke error = %v", err)
	}
	if insertResp.Seq == 0 {
		t.Error("Insert response Seq should be non-zero")
	}

	popResp := new(TryPopResponse)
	if err := invoke(ctx, conn, "/multiset.MultisetService/TryPop", &TryPopRequest{}, popResp); err != nil {
		t.Fatalf("TryPop invoke error = %v", err)
	}
	if !popResp.Ok || popResp.Key != 5 || string(popResp.Value) != "five" {
		t.Errorf("TryPop response = %+v, want {Ok:true Key:5 Value:five}", popResp)
	}
}

func TestServerSizeOverGRPC(t *testing.T) {
	_, conn := dial(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, k := range []uint64{1, 2, 3} {
		if err := invoke(ctx, conn, "/multiset.MultisetService/Insert",
			&InsertRequest{Key: k, Value: nil}, new(InsertResponse)); err != nil {
			t.Fatalf("Insert invoke error = %v", err)
		}
	}

	sizeResp := new(SizeResponse)
	if err := invoke(ctx, conn, "/multiset.MultisetService/Size", &SizeRequest{}, sizeResp); err != nil {
		t.Fatalf("Size invoke error = %v", err)
	}
	if sizeResp.Size != 3 {
		t.Errorf("Size = %d, want 3", sizeResp.Size)
	}
}
