// Command csld runs the multiset service: a gRPC front end over a
// lock-free ordered list, backed by a write-ahead log for crash
// recovery and a Kafka broadcaster for pop notifications.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/FlovinTue/concurrent-sorted-list/api"
	"github.com/FlovinTue/concurrent-sorted-list/internal/csl"
	"github.com/FlovinTue/concurrent-sorted-list/internal/metrics"
	"github.com/FlovinTue/concurrent-sorted-list/internal/sequence"
	"github.com/FlovinTue/concurrent-sorted-list/service"
	entrywal "github.com/FlovinTue/concurrent-sorted-list/wal/entry"
	exitwal "github.com/FlovinTue/concurrent-sorted-list/wal/exit"
	"github.com/FlovinTue/concurrent-sorted-list/jobs/broadcaster"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "root directory for WAL segments and snapshots")
	grpcAddr := flag.String("grpc-addr", ":50051", "gRPC listen address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics listen address")
	brokers := flag.String("kafka-brokers", "localhost:9092", "comma-separated Kafka broker addresses")
	topic := flag.String("kafka-topic", "multiset-pops", "Kafka topic for pop notifications")
	flag.Parse()

	entryDir := filepath.Join(*dataDir, "wal_entry")
	exitDir := filepath.Join(*dataDir, "wal_exit")
	snapshotDir := filepath.Join(*dataDir, "snapshot")

	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:             entryDir,
		SegmentSize:     2 * 1024 * 1024,
		SegmentDuration: time.Minute,
	})
	if err != nil {
		log.Fatalf("entry WAL init failed: %v", err)
	}
	defer entryWAL.Close()

	// ---------------- Exit WAL ----------------

	exitWAL, err := exitwal.Open(exitDir)
	if err != nil {
		log.Fatalf("exit WAL init failed: %v", err)
	}
	defer exitWAL.Close()

	// ---------------- Sequencer, list, codec ----------------

	seqGen := sequence.New(0)
	list := csl.NewOrdered[uint64, []byte]()
	codec := service.Uint64BytesCodec{}

	// ---------------- Snapshot + WAL replay ----------------

	snapshotPath := filepath.Join(snapshotDir, "snapshot.bin")
	snapSeq, err := service.LoadSnapshot[uint64, []byte](snapshotPath, list, codec)
	if err != nil {
		log.Fatalf("snapshot load failed: %v", err)
	}
	if snapSeq > 0 {
		seqGen.Reset(snapSeq)
		log.Printf("restored snapshot at seq=%d", snapSeq)
	}

	if err := service.ReplayFromWAL[uint64, []byte](entryDir, list, codec, seqGen, snapSeq); err != nil {
		log.Fatalf("WAL replay failed: %v", err)
	}

	// ---------------- Service ----------------

	svc := service.New[uint64, []byte](list, entryWAL, exitWAL, seqGen, codec)

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			svc.AdvanceEpoch()
		}
	}()

	stopSnapshot := svc.StartSnapshotJob(snapshotDir, 30*time.Second)
	defer stopSnapshot()

	bc, err := broadcaster.New(exitWAL, strings.Split(*brokers, ","), *topic, 2*time.Second)
	if err != nil {
		log.Fatalf("broadcaster init failed: %v", err)
	}
	defer bc.Close()
	go bc.Run(ctx)

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		log.Fatalf("metrics registration failed: %v", err)
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer()
	api.RegisterMultisetServiceServer(grpcSrv, api.NewServer(svc))

	log.Printf("csld listening on %s (metrics on %s)", *grpcAddr, *metricsAddr)
	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}
