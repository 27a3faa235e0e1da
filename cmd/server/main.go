package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"matchengine/api/grpcserver"
	"matchengine/api/grpcserver/jsoncodec"
	"matchengine/domain/orderbook"
	"matchengine/infra/kafka"
	"matchengine/infra/memory"
	"matchengine/infra/sequence"
	"matchengine/infra/snapshotstore"
	entrywal "matchengine/infra/wal/entry"
	exitwal "matchengine/infra/wal/exit"
	"matchengine/jobs/broadcaster"
	"matchengine/service"
)

func main() {
	brokers := splitOrDefault(os.Getenv("KAFKA_BROKERS"), []string{"localhost:9092"})

	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:             "./wal_entry",
		SegmentSize:     2 * 1024 * 1024,
		SegmentDuration: time.Minute,
	})
	if err != nil {
		log.Fatalf("entry WAL init failed: %v", err)
	}

	// ---------------- Exit WAL ----------------

	exitWAL, err := exitwal.Open("./wal_exit")
	if err != nil {
		log.Fatalf("exit WAL init failed: %v", err)
	}
	defer exitWAL.Close()

	// ---------------- Sequencer & pool ----------------

	seqGen := sequence.New(0)
	pool := memory.NewPool(func() *orderbook.Order {
		return &orderbook.Order{}
	})

	// ---------------- Domain ----------------

	book := orderbook.NewOrderBook()

	if err := service.ReplayFromWAL("./wal_entry", book, pool, seqGen); err != nil {
		log.Fatalf("WAL replay failed: %v", err)
	}

	// ---------------- Durable snapshot store ----------------

	notifier := kafka.NewProducer(brokers, "book.snapshots")
	defer notifier.Close()

	store, err := snapshotstore.Open("./snapshots", notifier, "book.snapshots")
	if err != nil {
		log.Fatalf("snapshot store init failed: %v", err)
	}
	defer store.Close()

	// ---------------- Service ----------------

	svc := service.NewOrderService(book, pool, seqGen, entryWAL, exitWAL, store)
	defer svc.Close()

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSnapshotJob := svc.StartSnapshotJob(2 * time.Second)
	defer stopSnapshotJob()

	bc, err := broadcaster.New(exitWAL, brokers, "order.fills", 2*time.Second)
	if err != nil {
		log.Fatalf("broadcaster init failed: %v", err)
	}
	defer bc.Close()
	go bc.Run(ctx)

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", ":50051")
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(jsoncodec.Codec{}))
	grpcserver.RegisterOrderServiceServer(grpcSrv, grpcserver.NewServer(svc))

	go func() {
		log.Println("matchengine gRPC server running on :50051")
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("gRPC server exited: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down")
	grpcSrv.GracefulStop()
}

func splitOrDefault(s string, def []string) []string {
	if s == "" {
		return def
	}
	return strings.Split(s, ",")
}
