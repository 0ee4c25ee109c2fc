// Command benchserver wires the matching engine's full ambient stack into
// a runnable process: audit log replay, the wait-free order book, the
// outbox, background snapshotting and reclamation, the Kafka broadcaster,
// a stats sampler, and the gRPC control plane.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"

	"cx/api/benchctl"
	"cx/domain/orderbook"
	"cx/infra/sequence"
	"cx/jobs/broadcaster"
	"cx/outbox"
	"cx/service"
	"cx/snapshot"
	"cx/telemetry"
	"cx/uc"
	"cx/walaudit"
)

func main() {
	var (
		walDir      = flag.String("wal-dir", "./data/wal", "audit log directory")
		outboxDir   = flag.String("outbox-dir", "./data/outbox", "outbox database directory")
		snapDir     = flag.String("snapshot-dir", "./data/snapshot", "snapshot directory")
		listenAddr  = flag.String("listen", ":50051", "gRPC listen address")
		maxThreads  = flag.Int("max-threads", 8, "maximum concurrent callers into the construct")
		kafkaBroker = flag.String("kafka-broker", "localhost:9092", "Kafka broker address")
	)
	flag.Parse()

	wal, err := walaudit.Open(walaudit.Config{Dir: *walDir, SegmentSize: 64 << 20})
	if err != nil {
		log.Fatalf("benchserver: wal open: %v", err)
	}
	defer wal.Close()

	compactor := walaudit.NewCompactor()
	wal.AttachCompactor(compactor)

	box, err := outbox.Open(*outboxDir)
	if err != nil {
		log.Fatalf("benchserver: outbox open: %v", err)
	}
	defer box.Close()

	seqGen := sequence.New(0)

	book := orderbook.New()
	if err := service.ReplayFromWAL(*walDir, &book, seqGen); err != nil {
		log.Fatalf("benchserver: wal replay: %v", err)
	}

	if ticket, err := snapshot.Load(fmt.Sprintf("%s/snapshot.bin", *snapDir), &book); err != nil {
		log.Fatalf("benchserver: snapshot load: %v", err)
	} else if ticket > seqGen.Current() {
		seqGen.Reset(ticket)
	}

	construct := uc.NewUC[orderbook.OrderBook, orderbook.PlaceResult](book, *maxThreads)
	defer construct.Close()

	snapWriter := &snapshot.Writer{Dir: *snapDir}
	svc := service.NewOrderService(construct, seqGen, wal, box, snapWriter, 0)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartSnapshotJob(ctx, 30*time.Second)

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				compactor.Tick()
			}
		}
	}()

	bc, err := broadcaster.New(box, []string{*kafkaBroker}, "order-events", func(ticket uint64) ([]byte, error) {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, ticket)
		return buf, nil
	})
	if err != nil {
		log.Fatalf("benchserver: broadcaster init: %v", err)
	}
	defer bc.Close()
	bc.Start(ctx)

	stats := telemetry.NewProducer([]string{*kafkaBroker}, "order-stats")
	defer stats.Close()

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				buf := make([]byte, 8)
				binary.BigEndian.PutUint64(buf, seqGen.Current())
				if err := stats.Send(ctx, []byte("last_ticket"), buf); err != nil {
					log.Printf("benchserver: stats send failed: %v", err)
				}
			}
		}
	}()

	grpcSrv := grpc.NewServer()
	benchctl.RegisterControlServer(grpcSrv, benchctl.NewServer(svc))

	lis, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("benchserver: listen: %v", err)
	}

	log.Printf("benchserver: running on %s", *listenAddr)
	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("benchserver: gRPC server exited: %v", err)
	}
}
