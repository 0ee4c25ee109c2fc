// Package benchctl is a gRPC control plane for driving and inspecting a
// running OrderService, without a generated .proto client: every request
// and response is a *structpb.Struct, the same message type walaudit uses
// for its on-disk argument encoding. Requests are decoded here, separately
// from service.ReplayFromWAL's decoding of log records, and use their own
// field names (for example "userId" here, "userID" in the log). The wire contract is carried
// entirely by a hand-written grpc.ServiceDesc (service_desc.go).
package benchctl

import (
	"context"
	"fmt"

	"cx/domain/orderbook"
	"cx/service"

	"google.golang.org/protobuf/types/known/structpb"
)

// Server adapts a service.OrderService to the Control gRPC service.
type Server struct {
	svc *service.OrderService
}

// NewServer wraps svc for gRPC dispatch.
func NewServer(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

func floatField(fields map[string]any, key string) (float64, error) {
	v, ok := fields[key].(float64)
	if !ok {
		return 0, fmt.Errorf("benchctl: missing or non-numeric field %q", key)
	}
	return v, nil
}

func (s *Server) placeOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()

	side, err := floatField(fields, "side")
	if err != nil {
		return nil, err
	}
	otype, err := floatField(fields, "type")
	if err != nil {
		return nil, err
	}
	price, err := floatField(fields, "price")
	if err != nil {
		return nil, err
	}
	qty, err := floatField(fields, "qty")
	if err != nil {
		return nil, err
	}
	userID, err := floatField(fields, "userId")
	if err != nil {
		return nil, err
	}

	ticket, res, err := s.svc.PlaceOrder(
		orderbook.Side(int(side)),
		orderbook.OrderType(int(otype)),
		int64(price),
		int64(qty),
		uint64(userID),
	)
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(map[string]any{
		"ticket":    float64(ticket),
		"remaining": float64(res.Remaining),
		"resting":   res.Resting,
		"trades":    float64(len(res.Trades)),
	})
}

func (s *Server) checkpoint(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	if err := s.svc.Checkpoint(); err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"status": "ok"})
}
