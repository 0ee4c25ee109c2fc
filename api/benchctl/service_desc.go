package benchctl

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

func decodeStruct(dec func(any) error) (*structpb.Struct, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	return in, nil
}

func placeOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in, err := decodeStruct(dec)
	if err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).placeOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/benchctl.Control/PlaceOrder"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).placeOrder(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func checkpointHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in, err := decodeStruct(dec)
	if err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).checkpoint(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/benchctl.Control/Checkpoint"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).checkpoint(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the hand-written gRPC service descriptor for Control,
// standing in for a generated .proto service — every method exchanges
// *structpb.Struct values rather than project-specific message types.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "benchctl.Control",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: placeOrderHandler},
		{MethodName: "Checkpoint", Handler: checkpointHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "benchctl/control.proto",
}

// RegisterControlServer registers srv on s under the Control service.
func RegisterControlServer(s *grpc.Server, srv *Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// PlaceOrder invokes the Control/PlaceOrder RPC on cc without a generated
// client stub.
func PlaceOrder(ctx context.Context, cc *grpc.ClientConn, req *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/benchctl.Control/PlaceOrder", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Checkpoint invokes the Control/Checkpoint RPC on cc.
func Checkpoint(ctx context.Context, cc *grpc.ClientConn, req *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/benchctl.Control/Checkpoint", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
