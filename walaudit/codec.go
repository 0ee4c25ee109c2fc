package walaudit

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeArgs serializes an operation's arguments as a protobuf
// structpb.Struct, the same message type api/benchctl uses over gRPC.
// Field names and decoding are not shared with api/benchctl: a replayed
// record is decoded by service.ReplayFromWAL, a live RPC by benchctl.Server.
func EncodeArgs(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// DecodeArgs is the inverse of EncodeArgs.
func DecodeArgs(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}
