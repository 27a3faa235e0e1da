// Package jsoncodec is a grpc encoding.Codec that marshals request and
// response messages as JSON instead of protobuf wire format.
//
// The generated api/pb protobuf stubs this service would normally use
// are not checked into this tree, so the service defined in
// api/grpcserver is a set of plain Go structs rather than protobuf
// messages. Forcing this codec on both server and client (via
// grpc.ForceServerCodec / grpc.ForceCodec) lets google.golang.org/grpc
// keep doing real transport, framing, and RPC dispatch work without
// requiring a protobuf-generated wire format.
package jsoncodec

import "encoding/json"

// Codec implements google.golang.org/grpc/encoding.Codec.
type Codec struct{}

// Name reports the codec's content-subtype, used in the negotiated
// content-type when server and client are not both forced onto this
// codec.
func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
