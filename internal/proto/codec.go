// Package proto defines the wire contract of the FaceAuth gRPC service:
// request/response messages, the service descriptor, a client stub and the
// JSON codec the messages travel in.
package proto

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype of the JSON codec
// ("application/grpc+json").
const CodecName = "json"

// Codec marshals messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}

// CallOption makes a call use the JSON codec. The generated client adds it
// to every call.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
