// Package transport carries compiled alteration requests to the Lattice
// metadata service over gRPC. Requests are already serialized by the wire
// package, so the connection uses a passthrough codec that moves raw bytes
// without re-encoding.
package transport

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype both ends negotiate for raw payloads.
const CodecName = "lattice-raw"

const methodAlterTable = "/lattice.MetadataService/AlterTable"

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// rawMessage wraps an already-serialized wire payload.
type rawMessage struct {
	data []byte
}

// rawCodec passes pre-serialized payloads through unchanged.
type rawCodec struct{}

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(*rawMessage)
	if !ok {
		return nil, fmt.Errorf("transport: codec cannot marshal %T", v)
	}
	return m.data, nil
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(*rawMessage)
	if !ok {
		return fmt.Errorf("transport: codec cannot unmarshal into %T", v)
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string {
	return CodecName
}
