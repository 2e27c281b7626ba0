package transport

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
)

// Client sends compiled alteration requests to a metadata service. Retry and
// timeout policy belongs to the caller; the client performs a single attempt
// per call.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the metadata service at the given address.
func Dial(addr string, extraOpts ...grpc.DialOption) (*Client, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, extraOpts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCategoryTransport, lerrors.CodeSendFailed,
			"connecting to metadata service", err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection; useful for in-process servers in
// tests.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// AlterTable sends one compiled request and decodes the reply. Every call
// carries a fresh x-request-id so the service can correlate logs.
func (c *Client) AlterTable(ctx context.Context, req *wire.AlterTableRequest) (*wire.AlterTableResponse, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", uuid.New().String())

	in := &rawMessage{data: req.Marshal()}
	out := &rawMessage{}
	err := c.conn.Invoke(ctx, methodAlterTable, in, out, grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCategoryTransport, lerrors.CodeSendFailed,
			"alter table RPC", err)
	}

	resp, err := wire.UnmarshalAlterTableResponse(out.data)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeDecodingFailed,
			"decoding alter table response", err)
	}
	return resp, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
