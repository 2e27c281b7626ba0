package transport

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/latticedb/lattice/internal/catalog"
	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
)

// MetadataServer exposes the catalog's alteration applier over gRPC. It
// speaks the same raw-bytes codec as Client, so the wire package stays the
// single owner of the serialization contract.
type MetadataServer struct {
	catalog *catalog.SQLiteCatalog
}

// NewMetadataServer creates a server backed by the given catalog.
func NewMetadataServer(cat *catalog.SQLiteCatalog) *MetadataServer {
	return &MetadataServer{catalog: cat}
}

// Register attaches the service to a gRPC server.
func (s *MetadataServer) Register(g *grpc.Server) {
	g.RegisterService(&metadataServiceDesc, s)
}

// AlterTable decodes one request, applies it, and encodes the reply.
func (s *MetadataServer) AlterTable(ctx context.Context, in *rawMessage) (*rawMessage, error) {
	req, err := wire.UnmarshalAlterTableRequest(in.data)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed alter table request: %v", err)
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 {
			log.Printf("transport: alter table %q request %s", req.Table.TableName, ids[0])
		}
	}

	resp, err := s.catalog.ApplyAlteration(ctx, req)
	if err != nil {
		return nil, status.Error(grpcCode(err), err.Error())
	}
	return &rawMessage{data: resp.Marshal()}, nil
}

// grpcCode maps catalog errors onto gRPC status codes.
func grpcCode(err error) codes.Code {
	var le *lerrors.LatticeError
	if !errors.As(err, &le) {
		return codes.Internal
	}
	switch le.Code {
	case lerrors.CodeTableNotFound, lerrors.CodeColumnNotFound, lerrors.CodePartitionNotFound:
		return codes.NotFound
	case lerrors.CodeColumnExists, lerrors.CodeTableExists:
		return codes.AlreadyExists
	case lerrors.CodeDecodingFailed, lerrors.CodeUnknownStep, lerrors.CodeInvalidOption:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

type metadataService interface {
	AlterTable(ctx context.Context, in *rawMessage) (*rawMessage, error)
}

func alterTableHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(rawMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(metadataService).AlterTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodAlterTable,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(metadataService).AlterTable(ctx, req.(*rawMessage))
	}
	return interceptor(ctx, in, info, handler)
}

// metadataServiceDesc is hand-written because the wire contract is
// hand-encoded; there is no generated protobuf service to derive it from.
var metadataServiceDesc = grpc.ServiceDesc{
	ServiceName: "lattice.MetadataService",
	HandlerType: (*metadataService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AlterTable",
			Handler:    alterTableHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}
