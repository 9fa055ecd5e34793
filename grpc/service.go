package hbgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const serviceName = "hashblock.ledger.v1.StateService"

// StateServiceServer is the server-side interface for the validator
// state gRPC service.
type StateServiceServer interface {
	GetLeaf(context.Context, *GetLeafRequest) (*GetLeafResponse, error)
	ListState(context.Context, *ListStateRequest) (*ListStateResponse, error)
	SendBatches(context.Context, *SendBatchesRequest) (*SendBatchesResponse, error)
}

// RegisterStateServiceServer registers the StateServiceServer on a
// gRPC server.
func RegisterStateServiceServer(s *grpc.Server, srv StateServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerGetLeaf(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetLeafRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(StateServiceServer).GetLeaf(ctx, req)
}

func handlerListState(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ListStateRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(StateServiceServer).ListState(ctx, req)
}

func handlerSendBatches(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(SendBatchesRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(StateServiceServer).SendBatches(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the validator
// state service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetLeaf", Handler: handlerGetLeaf},
		{MethodName: "ListState", Handler: handlerListState},
		{MethodName: "SendBatches", Handler: handlerSendBatches},
	},
	Metadata: "hashblock/ledger/v1/state.cram",
}
