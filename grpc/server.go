package hbgrpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/hashblock/hbledger"
)

// Compile-time interface check.
var _ StateServiceServer = (*GRPCServer)(nil)

// Backend is what a validator-side state endpoint must supply.
type Backend interface {
	hbledger.StateReader
	hbledger.StateLister
	hbledger.BatchSubmitter
}

// GRPCServer exposes a Backend as the validator state gRPC service.
// No type conversion layer is needed — wire types are serialized
// directly via cramberry.
type GRPCServer struct {
	backend Backend
}

// NewGRPCServer creates a gRPC server wrapping the given backend.
func NewGRPCServer(backend Backend) *GRPCServer {
	return &GRPCServer{backend: backend}
}

// Register adds the state service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterStateServiceServer(gs, s)
}

// Serve starts the gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

func (s *GRPCServer) GetLeaf(ctx context.Context, req *GetLeafRequest) (*GetLeafResponse, error) {
	data, found, err := s.backend.GetLeaf(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	return &GetLeafResponse{Data: data, Found: found}, nil
}

func (s *GRPCServer) ListState(ctx context.Context, req *ListStateRequest) (*ListStateResponse, error) {
	entries, err := s.backend.ListState(ctx, req.Prefix)
	if err != nil {
		return nil, err
	}
	resp := &ListStateResponse{Entries: make([]StateEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, StateEntry{Address: e.Address, Data: e.Data})
	}
	return resp, nil
}

func (s *GRPCServer) SendBatches(ctx context.Context, req *SendBatchesRequest) (*SendBatchesResponse, error) {
	if err := s.backend.SendBatches(ctx, req.BatchList); err != nil {
		return nil, err
	}
	return &SendBatchesResponse{}, nil
}
