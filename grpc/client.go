package hbgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/hashblock/hbledger"
)

// Compile-time interface checks.
var (
	_ hbledger.StateReader    = (*Client)(nil)
	_ hbledger.StateLister    = (*Client)(nil)
	_ hbledger.BatchSubmitter = (*Client)(nil)
)

// Client talks to a validator state endpoint over gRPC using
// cramberry serialization. No protobuf types or conversion layer
// required.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote validator state endpoint.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("hbgrpc: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// GetLeaf fetches the raw bytes stored at a leaf address. A missing
// leaf is not an error.
func (c *Client) GetLeaf(ctx context.Context, address string) ([]byte, bool, error) {
	req := &GetLeafRequest{Address: address}
	resp := new(GetLeafResponse)
	if err := c.cc.Invoke(ctx, fullMethod("GetLeaf"), req, resp); err != nil {
		return nil, false, hbledger.NewExternalServiceError("grpc: get leaf", err)
	}
	return resp.Data, resp.Found, nil
}

// ListState enumerates every leaf under an address prefix.
func (c *Client) ListState(ctx context.Context, prefix string) ([]hbledger.StateEntry, error) {
	req := &ListStateRequest{Prefix: prefix}
	resp := new(ListStateResponse)
	if err := c.cc.Invoke(ctx, fullMethod("ListState"), req, resp); err != nil {
		return nil, hbledger.NewExternalServiceError("grpc: list state", err)
	}
	entries := make([]hbledger.StateEntry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		entries = append(entries, hbledger.StateEntry{Address: e.Address, Data: e.Data})
	}
	return entries, nil
}

// SendBatches submits a serialized batch list to the validator.
func (c *Client) SendBatches(ctx context.Context, batchList []byte) error {
	req := &SendBatchesRequest{BatchList: batchList}
	resp := new(SendBatchesResponse)
	if err := c.cc.Invoke(ctx, fullMethod("SendBatches"), req, resp); err != nil {
		return hbledger.NewExternalServiceError("grpc: send batches", err)
	}
	return nil
}
