package hbgrpc

// Transport-specific wrapper types for the validator state RPCs.
// These are used only at gRPC serialization boundaries.

// GetLeafRequest asks for the data stored at one leaf address.
type GetLeafRequest struct {
	Address string `cramberry:"1"`
}

// GetLeafResponse carries a leaf read result. Found distinguishes an
// empty leaf from an absent one.
type GetLeafResponse struct {
	Data  []byte `cramberry:"1"`
	Found bool   `cramberry:"2"`
}

// ListStateRequest asks for every leaf under an address prefix.
type ListStateRequest struct {
	Prefix string `cramberry:"1"`
}

// StateEntry is one address/data pair in a listing.
type StateEntry struct {
	Address string `cramberry:"1"`
	Data    []byte `cramberry:"2"`
}

// ListStateResponse carries a prefix listing.
type ListStateResponse struct {
	Entries []StateEntry `cramberry:"1"`
}

// SendBatchesRequest submits a serialized batch list.
type SendBatchesRequest struct {
	BatchList []byte `cramberry:"1"`
}

// SendBatchesResponse is the (empty) acknowledgement of a submission.
type SendBatchesResponse struct{}
