// Package local provides a file-backed batch destination.
//
// Instead of submitting to a validator endpoint, batches are written
// to a local file for later replay or for composing a genesis block.
// The serialized form on disk is identical to what a validator would
// receive over the wire.
package local

import (
	"context"
	"os"

	"github.com/hashblock/hbledger"
)

// Compile-time interface check.
var _ hbledger.BatchSubmitter = (*Sink)(nil)

// Sink writes each submitted batch list to a file, truncating any
// previous contents.
type Sink struct {
	path string
	perm os.FileMode
}

// NewSink creates a sink writing to the given path.
func NewSink(path string) *Sink {
	return &Sink{path: path, perm: 0o644}
}

// Path returns the destination file path.
func (s *Sink) Path() string { return s.path }

// SendBatches writes the serialized batch list to the sink's file.
func (s *Sink) SendBatches(_ context.Context, batchList []byte) error {
	if err := os.WriteFile(s.path, batchList, s.perm); err != nil {
		return hbledger.NewIOError("write batch file", s.path, err)
	}
	return nil
}
