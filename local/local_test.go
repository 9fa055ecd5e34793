package local_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/assemble"
	"github.com/hashblock/hbledger/govern"
	"github.com/hashblock/hbledger/local"
	hbtest "github.com/hashblock/hbledger/testing"
	"github.com/hashblock/hbledger/types"
)

func TestSinkWritesBatchList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.batch")

	signer := &hbtest.MockSigner{}
	txn, err := govern.BuildProposal(signer, govern.KeyAuthorizedKeys, hbtest.TestPublicKey)
	if err != nil {
		t.Fatal(err)
	}
	batch, err := assemble.NewBatch(signer, []types.Transaction{txn})
	if err != nil {
		t.Fatal(err)
	}
	serialized, err := assemble.Serialize(assemble.NewBatchList(batch))
	if err != nil {
		t.Fatal(err)
	}

	sink := local.NewSink(path)
	if err := sink.SendBatches(context.Background(), serialized); err != nil {
		t.Fatalf("SendBatches: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(written, serialized) {
		t.Fatal("file contents differ from the serialized batch list")
	}

	// The on-disk form must parse back into the same batch list.
	var parsed types.BatchList
	if err := cramberry.Unmarshal(written, &parsed); err != nil {
		t.Fatalf("written batch list does not parse: %v", err)
	}
	if len(parsed.Batches) != 1 || len(parsed.Batches[0].Transactions) != 1 {
		t.Fatal("parsed batch list lost its contents")
	}
}

func TestSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.batch")
	sink := local.NewSink(path)

	if err := sink.SendBatches(context.Background(), []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := sink.SendBatches(context.Background(), []byte("second")); err != nil {
		t.Fatal(err)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != "second" {
		t.Fatalf("contents = %q, want latest submission only", written)
	}
}

func TestSinkUnwritablePath(t *testing.T) {
	sink := local.NewSink(filepath.Join(t.TempDir(), "missing", "out.batch"))
	err := sink.SendBatches(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
	if _, ok := hbledger.IsIOError(err); !ok {
		t.Fatalf("error kind = %T, want IOError", err)
	}
}
