package assemble_test

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/hashblock/hbledger/assemble"
	hbtest "github.com/hashblock/hbledger/testing"
	"github.com/hashblock/hbledger/types"
)

func TestNewTransaction(t *testing.T) {
	signer := &hbtest.MockSigner{}
	payload := []byte("payload bytes")
	inputs := []string{"cad113", "cad114"}
	outputs := []string{"cad113"}

	txn, err := assemble.NewTransaction(signer, "hashblock_events", "0.1.0", inputs, outputs, payload)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}

	var header types.TransactionHeader
	if err := cramberry.Unmarshal(txn.Header, &header); err != nil {
		t.Fatalf("header does not parse: %v", err)
	}

	digest := sha512.Sum512(payload)
	if header.PayloadSHA512 != hex.EncodeToString(digest[:]) {
		t.Error("payload digest mismatch")
	}
	if header.SignerPublicKey != hbtest.TestPublicKey || header.BatcherPublicKey != hbtest.TestPublicKey {
		t.Error("signer key must appear as both signer and batcher")
	}
	if header.FamilyName != "hashblock_events" || header.FamilyVersion != "0.1.0" {
		t.Errorf("family fields wrong: %s %s", header.FamilyName, header.FamilyVersion)
	}
	if len(header.Inputs) != 2 || header.Inputs[0] != "cad113" {
		t.Error("inputs not preserved")
	}
	if len(header.Outputs) != 1 || header.Outputs[0] != "cad113" {
		t.Error("outputs not preserved")
	}
	if txn.HeaderSignature == "" {
		t.Error("missing header signature")
	}
	if signer.SignCalls.Load() != 1 {
		t.Errorf("signer invoked %d times, want 1", signer.SignCalls.Load())
	}
}

func TestNewTransactionDeterministicHeader(t *testing.T) {
	signer := &hbtest.MockSigner{}
	a, err := assemble.NewTransaction(signer, "f", "1", []string{"aa"}, []string{"aa"}, []byte("p"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := assemble.NewTransaction(signer, "f", "1", []string{"aa"}, []string{"aa"}, []byte("p"))
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Header) != string(b.Header) {
		t.Fatal("identical inputs must produce identical header bytes")
	}
}

func TestNewBatchPreservesOrder(t *testing.T) {
	signer := &hbtest.MockSigner{}

	var txns []types.Transaction
	for _, p := range []string{"one", "two", "three"} {
		txn, err := assemble.NewTransaction(signer, "f", "1", nil, nil, []byte(p))
		if err != nil {
			t.Fatal(err)
		}
		txns = append(txns, txn)
	}

	batch, err := assemble.NewBatch(signer, txns)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}

	var header types.BatchHeader
	if err := cramberry.Unmarshal(batch.Header, &header); err != nil {
		t.Fatalf("batch header does not parse: %v", err)
	}
	if header.SignerPublicKey != hbtest.TestPublicKey {
		t.Error("batch signer key wrong")
	}
	if len(header.TransactionIDs) != 3 {
		t.Fatalf("expected 3 transaction ids, got %d", len(header.TransactionIDs))
	}
	for i, txn := range txns {
		if header.TransactionIDs[i] != txn.HeaderSignature {
			t.Fatalf("transaction id %d out of order", i)
		}
		if batch.Transactions[i].HeaderSignature != txn.HeaderSignature {
			t.Fatalf("transaction %d out of order in batch body", i)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	signer := &hbtest.MockSigner{}
	txn, err := assemble.NewTransaction(signer, "f", "1", nil, nil, []byte("p"))
	if err != nil {
		t.Fatal(err)
	}
	batch, err := assemble.NewBatch(signer, []types.Transaction{txn})
	if err != nil {
		t.Fatal(err)
	}

	data, err := assemble.Serialize(assemble.NewBatchList(batch))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var list types.BatchList
	if err := cramberry.Unmarshal(data, &list); err != nil {
		t.Fatalf("serialized batch list does not parse: %v", err)
	}
	if len(list.Batches) != 1 || len(list.Batches[0].Transactions) != 1 {
		t.Fatal("batch list structure lost in serialization")
	}
}
