// Package assemble wraps protocol payloads into signed transactions
// and groups transactions into signed batches.
//
// Construction is deterministic given identical inputs, except for
// the signature itself, which depends on the signing capability's
// internal randomness. On any error nothing partial is returned.
package assemble

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/types"
)

// NewTransaction builds and signs one transaction. The signer's
// public key serves as both signer and batcher key; the payload
// digest is the SHA-512 hex of the exact payload bytes.
func NewTransaction(signer hbledger.Signer, familyName, familyVersion string, inputs, outputs []string, payload []byte) (types.Transaction, error) {
	digest := sha512.Sum512(payload)
	pub := signer.PublicKey()

	header, err := cramberry.Marshal(types.TransactionHeader{
		SignerPublicKey:  pub,
		FamilyName:       familyName,
		FamilyVersion:    familyVersion,
		Inputs:           inputs,
		Outputs:          outputs,
		Dependencies:     []string{},
		PayloadSHA512:    hex.EncodeToString(digest[:]),
		BatcherPublicKey: pub,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("assemble: marshal transaction header: %w", err)
	}

	sig, err := signer.Sign(header)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("assemble: sign transaction header: %w", err)
	}

	return types.Transaction{
		Header:          header,
		HeaderSignature: sig,
		Payload:         payload,
	}, nil
}

// NewBatch groups transactions into one signed batch. Transaction
// order is preserved exactly as given; batches are atomic units and
// order may affect external validation semantics.
func NewBatch(signer hbledger.Signer, txns []types.Transaction) (types.Batch, error) {
	ids := make([]string, len(txns))
	for i, txn := range txns {
		ids[i] = txn.HeaderSignature
	}

	header, err := cramberry.Marshal(types.BatchHeader{
		SignerPublicKey: signer.PublicKey(),
		TransactionIDs:  ids,
	})
	if err != nil {
		return types.Batch{}, fmt.Errorf("assemble: marshal batch header: %w", err)
	}

	sig, err := signer.Sign(header)
	if err != nil {
		return types.Batch{}, fmt.Errorf("assemble: sign batch header: %w", err)
	}

	return types.Batch{
		Header:          header,
		HeaderSignature: sig,
		Transactions:    txns,
	}, nil
}

// NewBatchList wraps batches into the submission unit.
func NewBatchList(batches ...types.Batch) types.BatchList {
	return types.BatchList{Batches: batches}
}

// Serialize produces the wire bytes of a batch list for submission
// or file output.
func Serialize(list types.BatchList) ([]byte, error) {
	data, err := cramberry.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("assemble: marshal batch list: %w", err)
	}
	return data, nil
}
