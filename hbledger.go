// Package hbledger is the client-side protocol layer for the
// hashblock ledger — deterministic state addressing, the
// governance and matching protocols, and signed transaction
// assembly.
//
// The core packages ([address], [govern], [match], [assemble]) are
// pure: their output must byte-for-byte agree with the ledger's
// address-validation and state-application rules. Everything that
// touches the outside world is modeled as a narrow collaborator
// interface declared here and implemented elsewhere ([signing],
// [rest], [grpc], [local]).
package hbledger

import "context"

// Signer produces signatures over raw bytes with a secp256k1
// keypair. Implementations are in the signing package; tests use
// the configurable mock in the testing package.
//
// Signing is the only capability the core invokes that is not a
// pure function — its internal randomness is treated as opaque.
type Signer interface {
	// Sign returns the hex encoding of a 64-byte compact
	// signature (R || S) over the SHA-256 digest of data.
	Sign(data []byte) (string, error)

	// PublicKey returns the hex encoding of the 33-byte
	// compressed public key.
	PublicKey() string
}

// StateReader fetches single leaves from the ledger's global state.
// Used to load candidate-proposal blobs and to check that an
// initiating event exists and is unmatched before a reciprocating
// transaction is built.
type StateReader interface {
	// GetLeaf returns the raw bytes stored at a 70-character leaf
	// address. found is false when the address holds no value;
	// transport failures are surfaced verbatim, never retried.
	GetLeaf(ctx context.Context, address string) (data []byte, found bool, err error)
}

// StateEntry is one address/value pair returned by a prefix listing.
type StateEntry struct {
	Address string
	Data    []byte
}

// StateLister enumerates every leaf stored under an address prefix.
// Listing prefixes are shorter than 70 characters (for example the
// 24-character match-list scope).
type StateLister interface {
	ListState(ctx context.Context, prefix string) ([]StateEntry, error)
}

// BatchSubmitter delivers a serialized batch list to its
// destination — a validator endpoint or a local file. Each CLI
// invocation builds and submits at most one batch list; retry is
// the caller's responsibility.
type BatchSubmitter interface {
	SendBatches(ctx context.Context, batchList []byte) error
}
