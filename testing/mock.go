// Package hbtest provides configurable mocks of the external
// collaborators (Signer, StateReader, StateLister, BatchSubmitter)
// for protocol tests.
package hbtest

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hashblock/hbledger"
)

// Compile-time interface checks.
var (
	_ hbledger.Signer         = (*MockSigner)(nil)
	_ hbledger.StateReader    = (*MockState)(nil)
	_ hbledger.StateLister    = (*MockState)(nil)
	_ hbledger.BatchSubmitter = (*MockSubmitter)(nil)
)

// TestPublicKey is the public key the default MockSigner reports.
const TestPublicKey = "026a2c795a9776f75464aa3bda3534c3154a6e91b357b1181d3f515110f84b67c5"

// MockSigner is a deterministic fake signer. Unconfigured methods
// produce a stable pseudo-signature derived from the input bytes, so
// identical inputs always sign identically.
type MockSigner struct {
	SignFn      func(data []byte) (string, error)
	PublicKeyFn func() string

	SignCalls atomic.Int64
}

func (m *MockSigner) Sign(data []byte) (string, error) {
	m.SignCalls.Add(1)
	if m.SignFn != nil {
		return m.SignFn(data)
	}
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:64]), nil
}

func (m *MockSigner) PublicKey() string {
	if m.PublicKeyFn != nil {
		return m.PublicKeyFn()
	}
	return TestPublicKey
}

// MockState is an in-memory state tree keyed by address. It serves
// both single-leaf reads and prefix listings.
type MockState struct {
	mu     sync.Mutex
	leaves map[string][]byte

	GetLeafFn   func(ctx context.Context, address string) ([]byte, bool, error)
	ListStateFn func(ctx context.Context, prefix string) ([]hbledger.StateEntry, error)

	GetLeafCalls   atomic.Int64
	ListStateCalls atomic.Int64
}

// SetLeaf stores raw bytes at an address.
func (m *MockState) SetLeaf(address string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaves == nil {
		m.leaves = make(map[string][]byte)
	}
	m.leaves[address] = data
}

func (m *MockState) GetLeaf(ctx context.Context, address string) ([]byte, bool, error) {
	m.GetLeafCalls.Add(1)
	if m.GetLeafFn != nil {
		return m.GetLeafFn(ctx, address)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.leaves[address]
	return data, ok, nil
}

func (m *MockState) ListState(ctx context.Context, prefix string) ([]hbledger.StateEntry, error) {
	m.ListStateCalls.Add(1)
	if m.ListStateFn != nil {
		return m.ListStateFn(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	addrs := make([]string, 0, len(m.leaves))
	for addr := range m.leaves {
		if len(addr) >= len(prefix) && addr[:len(prefix)] == prefix {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	entries := make([]hbledger.StateEntry, 0, len(addrs))
	for _, addr := range addrs {
		entries = append(entries, hbledger.StateEntry{Address: addr, Data: m.leaves[addr]})
	}
	return entries, nil
}

// MockSubmitter records every submitted batch list.
type MockSubmitter struct {
	mu   sync.Mutex
	sent [][]byte

	SendBatchesFn func(ctx context.Context, batchList []byte) error

	SendCalls atomic.Int64
}

func (m *MockSubmitter) SendBatches(ctx context.Context, batchList []byte) error {
	m.SendCalls.Add(1)
	if m.SendBatchesFn != nil {
		return m.SendBatchesFn(ctx, batchList)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, batchList)
	return nil
}

// Sent returns the recorded batch lists in submission order.
func (m *MockSubmitter) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}
