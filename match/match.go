// Package match builds initiating (UTXQ) and reciprocating (MTXQ)
// ledger entries and encodes their matched state.
//
// The client-visible state machine per pair is Unmatched → Matched.
// The address encoding technically permits the reverse flip; both
// directions are surfaced through the address package and the
// external processor's validation is authoritative.
package match

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/google/uuid"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/address"
	"github.com/hashblock/hbledger/assemble"
	"github.com/hashblock/hbledger/types"
)

// Transaction family handling match payloads.
const (
	FamilyName    = "hashblock_match"
	FamilyVersion = "0.2.0"
)

// NewIdentifier creates a fresh 44-hex-character item identifier
// from a random UUID.
func NewIdentifier() string {
	u := uuid.New()
	sum := sha512.Sum512(u[:])
	return hex.EncodeToString(sum[:])[:address.IdentLength]
}

// BuildInitiate constructs a signed transaction opening an
// initiating event under the given operation verb. The returned
// address is the event's unmatched UTXQ leaf — the id a later
// reciprocating event references.
func BuildInitiate(signer hbledger.Signer, verb, ident string, quantity types.Quantity) (types.Transaction, string, error) {
	leaf := address.MatchItemAddress(address.DimensionUTXQ, verb, ident, false)

	event, err := cramberry.Marshal(types.InitiateEvent{Quantity: quantity})
	if err != nil {
		return types.Transaction{}, "", fmt.Errorf("match: marshal initiate event: %w", err)
	}
	payload, err := cramberry.Marshal(types.EventPayload{
		Data:   event,
		Action: types.ActionInitiate,
	})
	if err != nil {
		return types.Transaction{}, "", fmt.Errorf("match: marshal payload: %w", err)
	}

	list := address.MatchListAddress(address.DimensionUTXQ, verb)
	txn, err := assemble.NewTransaction(
		signer, FamilyName, FamilyVersion,
		[]string{list, leaf}, []string{leaf}, payload)
	if err != nil {
		return types.Transaction{}, "", err
	}
	return txn, leaf, nil
}

// BuildReciprocate constructs a signed transaction reciprocating the
// initiating event stored at initiateAddr. Before anything is built
// it checks — against live state — that the initiating entry exists
// and is unmatched; a transaction doomed to be rejected by the
// processor is never assembled.
//
// The returned address is the new MTXQ leaf.
func BuildReciprocate(ctx context.Context, signer hbledger.Signer, reader hbledger.StateReader, verb, initiateAddr string, quantity types.Quantity, ratio types.Ratio) (types.Transaction, string, error) {
	if !address.ValidLeafAddress(initiateAddr) || !address.FamilyMatchUTXQ.IsFamily(initiateAddr) {
		return types.Transaction{}, "", hbledger.NewInvalidArgument(
			"%q is not a match-family leaf address", initiateAddr)
	}

	_, found, err := reader.GetLeaf(ctx, initiateAddr)
	if err != nil {
		return types.Transaction{}, "", err
	}
	if !found || address.IsMatched(initiateAddr) {
		return types.Transaction{}, "", hbledger.NewPreconditionFailed(
			"no unmatched initiating event at %s", initiateAddr)
	}

	matched, err := address.FlipMatchStatus(initiateAddr, true)
	if err != nil {
		return types.Transaction{}, "", err
	}
	leaf := address.TxqItem(address.DimensionMTXQ, verb, NewIdentifier())

	event, err := cramberry.Marshal(types.ReciprocateEvent{
		Quantity:        quantity,
		Ratio:           ratio,
		InitiateAddress: matched,
	})
	if err != nil {
		return types.Transaction{}, "", fmt.Errorf("match: marshal reciprocate event: %w", err)
	}
	payload, err := cramberry.Marshal(types.EventPayload{
		Data:   event,
		Action: types.ActionReciprocate,
	})
	if err != nil {
		return types.Transaction{}, "", fmt.Errorf("match: marshal payload: %w", err)
	}

	scope := []string{initiateAddr, matched, leaf}
	txn, err := assemble.NewTransaction(
		signer, FamilyName, FamilyVersion, scope, scope, payload)
	if err != nil {
		return types.Transaction{}, "", err
	}
	return txn, leaf, nil
}

// UnmatchedEvent is one initiating event awaiting reciprocation.
type UnmatchedEvent struct {
	Address string
	Event   types.InitiateEvent
}

// ListUnmatched enumerates the initiating events of one verb that no
// reciprocating event has referenced yet.
func ListUnmatched(ctx context.Context, lister hbledger.StateLister, verb string) ([]UnmatchedEvent, error) {
	prefix := address.MatchListAddress(address.DimensionUTXQ, verb)
	entries, err := lister.ListState(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]UnmatchedEvent, 0, len(entries))
	for _, entry := range entries {
		if address.IsMatched(entry.Address) {
			continue
		}
		var payload types.EventPayload
		if err := cramberry.Unmarshal(entry.Data, &payload); err != nil {
			return nil, fmt.Errorf("match: parse entry %s: %w", entry.Address, err)
		}
		var event types.InitiateEvent
		if err := cramberry.Unmarshal(payload.Data, &event); err != nil {
			return nil, fmt.Errorf("match: parse initiate event %s: %w", entry.Address, err)
		}
		out = append(out, UnmatchedEvent{Address: entry.Address, Event: event})
	}
	return out, nil
}

// quantityRe is the CLI quantity-vector grammar:
// [value][unit][resource], where unit and resource are prime
// products or 1.
var quantityRe = regexp.MustCompile(`^\[(\d+)\]\[(\d+)\]\[(\d+)\]$`)

// ParseQuantity parses one quantity vector.
func ParseQuantity(s string) (types.Quantity, error) {
	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return types.Quantity{}, hbledger.NewInvalidArgument(
			"quantity %q does not match [value][unit][resource]", s)
	}
	value, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return types.Quantity{}, hbledger.NewInvalidArgument("quantity value %q: %v", m[1], err)
	}
	unit, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return types.Quantity{}, hbledger.NewInvalidArgument("quantity unit %q: %v", m[2], err)
	}
	resource, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return types.Quantity{}, hbledger.NewInvalidArgument("quantity resource %q: %v", m[3], err)
	}
	return types.Quantity{Value: value, Unit: unit, Resource: resource}, nil
}

// ParseQuantityRatio parses the three vectors of a reciprocating
// event: the reciprocating quantity, the ratio numerator, and the
// ratio denominator.
func ParseQuantityRatio(vectors []string) (types.Quantity, types.Ratio, error) {
	if len(vectors) != 3 {
		return types.Quantity{}, types.Ratio{}, hbledger.NewInvalidArgument(
			"reciprocation takes 3 quantity vectors, got %d", len(vectors))
	}
	quantity, err := ParseQuantity(vectors[0])
	if err != nil {
		return types.Quantity{}, types.Ratio{}, err
	}
	numerator, err := ParseQuantity(vectors[1])
	if err != nil {
		return types.Quantity{}, types.Ratio{}, err
	}
	denominator, err := ParseQuantity(vectors[2])
	if err != nil {
		return types.Quantity{}, types.Ratio{}, err
	}
	return quantity, types.Ratio{Numerator: numerator, Denominator: denominator}, nil
}
