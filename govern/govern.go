// Package govern builds proposal and vote payloads for shared ledger
// configuration — the authorized-keys list and the approval
// threshold — and evaluates client-visible vote state.
//
// The resolution of proposals (counting votes, applying accepted
// values) happens in the external transaction processor; this
// package only constructs well-formed transactions and performs the
// advisory precondition checks that give fast local feedback.
package govern

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/address"
	"github.com/hashblock/hbledger/assemble"
	"github.com/hashblock/hbledger/types"
)

// Transaction family handling governance payloads.
const (
	FamilyName    = "hashblock_events"
	FamilyVersion = "0.1.0"
)

// Well-known dotted configuration keys.
const (
	KeyProposals         = "hashblock.events.vote.proposals"
	KeyAuthorizedKeys    = "hashblock.events.vote.authorized_keys"
	KeyApprovalThreshold = "hashblock.events.vote.approval_threshold"
)

// ProposalsAddress returns the state address of the pending
// candidates blob.
func ProposalsAddress() string {
	return address.KeyToAddress(KeyProposals)
}

// inputAddresses scopes a governance transaction: the proposal list,
// both governing settings, and the key under change.
func inputAddresses(code string) []string {
	return []string{
		address.KeyToAddress(KeyProposals),
		address.KeyToAddress(KeyAuthorizedKeys),
		address.KeyToAddress(KeyApprovalThreshold),
		address.KeyToAddress(code),
	}
}

func outputAddresses(code string) []string {
	return []string{
		address.KeyToAddress(KeyProposals),
		address.KeyToAddress(code),
	}
}

// nonce returns the uniqueness token for a new proposal: the current
// UTC timestamp with microsecond precision.
func nonce() string {
	now := time.Now().UTC()
	return fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/1000)
}

// BuildProposal wraps a configuration change into a signed
// propose-action transaction.
func BuildProposal(signer hbledger.Signer, code, value string) (types.Transaction, error) {
	proposal, err := cramberry.Marshal(types.EventProposal{
		Code:  code,
		Value: value,
		Nonce: nonce(),
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("govern: marshal proposal: %w", err)
	}
	payload, err := cramberry.Marshal(types.EventPayload{
		Data:   proposal,
		Action: types.ActionPropose,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("govern: marshal payload: %w", err)
	}
	return assemble.NewTransaction(
		signer, FamilyName, FamilyVersion,
		inputAddresses(code), outputAddresses(code), payload)
}

// BuildVote wraps a stance on a pending candidate into a signed
// vote-action transaction, addressed like the original proposal.
func BuildVote(signer hbledger.Signer, proposalID, code string, accept bool) (types.Transaction, error) {
	stance := types.VoteReject
	if accept {
		stance = types.VoteAccept
	}
	vote, err := cramberry.Marshal(types.EventVote{
		ProposalID: proposalID,
		Vote:       stance,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("govern: marshal vote: %w", err)
	}
	payload, err := cramberry.Marshal(types.EventPayload{
		Data:   vote,
		Action: types.ActionVote,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("govern: marshal payload: %w", err)
	}
	return assemble.NewTransaction(
		signer, FamilyName, FamilyVersion,
		inputAddresses(code), outputAddresses(code), payload)
}

// ListCandidates filters candidates: one is included iff its
// proposal code starts with codePrefix and, when publicKey is
// non-empty, its first recorded vote — the proposer's — carries that
// key. Source order is preserved.
func ListCandidates(candidates []types.EventCandidate, publicKey, codePrefix string) []types.EventCandidate {
	out := make([]types.EventCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !strings.HasPrefix(c.Proposal.Code, codePrefix) {
			continue
		}
		if publicKey != "" && (len(c.Votes) == 0 || c.Votes[0].PublicKey != publicKey) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FindCandidate locates a pending candidate by proposal id.
func FindCandidate(candidates []types.EventCandidate, proposalID string) (types.EventCandidate, error) {
	for _, c := range candidates {
		if c.ProposalID == proposalID {
			return c, nil
		}
	}
	return types.EventCandidate{}, hbledger.NewPreconditionFailed(
		"no proposal exists with the given id")
}

// CastVote builds a signed vote transaction for a candidate after
// checking that the signer has not voted on it already. The check is
// advisory — the processor enforces it authoritatively — but it must
// run before any transaction is constructed.
func CastVote(signer hbledger.Signer, candidate types.EventCandidate, accept bool) (types.Transaction, error) {
	voter := signer.PublicKey()
	for _, rec := range candidate.Votes {
		if rec.PublicKey == voter {
			return types.Transaction{}, hbledger.NewPreconditionFailed(
				"a vote has already been recorded with this signing key")
		}
	}
	return BuildVote(signer, candidate.ProposalID, candidate.Proposal.Code, accept)
}

// FetchCandidates loads and parses the pending candidates blob. An
// absent leaf yields an empty set, not an error.
func FetchCandidates(ctx context.Context, reader hbledger.StateReader) (types.EventCandidates, error) {
	data, found, err := reader.GetLeaf(ctx, ProposalsAddress())
	if err != nil {
		return types.EventCandidates{}, err
	}
	if !found {
		return types.EventCandidates{}, nil
	}
	var candidates types.EventCandidates
	if err := cramberry.Unmarshal(data, &candidates); err != nil {
		return types.EventCandidates{}, fmt.Errorf("govern: parse candidates: %w", err)
	}
	return candidates, nil
}

// BuildGenesisBatch constructs the genesis configuration batch: an
// authorized-keys proposal (always including the signer's own public
// key) and, when threshold is non-nil, an approval-threshold
// proposal. The threshold is validated against the caller-supplied
// key list.
func BuildGenesisBatch(signer hbledger.Signer, authorizedKeys []string, threshold *int) (types.BatchList, error) {
	pub := signer.PublicKey()

	keys := slices.Clone(authorizedKeys)
	if len(keys) == 0 {
		keys = []string{pub}
	}

	if threshold != nil {
		if *threshold < 1 {
			return types.BatchList{}, hbledger.NewInvalidArgument(
				"approval threshold must not be less than 1")
		}
		if *threshold > len(keys) {
			return types.BatchList{}, hbledger.NewInvalidArgument(
				"approval threshold must not be greater than the number of authorized keys")
		}
	}

	if !slices.Contains(keys, pub) {
		keys = append(keys, pub)
	}

	txns := make([]types.Transaction, 0, 2)
	txn, err := BuildProposal(signer, KeyAuthorizedKeys, strings.Join(keys, ","))
	if err != nil {
		return types.BatchList{}, err
	}
	txns = append(txns, txn)

	if threshold != nil {
		txn, err := BuildProposal(signer, KeyApprovalThreshold, strconv.Itoa(*threshold))
		if err != nil {
			return types.BatchList{}, err
		}
		txns = append(txns, txn)
	}

	batch, err := assemble.NewBatch(signer, txns)
	if err != nil {
		return types.BatchList{}, err
	}
	return assemble.NewBatchList(batch), nil
}
