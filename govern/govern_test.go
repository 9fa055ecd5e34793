package govern_test

import (
	"context"
	"strings"
	"testing"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/hashblock/hbledger"
	"github.com/hashblock/hbledger/address"
	"github.com/hashblock/hbledger/govern"
	hbtest "github.com/hashblock/hbledger/testing"
	"github.com/hashblock/hbledger/types"
)

func intPtr(v int) *int { return &v }

func decodePayload(t *testing.T, txn types.Transaction) (types.EventPayload, types.TransactionHeader) {
	t.Helper()
	var payload types.EventPayload
	if err := cramberry.Unmarshal(txn.Payload, &payload); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	var header types.TransactionHeader
	if err := cramberry.Unmarshal(txn.Header, &header); err != nil {
		t.Fatalf("header does not parse: %v", err)
	}
	return payload, header
}

func TestBuildProposal(t *testing.T) {
	signer := &hbtest.MockSigner{}

	txn, err := govern.BuildProposal(signer, govern.KeyAuthorizedKeys, "02aa,03bb")
	if err != nil {
		t.Fatalf("BuildProposal: %v", err)
	}

	payload, header := decodePayload(t, txn)
	if payload.Action != types.ActionPropose {
		t.Errorf("action = %d, want propose", payload.Action)
	}

	var proposal types.EventProposal
	if err := cramberry.Unmarshal(payload.Data, &proposal); err != nil {
		t.Fatalf("proposal does not parse: %v", err)
	}
	if proposal.Code != govern.KeyAuthorizedKeys || proposal.Value != "02aa,03bb" {
		t.Errorf("proposal fields wrong: %+v", proposal)
	}
	if proposal.Nonce == "" {
		t.Error("proposal nonce must be set")
	}

	if header.FamilyName != govern.FamilyName || header.FamilyVersion != govern.FamilyVersion {
		t.Errorf("family = %s %s", header.FamilyName, header.FamilyVersion)
	}
	wantInputs := []string{
		address.KeyToAddress(govern.KeyProposals),
		address.KeyToAddress(govern.KeyAuthorizedKeys),
		address.KeyToAddress(govern.KeyApprovalThreshold),
		address.KeyToAddress(govern.KeyAuthorizedKeys),
	}
	if len(header.Inputs) != len(wantInputs) {
		t.Fatalf("inputs length = %d, want %d", len(header.Inputs), len(wantInputs))
	}
	for i := range wantInputs {
		if header.Inputs[i] != wantInputs[i] {
			t.Errorf("input %d = %q, want %q", i, header.Inputs[i], wantInputs[i])
		}
	}
	if len(header.Outputs) != 2 || header.Outputs[0] != address.KeyToAddress(govern.KeyProposals) {
		t.Error("outputs must scope the proposal list and the changed key")
	}
}

func TestBuildVote(t *testing.T) {
	signer := &hbtest.MockSigner{}
	txn, err := govern.BuildVote(signer, "prop-9", "a.b", false)
	if err != nil {
		t.Fatalf("BuildVote: %v", err)
	}
	payload, _ := decodePayload(t, txn)
	if payload.Action != types.ActionVote {
		t.Errorf("action = %d, want vote", payload.Action)
	}
	var vote types.EventVote
	if err := cramberry.Unmarshal(payload.Data, &vote); err != nil {
		t.Fatal(err)
	}
	if vote.ProposalID != "prop-9" || vote.Vote != types.VoteReject {
		t.Errorf("vote fields wrong: %+v", vote)
	}
}

func TestListCandidatesFilter(t *testing.T) {
	c1 := types.EventCandidate{
		ProposalID: "1",
		Proposal:   types.EventProposal{Code: "a.b"},
		Votes:      []types.VoteRecord{{PublicKey: "K1", Vote: types.VoteAccept}},
	}
	c2 := types.EventCandidate{
		ProposalID: "2",
		Proposal:   types.EventProposal{Code: "a.c"},
		Votes:      []types.VoteRecord{{PublicKey: "K2", Vote: types.VoteAccept}},
	}
	all := []types.EventCandidate{c1, c2}

	got := govern.ListCandidates(all, "K1", "a.")
	if len(got) != 1 || got[0].ProposalID != "1" {
		t.Fatalf("filter by key+prefix = %+v, want exactly [C1]", got)
	}

	if got := govern.ListCandidates(all, "", "a."); len(got) != 2 {
		t.Fatalf("prefix-only filter returned %d candidates, want 2", len(got))
	}
	if got := govern.ListCandidates(all, "", "a.c"); len(got) != 1 || got[0].ProposalID != "2" {
		t.Fatal("narrower prefix must select only C2")
	}
	if got := govern.ListCandidates(all, "K3", ""); len(got) != 0 {
		t.Fatal("unknown key must select nothing")
	}

	// A candidate without votes never matches a key filter.
	noVotes := []types.EventCandidate{{ProposalID: "3", Proposal: types.EventProposal{Code: "a.d"}}}
	if got := govern.ListCandidates(noVotes, "K1", ""); len(got) != 0 {
		t.Fatal("vote-less candidate must not match a key filter")
	}
}

func TestListCandidatesPreservesOrder(t *testing.T) {
	var all []types.EventCandidate
	for _, id := range []string{"z", "a", "m"} {
		all = append(all, types.EventCandidate{
			ProposalID: id,
			Proposal:   types.EventProposal{Code: "x." + id},
		})
	}
	got := govern.ListCandidates(all, "", "x.")
	if len(got) != 3 || got[0].ProposalID != "z" || got[1].ProposalID != "a" || got[2].ProposalID != "m" {
		t.Fatal("source order must be preserved")
	}
}

func TestFindCandidate(t *testing.T) {
	all := []types.EventCandidate{{ProposalID: "1"}, {ProposalID: "2"}}
	c, err := govern.FindCandidate(all, "2")
	if err != nil {
		t.Fatalf("FindCandidate: %v", err)
	}
	if c.ProposalID != "2" {
		t.Fatal("wrong candidate returned")
	}
	_, err = govern.FindCandidate(all, "9")
	if err == nil {
		t.Fatal("expected error for unknown proposal id")
	}
	if _, ok := hbledger.IsPreconditionFailed(err); !ok {
		t.Fatalf("error kind = %T, want PreconditionFailedError", err)
	}
}

func TestCastVoteDuplicateDetection(t *testing.T) {
	signer := &hbtest.MockSigner{}
	candidate := types.EventCandidate{
		ProposalID: "1",
		Proposal:   types.EventProposal{Code: "a.b"},
		Votes: []types.VoteRecord{
			{PublicKey: hbtest.TestPublicKey, Vote: types.VoteAccept},
		},
	}

	for _, accept := range []bool{true, false} {
		_, err := govern.CastVote(signer, candidate, accept)
		if err == nil {
			t.Fatalf("CastVote(accept=%v) must fail on duplicate vote", accept)
		}
		if _, ok := hbledger.IsPreconditionFailed(err); !ok {
			t.Fatalf("error kind = %T, want PreconditionFailedError", err)
		}
	}
	if signer.SignCalls.Load() != 0 {
		t.Fatal("no transaction may be built when the duplicate check fails")
	}

	fresh := types.EventCandidate{
		ProposalID: "1",
		Proposal:   types.EventProposal{Code: "a.b"},
		Votes:      []types.VoteRecord{{PublicKey: "someone-else", Vote: types.VoteAccept}},
	}
	if _, err := govern.CastVote(signer, fresh, true); err != nil {
		t.Fatalf("CastVote on fresh candidate: %v", err)
	}
}

func TestFetchCandidates(t *testing.T) {
	state := &hbtest.MockState{}
	ctx := context.Background()

	// Absent leaf yields an empty set.
	got, err := govern.FetchCandidates(ctx, state)
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(got.Candidates) != 0 {
		t.Fatal("expected empty candidate set for absent leaf")
	}

	blob, err := cramberry.Marshal(types.EventCandidates{
		Candidates: []types.EventCandidate{{ProposalID: "p1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	state.SetLeaf(govern.ProposalsAddress(), blob)

	got, err = govern.FetchCandidates(ctx, state)
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(got.Candidates) != 1 || got.Candidates[0].ProposalID != "p1" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestBuildGenesisBatchThresholdValidation(t *testing.T) {
	signer := &hbtest.MockSigner{}

	// Threshold below 1 always fails.
	_, err := govern.BuildGenesisBatch(signer, nil, intPtr(0))
	if err == nil {
		t.Fatal("threshold 0 must fail")
	}
	if _, ok := hbledger.IsInvalidArgument(err); !ok {
		t.Fatalf("error kind = %T, want InvalidArgumentError", err)
	}

	// Threshold above the supplied key count fails.
	if _, err := govern.BuildGenesisBatch(signer, []string{"k1", "k2"}, intPtr(3)); err == nil {
		t.Fatal("threshold above key count must fail")
	}

	// Empty key list with threshold 1 succeeds: the list defaults to
	// the signer's own key.
	list, err := govern.BuildGenesisBatch(signer, nil, intPtr(1))
	if err != nil {
		t.Fatalf("BuildGenesisBatch: %v", err)
	}
	if len(list.Batches) != 1 || len(list.Batches[0].Transactions) != 2 {
		t.Fatal("expected one batch with key and threshold proposals")
	}
}

func TestBuildGenesisBatchIncludesSignerKey(t *testing.T) {
	signer := &hbtest.MockSigner{}

	list, err := govern.BuildGenesisBatch(signer, []string{"k1", "k2"}, nil)
	if err != nil {
		t.Fatalf("BuildGenesisBatch: %v", err)
	}
	if len(list.Batches) != 1 || len(list.Batches[0].Transactions) != 1 {
		t.Fatal("expected one batch with one proposal")
	}

	var payload types.EventPayload
	if err := cramberry.Unmarshal(list.Batches[0].Transactions[0].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	var proposal types.EventProposal
	if err := cramberry.Unmarshal(payload.Data, &proposal); err != nil {
		t.Fatal(err)
	}
	if proposal.Code != govern.KeyAuthorizedKeys {
		t.Errorf("code = %q", proposal.Code)
	}
	keys := strings.Split(proposal.Value, ",")
	if len(keys) != 3 || keys[2] != hbtest.TestPublicKey {
		t.Fatalf("authorized keys %v must end with the signer's own key", keys)
	}
}
