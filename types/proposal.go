package types

// EventProposal is a request to change one configuration value,
// identified by its dotted code. The nonce makes otherwise identical
// proposals distinct.
type EventProposal struct {
	Code  string `cramberry:"1"`
	Value string `cramberry:"2"`
	Nonce string `cramberry:"3"`
}

// VoteRecord is one public key's recorded stance on a candidate.
// A given public key appears at most once per candidate.
type VoteRecord struct {
	PublicKey string    `cramberry:"1"`
	Vote      VoteValue `cramberry:"2"`
}

// EventCandidate is a pending proposal together with its accumulated
// votes. The first recorded vote belongs to the proposer.
type EventCandidate struct {
	ProposalID string       `cramberry:"1"`
	Proposal   EventProposal `cramberry:"2"`
	Votes      []VoteRecord `cramberry:"3"`
}

// EventCandidates is the on-chain list of pending candidates,
// in insertion order.
type EventCandidates struct {
	Candidates []EventCandidate `cramberry:"1"`
}
