package types

// EventVote casts one stance on a pending candidate, addressed by
// its proposal id.
type EventVote struct {
	ProposalID string    `cramberry:"1"`
	Vote       VoteValue `cramberry:"2"`
}
