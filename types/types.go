// Package types defines the wire contract of the hashblock client
// protocol: every payload, header, and batch structure exchanged
// with the ledger.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Field numbers are part of the
// wire schema and must never be renumbered. Transport concerns are
// handled in the transport packages.
package types

// EventAction selects the state transition a payload requests.
type EventAction uint8

const (
	ActionPropose EventAction = iota + 1
	ActionVote
	ActionInitiate
	ActionReciprocate
)

// VoteValue is a recorded stance on a proposal.
type VoteValue uint8

const (
	VoteUnset VoteValue = iota
	VoteAccept
	VoteReject
	VoteCounted
)

// EventPayload wraps a serialized action-specific message together
// with the action discriminator. The transaction payload is the
// serialized form of this envelope.
type EventPayload struct {
	Data   []byte      `cramberry:"1"`
	Action EventAction `cramberry:"2"`
}
