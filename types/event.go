package types

// Quantity is an economic quantity vector: a magnitude qualified by
// a unit-of-measure and a resource, each encoded as a prime product
// (or 1).
type Quantity struct {
	Value    uint64 `cramberry:"1"`
	Unit     uint64 `cramberry:"2"`
	Resource uint64 `cramberry:"3"`
}

// Ratio is the conversion between an initiating quantity and its
// reciprocating quantity.
type Ratio struct {
	Numerator   Quantity `cramberry:"1"`
	Denominator Quantity `cramberry:"2"`
}

// InitiateEvent opens one side of a matched pair (a UTXQ entry). It
// stays visible in unmatched listings until a reciprocating event
// references it.
type InitiateEvent struct {
	Plus     string   `cramberry:"1"`
	Minus    string   `cramberry:"2"`
	Quantity Quantity `cramberry:"3"`
}

// ReciprocateEvent closes a matched pair (an MTXQ entry). It carries
// the matched address of the initiating entry it reciprocates.
type ReciprocateEvent struct {
	Plus            string   `cramberry:"1"`
	Minus           string   `cramberry:"2"`
	Quantity        Quantity `cramberry:"3"`
	Ratio           Ratio    `cramberry:"4"`
	InitiateAddress string   `cramberry:"5"`
}
