package types

// BatchHeader lists the transaction ids of a batch in execution
// order. Order may affect external validation semantics and is
// preserved exactly as constructed.
type BatchHeader struct {
	SignerPublicKey string   `cramberry:"1"`
	TransactionIDs  []string `cramberry:"2"`
}

// Batch is an atomically-submitted, signed group of transactions.
// Like Transaction.Header, Header carries the serialized bytes the
// signature covers.
type Batch struct {
	Header          []byte        `cramberry:"1"`
	HeaderSignature string        `cramberry:"2"`
	Transactions    []Transaction `cramberry:"3"`
}

// BatchList is the unit of submission to a validator.
type BatchList struct {
	Batches []Batch `cramberry:"1"`
}
