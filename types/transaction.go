package types

// TransactionHeader binds a payload digest to its signer, family,
// and input/output address scopes. The header is serialized once and
// that exact byte sequence is what gets signed; Transaction.Header
// therefore carries the serialized form, never the struct.
type TransactionHeader struct {
	SignerPublicKey  string   `cramberry:"1"`
	FamilyName       string   `cramberry:"2"`
	FamilyVersion    string   `cramberry:"3"`
	Inputs           []string `cramberry:"4"`
	Outputs          []string `cramberry:"5"`
	Dependencies     []string `cramberry:"6"`
	PayloadSHA512    string   `cramberry:"7"`
	BatcherPublicKey string   `cramberry:"8"`
}

// Transaction is a signed header plus its payload. HeaderSignature
// doubles as the transaction id referenced by batch headers.
type Transaction struct {
	Header          []byte `cramberry:"1"`
	HeaderSignature string `cramberry:"2"`
	Payload         []byte `cramberry:"3"`
}
