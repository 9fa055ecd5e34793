// Package signing implements the Signer capability with secp256k1
// keys: hex key-file loading, compact 64-byte signatures over
// SHA-256, and key generation.
package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/hashblock/hbledger"
)

// Compile-time interface check.
var _ hbledger.Signer = (*KeySigner)(nil)

// privateKeySize is the raw secp256k1 private key size in bytes.
const privateKeySize = 32

// KeySigner signs with a secp256k1 private key held in memory.
type KeySigner struct {
	priv *secp256k1.PrivateKey
	pub  string
}

// FromHex builds a signer from a hex-encoded 32-byte private key.
func FromHex(hexKey string) (*KeySigner, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, hbledger.NewInvalidArgument("private key is not valid hex: %v", err)
	}
	if len(raw) != privateKeySize {
		return nil, hbledger.NewInvalidArgument(
			"private key is %d bytes, want %d", len(raw), privateKeySize)
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	return newKeySigner(priv), nil
}

// Generate creates a signer with a fresh random keypair.
func Generate() (*KeySigner, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return newKeySigner(priv), nil
}

func newKeySigner(priv *secp256k1.PrivateKey) *KeySigner {
	return &KeySigner{
		priv: priv,
		pub:  hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}
}

// Sign returns the hex encoding of the 64-byte compact signature
// (R || S) over the SHA-256 digest of data.
func (s *KeySigner) Sign(data []byte) (string, error) {
	digest := sha256.Sum256(data)
	sig := ecdsa.Sign(s.priv, digest[:])
	r := sig.R()
	v := sig.S()
	rb := r.Bytes()
	sb := v.Bytes()
	out := make([]byte, 0, len(rb)+len(sb))
	out = append(out, rb[:]...)
	out = append(out, sb[:]...)
	return hex.EncodeToString(out), nil
}

// PublicKey returns the hex encoding of the compressed public key.
func (s *KeySigner) PublicKey() string { return s.pub }

// PrivateHex returns the hex encoding of the raw private key, as
// stored in key files.
func (s *KeySigner) PrivateHex() string {
	return hex.EncodeToString(s.priv.Serialize())
}

// Verify checks a compact hex signature produced by Sign against a
// compressed hex public key. Used by tests and by callers that need
// local verification; the ledger performs the authoritative check.
func Verify(pubHex string, data []byte, sigHex string) bool {
	pubRaw, err := hex.DecodeString(pubHex)
	if err != nil {
		return false
	}
	pub, err := secp256k1.ParsePubKey(pubRaw)
	if err != nil {
		return false
	}
	sigRaw, err := hex.DecodeString(sigHex)
	if err != nil || len(sigRaw) != 64 {
		return false
	}
	var r, v secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sigRaw[:32]); overflow {
		return false
	}
	if overflow := v.SetByteSlice(sigRaw[32:]); overflow {
		return false
	}
	digest := sha256.Sum256(data)
	return ecdsa.NewSignature(&r, &v).Verify(digest[:], pub)
}

// LoadKeyFile reads a hex private key from a file and builds a
// signer from it.
func LoadKeyFile(path string) (*KeySigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, hbledger.NewIOError("unable to read key file", path, err)
	}
	return FromHex(string(raw))
}

// DefaultKeyPath returns the conventional private-key location for a
// user: ~/.hashblock/keys/<name>.priv.
func DefaultKeyPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hashblock", "keys", name+".priv"), nil
}

// DefaultKeyDir returns the conventional key directory.
func DefaultKeyDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hashblock", "keys"), nil
}

// WriteKeyFiles writes <name>.priv and <name>.pub under dir and
// returns their paths. Existing files are refused unless force is
// set; the private key file is created with owner/group permissions
// only.
func WriteKeyFiles(s *KeySigner, dir, name string, force bool) (privPath, pubPath string, err error) {
	privPath = filepath.Join(dir, name+".priv")
	pubPath = filepath.Join(dir, name+".pub")

	if !force {
		for _, p := range []string{privPath, pubPath} {
			if _, statErr := os.Stat(p); statErr == nil {
				return "", "", hbledger.NewPreconditionFailed(
					"file exists, rerun with --force to overwrite: %s", p)
			}
		}
	}

	if err := os.WriteFile(privPath, []byte(s.PrivateHex()+"\n"), 0o640); err != nil {
		return "", "", hbledger.NewIOError("unable to write key file", privPath, err)
	}
	if err := os.WriteFile(pubPath, []byte(s.PublicKey()+"\n"), 0o644); err != nil {
		return "", "", hbledger.NewIOError("unable to write key file", pubPath, err)
	}
	return privPath, pubPath, nil
}
