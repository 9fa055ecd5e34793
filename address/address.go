// Package address implements the deterministic state-addressing
// codec for the hashblock ledger.
//
// A state address is a fixed-length hexadecimal string built from
// concatenated hash-derived segments. Leaf addresses — addresses
// identifying one concrete stored value rather than a range-query
// prefix — are always exactly 70 hex characters (35 bytes). Every
// truncation length in this package (6, 8, 2, 44, 45, 46, 52) is an
// exact contract value: any deviation breaks interoperability with
// existing on-chain addresses.
package address

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hashblock/hbledger"
)

// Namespace is the top-level namespace every hashblock address
// lives under.
const Namespace = "hashblock"

// Dimensions, the sub-classifications within a family.
const (
	DimensionUnit     = "unit"
	DimensionResource = "resource"
	DimensionUTXQ     = "utxq"
	DimensionMTXQ     = "mtxq"
)

// Well-known setting names governed by proposal/vote.
const (
	SettingAuthorizedKeys    = "authorized-keys"
	SettingApprovalThreshold = "approval-threshold"
)

// CandidatesKey addresses the pending-proposal list of a family.
const CandidatesKey = "candidates"

// Operation verbs for match-family entries.
const (
	VerbAsk        = "ask"
	VerbTell       = "tell"
	VerbOffer      = "offer"
	VerbAccept     = "accept"
	VerbCommitment = "commitment"
	VerbObligation = "obligation"
	VerbGive       = "give"
	VerbTake       = "take"
)

// Structural sizes of the codec.
const (
	// LeafLength is the exact length of every leaf address.
	LeafLength = 70
	// IdentLength is the exact length of an item identifier tail.
	IdentLength = 44
	// StatusOffset is the absolute index of the match status
	// character. All match-list prefixes are exactly 24 hex
	// characters, so the bit always lands here.
	StatusOffset = 24
)

// Match status characters at StatusOffset.
const (
	statusUnmatched = '0'
	statusMatched   = '1'
)

// Family is a closed enumeration of the ledger entry families, each
// carrying its precomputed hash constants. The two match variants
// share the "match" family hash but differ in dimension.
type Family uint8

const (
	FamilySetting Family = iota + 1
	FamilyUnit
	FamilyAsset
	FamilyMatchUTXQ
	FamilyMatchMTXQ
)

// Process-wide immutable hash constants, computed once at package
// init. Read-only after that; safe for concurrent use.
var (
	namespaceHash  = Hash6(Namespace)
	settingHash    = Hash6("setting")
	unitHash       = Hash6("unit")
	assetHash      = Hash6("asset")
	matchHash      = Hash6("match")
	candidatesHash = Hash6(CandidatesKey)

	// Filler digests pad leaf addresses to the fixed width. The
	// truncation points (52 vs 46) differ across address kinds with
	// no semantic meaning beyond padding; both are recomputed from
	// the same literal to stay byte-identical with on-chain data.
	fillerHex = HashHex("filler")
	filler52  = fillerHex[:52]
	filler46  = fillerHex[:46]
)

// Dimension discriminators for asset item addresses. Literal bytes,
// not hashes.
const (
	unitDiscriminator     = "00"
	resourceDiscriminator = "01"
)

// HashHex returns the full SHA-512 digest of the UTF-8 bytes of
// value, hex encoded.
func HashHex(value string) string {
	sum := sha512.Sum512([]byte(value))
	return hex.EncodeToString(sum[:])
}

// Hash6 returns the first 6 hex characters of the SHA-512 digest of
// value. Every segment uses this unless noted otherwise.
func Hash6(value string) string {
	return HashHex(value)[:6]
}

// hash8 returns the first 8 hex characters, used only by the
// unit/asset element scheme.
func hash8(value string) string {
	return HashHex(value)[:8]
}

// NamespaceHash returns the 6-character namespace prefix shared by
// every hashblock address.
func NamespaceHash() string { return namespaceHash }

func (f Family) String() string { return f.Name() }

// Name returns the family name hashed into the address prefix.
func (f Family) Name() string {
	switch f {
	case FamilySetting:
		return "setting"
	case FamilyUnit:
		return "unit"
	case FamilyAsset:
		return "asset"
	case FamilyMatchUTXQ, FamilyMatchMTXQ:
		return "match"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// Dimension returns the dimension carried by the match variants,
// and "" for the others.
func (f Family) Dimension() string {
	switch f {
	case FamilyMatchUTXQ:
		return DimensionUTXQ
	case FamilyMatchMTXQ:
		return DimensionMTXQ
	default:
		return ""
	}
}

// NamespaceName returns the transaction-family namespace string,
// e.g. "hashblock_asset".
func (f Family) NamespaceName() string {
	return Namespace + "_" + f.Name()
}

// Versions returns the family version list, current version first.
func (f Family) Versions() []string {
	switch f {
	case FamilySetting, FamilyMatchUTXQ, FamilyMatchMTXQ:
		return []string{"0.2.0"}
	case FamilyUnit, FamilyAsset:
		return []string{"0.3.0"}
	default:
		return nil
	}
}

// CurrentVersion returns the newest family version.
func (f Family) CurrentVersion() string {
	if v := f.Versions(); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Hash returns the precomputed 6-character family hash.
func (f Family) Hash() string {
	switch f {
	case FamilySetting:
		return settingHash
	case FamilyUnit:
		return unitHash
	case FamilyAsset:
		return assetHash
	case FamilyMatchUTXQ, FamilyMatchMTXQ:
		return matchHash
	default:
		return ""
	}
}

// NSFamily returns the 12-character namespace+family prefix that
// opens every address of this family.
func (f Family) NSFamily() string {
	return namespaceHash + f.Hash()
}

// IsFamily reports whether addr carries this family's prefix.
func (f Family) IsFamily(addr string) bool {
	return strings.HasPrefix(addr, f.NSFamily())
}

// ValidAddress reports whether addr is a well-formed address: a
// non-empty, even-length hexadecimal string.
func ValidAddress(addr string) bool {
	if len(addr) == 0 || len(addr)%2 != 0 {
		return false
	}
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ValidLeafAddress reports whether addr is a well-formed leaf
// address: valid and exactly 70 characters.
func ValidLeafAddress(addr string) bool {
	return ValidAddress(addr) && len(addr) == LeafLength
}

// LeafAddressType reports whether addr is a leaf address scoped
// under the given prefix.
func LeafAddressType(prefix, addr string) bool {
	return ValidLeafAddress(addr) && strings.HasPrefix(addr, prefix)
}

// validIdent rejects identifiers that are absent or not exactly 44
// hex characters.
func validIdent(ident string) bool {
	return len(ident) == IdentLength && ValidAddress(ident)
}

// KeyToAddress maps a free-form dotted key (e.g.
// "hashblock.events.vote.proposals") to its state address: the key
// is split on "." into at most 4 parts, padded with empty strings,
// and each part contributes a 6-character hash segment after the
// namespace prefix. 30 hex characters total. This path is
// independent of the family-specific schemes.
func KeyToAddress(dottedKey string) string {
	const maxParts = 4
	parts := strings.SplitN(dottedKey, ".", maxParts)
	var b strings.Builder
	b.Grow(6 * (maxParts + 1))
	b.WriteString(namespaceHash)
	for i := 0; i < maxParts; i++ {
		part := ""
		if i < len(parts) {
			part = parts[i]
		}
		b.WriteString(Hash6(part))
	}
	return b.String()
}

// SettingsAddress returns the 70-character leaf holding a
// dimension's settings under this family:
// ns+family(12) + dimension(6) + filler(52).
func (f Family) SettingsAddress(dimension string) string {
	return f.NSFamily() + Hash6(dimension) + filler52
}

// CandidatesAddress returns the 70-character leaf holding a
// dimension's pending proposals under this family:
// ns+family(12) + candidates(6) + dimension(6) + filler(46).
func (f Family) CandidatesAddress(dimension string) string {
	return f.NSFamily() + candidatesHash + Hash6(dimension) + filler46
}

// CandidatesBase returns the 18-character prefix scoping every
// candidates leaf of this family.
func (f Family) CandidatesBase() string {
	return f.NSFamily() + candidatesHash
}

// AssetPrefix returns the 14-character prefix for an asset
// dimension. The dimension contributes a 2-character literal
// discriminator, not a hash.
func (f Family) AssetPrefix(dimension string) string {
	disc := resourceDiscriminator
	if dimension == DimensionUnit {
		disc = unitDiscriminator
	}
	return f.NSFamily() + disc
}

// ItemSysKeyPrefix returns the 26-character prefix for one
// dimension/system/key asset class.
func (f Family) ItemSysKeyPrefix(dimension, system, key string) string {
	return f.AssetPrefix(dimension) + Hash6(system) + Hash6(key)
}

// ItemAddress returns the 70-character leaf for a specific asset
// item: ns+family(12) + discriminator(2) + system(6) + key(6) +
// ident(44). Fails when ident is absent or not 44 hex characters.
func (f Family) ItemAddress(dimension, system, key, ident string) (string, error) {
	if !validIdent(ident) {
		return "", hbledger.NewInvalidArgument(
			"ident %q is not %d hex characters for %s %s %s",
			ident, IdentLength, dimension, system, key)
	}
	return f.ItemSysKeyPrefix(dimension, system, key) + ident, nil
}

// ElementAddress returns the 70-character leaf for a unit or asset
// element under the family's own scheme: ns+family(12) + system(8) +
// key(6) + ident(44). The system segment uses an 8-character hash
// here, unlike ItemAddress.
func (f Family) ElementAddress(system, key, ident string) (string, error) {
	if f != FamilyUnit && f != FamilyAsset {
		return "", hbledger.NewInvalidArgument(
			"family %s has no element addresses", f.Name())
	}
	if !validIdent(ident) {
		return "", hbledger.NewInvalidArgument(
			"ident %q is not %d hex characters for %s %s %s",
			ident, IdentLength, f.Name(), system, key)
	}
	return f.NSFamily() + hash8(system) + Hash6(key) + ident, nil
}

// DimensionPrefix returns the 13-character match dimension prefix.
// The dimension contributes a SINGLE hex character taken at digest
// index 6 — not a 6-character segment. The asymmetry is load-bearing
// for existing on-chain data; do not widen it.
func (f Family) DimensionPrefix() string {
	return f.NSFamily() + string(HashHex(f.Dimension())[6])
}

// TxqDimension returns the 18-character prefix scoping one match
// dimension: ns+family(12) + dimension(6).
func TxqDimension(dimension string) string {
	return FamilyMatchUTXQ.NSFamily() + Hash6(dimension)
}

// MatchListAddress returns the 24-character prefix scoping all
// entries of one dimension and operation verb. Not a leaf; used as
// an input/output scope or combined with an identifier.
func MatchListAddress(dimension, verb string) string {
	return TxqDimension(dimension) + Hash6(verb)
}

// TxqItem returns the 70-character leaf for a match entry without a
// status bit: list(24) + identifier hash truncated to 46.
func TxqItem(dimension, verb, ident string) string {
	return MatchListAddress(dimension, verb) + HashHex(ident)[:46]
}

// MatchItemAddress returns the 70-character leaf for a match entry
// carrying a status bit at StatusOffset: list(24) + status(1) +
// identifier hash truncated to 45.
func MatchItemAddress(dimension, verb, ident string, matched bool) string {
	status := string(statusUnmatched)
	if matched {
		status = string(statusMatched)
	}
	return MatchListAddress(dimension, verb) + status + HashHex(ident)[:45]
}

// IsMatched reports whether a match-family leaf address encodes the
// matched status.
func IsMatched(addr string) bool {
	return len(addr) > StatusOffset && addr[StatusOffset] == statusMatched
}

// FlipMatchStatus returns a new address identical to addr except for
// the status character at StatusOffset. The input must be a valid
// 70-character match-family leaf; addresses are immutable values and
// the status flip is the only permitted derivation from an existing
// address.
func FlipMatchStatus(addr string, toMatched bool) (string, error) {
	if !ValidLeafAddress(addr) {
		return "", hbledger.NewInvalidArgument(
			"%q is not a valid %d-character leaf address", addr, LeafLength)
	}
	if !FamilyMatchUTXQ.IsFamily(addr) {
		return "", hbledger.NewInvalidArgument(
			"%q is not a match-family address", addr)
	}
	status := byte(statusUnmatched)
	if toMatched {
		status = statusMatched
	}
	b := []byte(addr)
	b[StatusOffset] = status
	return string(b), nil
}
