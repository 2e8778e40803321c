package pgpengine

import (
	"crypto"
	"fmt"
	"time"
)

// TrustLevel is the ordered confidence in an identity binding.
type TrustLevel uint8

// Trust levels, in increasing order.
const (
	TrustNone TrustLevel = iota
	TrustMarginal
	TrustFull
	TrustUltimate
)

// String returns the human-readable name of the trust level.
func (t TrustLevel) String() string {
	switch t {
	case TrustNone:
		return "none"
	case TrustMarginal:
		return "marginal"
	case TrustFull:
		return "full"
	case TrustUltimate:
		return "ultimate"
	default:
		return fmt.Sprintf("TrustLevel(%d)", uint8(t))
	}
}

// Identity is an email binding asserted by a key, with its own
// trust and validity state.
type Identity struct {
	Name    string     `json:"name,omitempty" yaml:"name,omitempty"`
	Email   string     `json:"email" yaml:"email"`
	Revoked bool       `json:"revoked,omitempty" yaml:"revoked,omitempty"`
	Invalid bool       `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	Trust   TrustLevel `json:"trust" yaml:"trust"`
}

// Key is a read-only projection of an engine key. It is fetched fresh
// from the engine per call and never cached or mutated locally, so trust
// decisions never read stale revocation data.
type Key struct {
	Fingerprint string     `json:"fingerprint" yaml:"fingerprint"`
	Identities  []Identity `json:"identities" yaml:"identities"`

	CanEncrypt bool `json:"can_encrypt" yaml:"can_encrypt"`
	CanSign    bool `json:"can_sign" yaml:"can_sign"`

	Revoked bool `json:"revoked,omitempty" yaml:"revoked,omitempty"`
	Expired bool `json:"expired,omitempty" yaml:"expired,omitempty"`
	Invalid bool `json:"invalid,omitempty" yaml:"invalid,omitempty"`

	// HasSecret is true when the engine holds secret material for this key.
	HasSecret bool `json:"has_secret,omitempty" yaml:"has_secret,omitempty"`

	CreationTime time.Time `json:"creation_time,omitzero" yaml:"creation_time,omitempty"`
}

// SignatureInfo is a single verification record: who signed, whether the
// signature checked out, and when it was made.
type SignatureInfo struct {
	KeyFingerprint string    `json:"key_fingerprint" yaml:"key_fingerprint"`
	Valid          bool      `json:"valid" yaml:"valid"`
	Error          string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreationTime   time.Time `json:"creation_time,omitzero" yaml:"creation_time,omitempty"`
}

// SignResult is the outcome of a detached signing operation.
// Digest is the hash the engine actually used for this signature,
// which may differ from the key's nominal preference.
type SignResult struct {
	Armored []byte
	Digest  crypto.Hash
}

// DecryptResult is the outcome of a combined decrypt and verify
// operation. Signatures may be empty: an unsigned payload is not
// an error for decryption.
type DecryptResult struct {
	Plaintext  []byte
	Signatures []SignatureInfo
}
