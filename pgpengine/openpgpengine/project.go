package openpgpengine

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/tomjnixon/alot/pgpengine"
)

// Certification revocation signature type, not named by the frozen
// openpgp packet package.
const sigTypeCertRevocation packet.SignatureType = 0x30

// The frozen openpgp package keeps its identity and capability helpers
// unexported, so the selection logic is mirrored here over the exported
// entity surface.

// primaryIdentity returns the identity marked primary in its
// self-signature, or the first one in name order.
func primaryIdentity(e *openpgp.Entity) *openpgp.Identity {
	names := make([]string, 0, len(e.Identities))
	for name := range e.Identities {
		names = append(names, name)
	}
	sort.Strings(names)

	var first *openpgp.Identity
	for _, name := range names {
		ident := e.Identities[name]
		if first == nil {
			first = ident
		}
		if ident.SelfSignature != nil &&
			ident.SelfSignature.IsPrimaryId != nil &&
			*ident.SelfSignature.IsPrimaryId {
			return ident
		}
	}
	return first
}

// canEncrypt reports whether the entity carries a live encryption key:
// a subkey flagged for communications encryption, or the primary key
// when its self-signature carries no usage flags or allows encryption.
func canEncrypt(e *openpgp.Entity, now time.Time) bool {
	for _, sub := range e.Subkeys {
		if sub.Sig != nil && sub.Sig.FlagsValid &&
			sub.Sig.FlagEncryptCommunications &&
			sub.PublicKey.PubKeyAlgo.CanEncrypt() &&
			!sub.Sig.KeyExpired(now) {
			return true
		}
	}
	prim := primaryIdentity(e)
	if prim == nil || prim.SelfSignature == nil {
		return false
	}
	sig := prim.SelfSignature
	return (!sig.FlagsValid || sig.FlagEncryptCommunications) &&
		e.PrimaryKey.PubKeyAlgo.CanEncrypt() &&
		!sig.KeyExpired(now)
}

// canSign reports whether the entity carries a live signing key.
func canSign(e *openpgp.Entity, now time.Time) bool {
	for _, sub := range e.Subkeys {
		if sub.Sig != nil && sub.Sig.FlagsValid &&
			sub.Sig.FlagSign &&
			sub.PublicKey.PubKeyAlgo.CanSign() &&
			!sub.Sig.KeyExpired(now) {
			return true
		}
	}
	prim := primaryIdentity(e)
	if prim == nil || prim.SelfSignature == nil {
		return false
	}
	sig := prim.SelfSignature
	return (!sig.FlagsValid || sig.FlagSign) &&
		e.PrimaryKey.PubKeyAlgo.CanSign() &&
		!sig.KeyExpired(now)
}

// projectKey builds the read-only Key projection from an entity.
//
// The frozen openpgp package carries no owner-trust database, so trust
// is derived from keyring membership: keys with secret material are
// ultimately trusted, other ring members fully; identities without a
// valid self-certification get no trust at all.
func projectKey(e *openpgp.Entity, hasSecret bool, now time.Time) *pgpengine.Key {
	k := &pgpengine.Key{
		Fingerprint:  fmt.Sprintf("%X", e.PrimaryKey.Fingerprint),
		HasSecret:    hasSecret,
		CreationTime: e.PrimaryKey.CreationTime,
		Revoked:      len(e.Revocations) > 0,
	}

	if len(e.Identities) == 0 {
		k.Invalid = true
		return k
	}

	primary := primaryIdentity(e)
	if primary == nil || primary.SelfSignature == nil {
		k.Invalid = true
	} else if primary.SelfSignature.KeyExpired(now) {
		k.Expired = true
	}

	k.CanEncrypt = canEncrypt(e, now)
	k.CanSign = canSign(e, now)

	base := pgpengine.TrustFull
	if hasSecret {
		base = pgpengine.TrustUltimate
	}

	names := make([]string, 0, len(e.Identities))
	for name := range e.Identities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ident := e.Identities[name]
		id := pgpengine.Identity{}
		if ident.UserId != nil {
			id.Email = ident.UserId.Email
			id.Name = ident.UserId.Name
		}
		if id.Name == "" {
			id.Name = name
		}
		id.Invalid = ident.SelfSignature == nil
		for _, sig := range ident.Signatures {
			if sig.SigType == sigTypeCertRevocation {
				id.Revoked = true
				break
			}
		}
		if id.Revoked || id.Invalid {
			id.Trust = pgpengine.TrustNone
		} else {
			id.Trust = base
		}
		k.Identities = append(k.Identities, id)
	}

	return k
}
