package pgptrust

import (
	"github.com/tomjnixon/alot/pgperr"
	"github.com/tomjnixon/alot/pgpengine"
)

// Policy states what a key must be able to do. Both requirements are
// independent and optional; an unset requirement never triggers its
// capability check.
type Policy struct {
	RequireEncrypt bool
	RequireSign    bool
}

// ValidateKey checks that a key is usable under the policy. Checks run
// in a fixed order and short-circuit at the first failure: revoked,
// expired, invalid, then the policy capability checks. The order is
// deliberate; callers rely on deterministic, minimal-disclosure errors.
func ValidateKey(key *pgpengine.Key, policy Policy) error {
	if key.Revoked {
		return pgperr.New(pgperr.KeyRevoked, "key %s is revoked", key.Fingerprint)
	}
	if key.Expired {
		return pgperr.New(pgperr.KeyExpired, "key %s is expired", key.Fingerprint)
	}
	if key.Invalid {
		return pgperr.New(pgperr.KeyInvalid, "key %s is invalid", key.Fingerprint)
	}
	if policy.RequireEncrypt && !key.CanEncrypt {
		return pgperr.New(pgperr.KeyCannotEncrypt, "key %s cannot encrypt", key.Fingerprint)
	}
	if policy.RequireSign && !key.CanSign {
		return pgperr.New(pgperr.KeyCannotSign, "key %s cannot sign", key.Fingerprint)
	}
	return nil
}

// IdentityTrusted reports whether the key carries a sufficiently trusted
// identity binding for the email. All identities are scanned: an identity
// qualifies when its email matches exactly, it is neither revoked nor
// invalid, and its trust level is at least full.
func IdentityTrusted(key *pgpengine.Key, email string) bool {
	for _, id := range key.Identities {
		if id.Email != email || id.Revoked || id.Invalid {
			continue
		}
		if id.Trust >= pgpengine.TrustFull {
			return true
		}
	}
	return false
}
