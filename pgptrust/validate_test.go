package pgptrust_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomjnixon/alot/pgperr"
	"github.com/tomjnixon/alot/pgpengine"
	"github.com/tomjnixon/alot/pgptrust"
)

// makeKey returns a fully usable key fixture; mutators flip the parts
// under test.
func makeKey(mutators ...func(*pgpengine.Key)) *pgpengine.Key {
	k := &pgpengine.Key{
		Fingerprint: "F74091D4133F87D56B5D343C1974EC55FBC2D660",
		CanEncrypt:  true,
		CanSign:     true,
		HasSecret:   true,
		Identities: []pgpengine.Identity{
			{Name: "Mocked", Email: "mocked@example.com", Trust: pgpengine.TrustFull},
		},
	}
	for _, m := range mutators {
		m(k)
	}
	return k
}

func makeIdentity(email string, mutators ...func(*pgpengine.Identity)) pgpengine.Identity {
	id := pgpengine.Identity{
		Email: email,
		Trust: pgpengine.TrustFull,
	}
	for _, m := range mutators {
		m(&id)
	}
	return id
}

func TestValidateKeyValid(t *testing.T) {
	assert.NoError(t, pgptrust.ValidateKey(makeKey(), pgptrust.Policy{}))
	assert.NoError(t, pgptrust.ValidateKey(makeKey(), pgptrust.Policy{RequireEncrypt: true, RequireSign: true}))
}

func TestValidateKeyRevoked(t *testing.T) {
	err := pgptrust.ValidateKey(makeKey(func(k *pgpengine.Key) { k.Revoked = true }), pgptrust.Policy{})
	require.Error(t, err)
	assert.Equal(t, pgperr.KeyRevoked, pgperr.CodeOf(err))
}

// Revoked wins over every other state and capability combination.
func TestValidateKeyRevokedOrdering(t *testing.T) {
	for i := 0; i < 16; i++ {
		expired := i&1 != 0
		invalid := i&2 != 0
		canEncrypt := i&4 != 0
		canSign := i&8 != 0

		t.Run(fmt.Sprintf("expired=%v_invalid=%v_enc=%v_sign=%v", expired, invalid, canEncrypt, canSign), func(t *testing.T) {
			key := makeKey(func(k *pgpengine.Key) {
				k.Revoked = true
				k.Expired = expired
				k.Invalid = invalid
				k.CanEncrypt = canEncrypt
				k.CanSign = canSign
			})
			err := pgptrust.ValidateKey(key, pgptrust.Policy{RequireEncrypt: true, RequireSign: true})
			require.Error(t, err)
			assert.Equal(t, pgperr.KeyRevoked, pgperr.CodeOf(err))
		})
	}
}

func TestValidateKeyExpiredBeforeInvalid(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Expired = true
		k.Invalid = true
	})
	err := pgptrust.ValidateKey(key, pgptrust.Policy{})
	require.Error(t, err)
	assert.Equal(t, pgperr.KeyExpired, pgperr.CodeOf(err))
}

func TestValidateKeyInvalid(t *testing.T) {
	err := pgptrust.ValidateKey(makeKey(func(k *pgpengine.Key) { k.Invalid = true }), pgptrust.Policy{})
	require.Error(t, err)
	assert.Equal(t, pgperr.KeyInvalid, pgperr.CodeOf(err))
}

func TestValidateKeyEncrypt(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) { k.CanEncrypt = false })

	err := pgptrust.ValidateKey(key, pgptrust.Policy{RequireEncrypt: true})
	require.Error(t, err)
	assert.Equal(t, pgperr.KeyCannotEncrypt, pgperr.CodeOf(err))

	// the unset requirement never triggers its check
	assert.NoError(t, pgptrust.ValidateKey(key, pgptrust.Policy{}))
}

func TestValidateKeySign(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) { k.CanSign = false })

	err := pgptrust.ValidateKey(key, pgptrust.Policy{RequireSign: true})
	require.Error(t, err)
	assert.Equal(t, pgperr.KeyCannotSign, pgperr.CodeOf(err))

	assert.NoError(t, pgptrust.ValidateKey(key, pgptrust.Policy{}))
}

func TestIdentityTrustedSingle(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{makeIdentity("one@example.com")}
	})
	assert.True(t, pgptrust.IdentityTrusted(key, "one@example.com"))
}

func TestIdentityTrustedMultiple(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{
			makeIdentity("one@example.com"),
			makeIdentity("two@example.com"),
		}
	})
	assert.True(t, pgptrust.IdentityTrusted(key, "one@example.com"))
	assert.True(t, pgptrust.IdentityTrusted(key, "two@example.com"))
	assert.False(t, pgptrust.IdentityTrusted(key, "three@example.com"))
}

func TestIdentityTrustedExactMatch(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{makeIdentity("one@example.com")}
	})
	// matching is exact, not case-insensitive
	assert.False(t, pgptrust.IdentityTrusted(key, "One@example.com"))
	assert.False(t, pgptrust.IdentityTrusted(key, "one@example"))
}

func TestIdentityTrustedRevoked(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{
			makeIdentity("one@example.com", func(id *pgpengine.Identity) { id.Revoked = true }),
		}
	})
	assert.False(t, pgptrust.IdentityTrusted(key, "one@example.com"))
}

func TestIdentityTrustedInvalid(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{
			makeIdentity("one@example.com", func(id *pgpengine.Identity) { id.Invalid = true }),
		}
	})
	assert.False(t, pgptrust.IdentityTrusted(key, "one@example.com"))
}

func TestIdentityTrustedNotEnoughTrust(t *testing.T) {
	key := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{
			makeIdentity("one@example.com", func(id *pgpengine.Identity) { id.Trust = pgpengine.TrustMarginal }),
		}
	})
	assert.False(t, pgptrust.IdentityTrusted(key, "one@example.com"))

	ultimate := makeKey(func(k *pgpengine.Key) {
		k.Identities = []pgpengine.Identity{
			makeIdentity("one@example.com", func(id *pgpengine.Identity) { id.Trust = pgpengine.TrustUltimate }),
		}
	})
	assert.True(t, pgptrust.IdentityTrusted(ultimate, "one@example.com"))
}
