package dataprotection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSymmetric(t *testing.T) {
	p, err := NewSymmetric([]byte("secret"))
	require.NoError(t, err)
	assert.True(t, p.IsReady())

	plaintext := []byte(`small data`)
	ctx := context.Background()
	protected, err := p.Protect(ctx, plaintext)
	require.NoError(t, err)

	unprotected, err := p.Unprotect(ctx, protected)
	require.NoError(t, err)
	assert.Equal(t, plaintext, unprotected)

	// modify the data
	protected[0] = protected[1]
	_, err = p.Unprotect(ctx, protected)
	assert.EqualError(t, err, "failed to unprotect: cipher: message authentication failed")

	_, err = p.Unprotect(ctx, nil)
	assert.EqualError(t, err, "invalid data")

	_, err = p.Unprotect(ctx, protected[:11])
	assert.EqualError(t, err, "invalid data")

	b := backup{Fingerprint: "F74091D4133F87D56B5D343C1974EC55FBC2D660", Armored: "-----BEGIN PGP PUBLIC KEY BLOCK-----"}
	b64, err := ProtectObject(ctx, p, b)
	require.NoError(t, err)
	var b2 backup
	err = UnprotectObject(ctx, p, b64, &b2)
	require.NoError(t, err)
	assert.Equal(t, b, b2)

	err = UnprotectObject(ctx, p, "b64", &b2)
	assert.EqualError(t, err, "failed to unprotect data: invalid data")

	err = UnprotectObject(ctx, p, "Aa"+b64, &b2)
	assert.EqualError(t, err, "failed to unprotect data: failed to unprotect: cipher: message authentication failed")
}

type backup struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	Armored     string `json:"armored,omitempty"`
}
