package pgperr_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomjnixon/alot/pgperr"
)

func TestNew(t *testing.T) {
	err := pgperr.New(pgperr.KeyRevoked, "key %s is revoked", "ABCD")
	require.Error(t, err)
	assert.Equal(t, "KEY_REVOKED: key ABCD is revoked", err.Error())
	assert.Equal(t, pgperr.KeyRevoked, pgperr.CodeOf(err))
	assert.True(t, pgperr.IsCode(err, pgperr.KeyRevoked))
	assert.False(t, pgperr.IsCode(err, pgperr.KeyExpired))
	assert.NoError(t, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	cause := errors.New("gpg: end of file")
	err := pgperr.Wrap(cause, pgperr.EngineError, "lookup failed")
	assert.Equal(t, "ENGINE_ERROR: lookup failed: gpg: end of file", err.Error())
	assert.Equal(t, pgperr.EngineError, pgperr.CodeOf(err))
	assert.True(t, errors.Is(err, cause))
}

func TestCodeOfWrapped(t *testing.T) {
	// the code survives further wrapping by callers
	err := pgperr.New(pgperr.BadSignature, "verification failed")
	wrapped := errors.WithMessage(err, "outer context")
	assert.Equal(t, pgperr.BadSignature, pgperr.CodeOf(wrapped))

	assert.Equal(t, pgperr.Code(""), pgperr.CodeOf(errors.New("plain")))
	assert.Equal(t, pgperr.Code(""), pgperr.CodeOf(nil))
}
