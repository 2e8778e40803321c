package pgpengine

import (
	"github.com/cockroachdb/errors"
)

// Lookup failures reported by engines. Any other engine error is opaque
// to the trust layer and gets wrapped as an engine error there.
var (
	// ErrNotFound is reported when a lookup term matches no key.
	ErrNotFound = errors.New("pgpengine: key not found")
	// ErrAmbiguous is reported when a lookup term matches more than one key.
	ErrAmbiguous = errors.New("pgpengine: ambiguous lookup")
)

// Session is a single-operation handle onto an engine. Calls are
// synchronous and may block, for example on passphrase entry by an
// external agent. A session must not be shared between concurrent
// operations; create one per operation and discard it.
type Session interface {
	// Lookup returns the single key matching term, which may be a
	// fingerprint, key ID or user ID. Fails with ErrNotFound or
	// ErrAmbiguous.
	Lookup(term string) (*Key, error)

	// List returns keys matching the hint, a fingerprint or user ID
	// substring. An empty hint returns every key in the ring.
	List(hint string) ([]*Key, error)

	// Sign produces a detached, armored signature over payload with
	// the given key.
	Sign(payload []byte, key *Key) (*SignResult, error)

	// Verify checks a detached signature over payload and returns one
	// record per signature.
	Verify(payload, signature []byte) ([]SignatureInfo, error)

	// Encrypt encrypts payload to the given recipients, armored.
	Encrypt(payload []byte, recipients []*Key) ([]byte, error)

	// DecryptVerify decrypts ciphertext, armored or binary, and
	// verifies any signatures found inside.
	DecryptVerify(ciphertext []byte) (*DecryptResult, error)

	// Export returns the armored public part of the key.
	Export(key *Key) ([]byte, error)

	// Close releases the session.
	Close() error
}

// Engine creates sessions onto a key store.
type Engine interface {
	// Name of the engine, as used in the loader registry.
	Name() string

	// NewSession opens a fresh session. Key material is read fresh per
	// session; engines do not cache projections across sessions.
	NewSession() (Session, error)
}
