// Package memengine implements an in-memory engine over fixture key
// projections, for tests and local development.
//
// Cryptographic operations are simulated: signatures are MACs over the
// payload and ciphertexts are JSON envelopes, deterministic and cheap.
// Lookup and listing behave like a real keyring, including ambiguity
// reporting, and every call returns fresh copies of the fixtures.
package memengine

import (
	"crypto"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/copier"

	"github.com/tomjnixon/alot/pgpengine"
)

// EngineName specifies the engine name in the loader registry.
const EngineName = "mem"

func init() {
	_ = pgpengine.Register(EngineName, LoadEngine)
}

// LoadEngine provides the loader for the in-memory engine.
// The keyring starts empty; fixtures are added with Init.
func LoadEngine(*pgpengine.Config) (pgpengine.Engine, error) {
	return Init(), nil
}

// Ensure compiles
var _ pgpengine.Engine = (*Engine)(nil)

// Engine is a fixture-backed in-memory engine.
type Engine struct {
	keys []*pgpengine.Key
}

// Init returns an engine over the given fixture keys.
func Init(keys ...*pgpengine.Key) *Engine {
	return &Engine{keys: keys}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return EngineName
}

// NewSession opens a session over the fixtures.
func (e *Engine) NewSession() (pgpengine.Session, error) {
	return &session{keys: e.keys}, nil
}

type session struct {
	keys []*pgpengine.Key
}

func matchTerm(k *pgpengine.Key, term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	if strings.HasSuffix(strings.ToLower(k.Fingerprint), t) {
		return true
	}
	for _, id := range k.Identities {
		if strings.Contains(strings.ToLower(id.Email), t) ||
			strings.Contains(strings.ToLower(id.Name), t) {
			return true
		}
	}
	return false
}

// clone returns a fresh caller-owned copy of the projection. The copy
// must be deep: the identities slice would otherwise alias the fixture
// and let callers mutate the ring.
func clone(k *pgpengine.Key) (*pgpengine.Key, error) {
	out := new(pgpengine.Key)
	if err := copier.CopyWithOption(out, k, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// Lookup returns the single key matching term.
func (s *session) Lookup(term string) (*pgpengine.Key, error) {
	var found *pgpengine.Key
	for _, k := range s.keys {
		if !matchTerm(k, term) {
			continue
		}
		if found != nil {
			return nil, pgpengine.ErrAmbiguous
		}
		found = k
	}
	if found == nil {
		return nil, pgpengine.ErrNotFound
	}
	return clone(found)
}

// List returns keys matching the hint, all keys for an empty hint.
func (s *session) List(hint string) ([]*pgpengine.Key, error) {
	res := make([]*pgpengine.Key, 0, len(s.keys))
	for _, k := range s.keys {
		if !matchTerm(k, hint) {
			continue
		}
		c, err := clone(k)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

func (s *session) find(fingerprint string) *pgpengine.Key {
	for _, k := range s.keys {
		if strings.EqualFold(k.Fingerprint, fingerprint) {
			return k
		}
	}
	return nil
}

func mac(fingerprint string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

type memSignature struct {
	Fingerprint string    `json:"fingerprint"`
	MAC         string    `json:"mac"`
	Created     time.Time `json:"created"`
}

type memEnvelope struct {
	Recipients []string `json:"recipients"`
	Payload    []byte   `json:"payload"`
}

// Sign produces a deterministic MAC-based fake signature.
func (s *session) Sign(payload []byte, key *pgpengine.Key) (*pgpengine.SignResult, error) {
	k := s.find(key.Fingerprint)
	if k == nil || !k.HasSecret {
		return nil, errors.Errorf("no secret key for %s", key.Fingerprint)
	}
	sig, err := json.Marshal(memSignature{
		Fingerprint: k.Fingerprint,
		MAC:         mac(k.Fingerprint, payload),
		Created:     time.Now().UTC(),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &pgpengine.SignResult{Armored: sig, Digest: crypto.SHA256}, nil
}

// Verify recomputes the MAC for the claimed signer.
func (s *session) Verify(payload, signature []byte) ([]pgpengine.SignatureInfo, error) {
	var sig memSignature
	if err := json.Unmarshal(signature, &sig); err != nil {
		return nil, errors.WithMessage(err, "malformed signature")
	}
	k := s.find(sig.Fingerprint)
	if k == nil {
		return nil, errors.Errorf("unknown signer: %s", sig.Fingerprint)
	}
	if mac(k.Fingerprint, payload) != sig.MAC {
		return nil, errors.New("signature mismatch")
	}
	return []pgpengine.SignatureInfo{
		{
			KeyFingerprint: k.Fingerprint,
			Valid:          true,
			CreationTime:   sig.Created,
		},
	}, nil
}

// Encrypt wraps payload in an envelope addressed to the recipients.
func (s *session) Encrypt(payload []byte, recipients []*pgpengine.Key) ([]byte, error) {
	env := memEnvelope{Payload: payload}
	for _, r := range recipients {
		if s.find(r.Fingerprint) == nil {
			return nil, errors.Errorf("recipient key not in ring: %s", r.Fingerprint)
		}
		env.Recipients = append(env.Recipients, r.Fingerprint)
	}
	ct, err := json.Marshal(env)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ct, nil
}

// DecryptVerify opens an envelope addressed to a key with secret material.
func (s *session) DecryptVerify(ciphertext []byte) (*pgpengine.DecryptResult, error) {
	var env memEnvelope
	if err := json.Unmarshal(ciphertext, &env); err != nil {
		return nil, errors.WithMessage(err, "malformed ciphertext")
	}
	for _, fpr := range env.Recipients {
		if k := s.find(fpr); k != nil && k.HasSecret {
			return &pgpengine.DecryptResult{Plaintext: env.Payload}, nil
		}
	}
	return nil, errors.New("no usable secret key")
}

// Export returns a fake armored public key block.
func (s *session) Export(key *pgpengine.Key) ([]byte, error) {
	k := s.find(key.Fingerprint)
	if k == nil {
		return nil, errors.Errorf("key not in ring: %s", key.Fingerprint)
	}
	out := "-----BEGIN PGP PUBLIC KEY BLOCK-----\n\n" +
		k.Fingerprint +
		"\n-----END PGP PUBLIC KEY BLOCK-----\n"
	return []byte(out), nil
}

// Close releases the session.
func (s *session) Close() error {
	return nil
}
