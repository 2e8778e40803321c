package openpgpengine

import (
	"bytes"
	"crypto"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
	// Register RIPEMD160 so openpgp can use keys that prefer it.
	_ "golang.org/x/crypto/ripemd160"

	"github.com/tomjnixon/alot/pgpengine"
)

const messageType = "PGP MESSAGE"

// Ensure compiles
var _ pgpengine.Session = (*session)(nil)

type entityKey struct {
	key       *pgpengine.Key
	entity    *openpgp.Entity
	hasSecret bool
}

// session holds the entities read for a single operation. It is not safe
// for concurrent use; callers open one session per operation.
type session struct {
	keys []*entityKey
	// all contains secret entities first, then public-only ones, and is
	// used as the verification and decryption keyring.
	all openpgp.EntityList
}

func newSession(public, secret openpgp.EntityList) *session {
	now := time.Now()
	s := &session{}

	seen := map[string]bool{}
	for _, e := range secret {
		fpr := fmt.Sprintf("%X", e.PrimaryKey.Fingerprint)
		seen[fpr] = true
		s.keys = append(s.keys, &entityKey{
			key:       projectKey(e, true, now),
			entity:    e,
			hasSecret: true,
		})
		s.all = append(s.all, e)
	}
	for _, e := range public {
		fpr := fmt.Sprintf("%X", e.PrimaryKey.Fingerprint)
		if seen[fpr] {
			continue
		}
		s.keys = append(s.keys, &entityKey{
			key:    projectKey(e, false, now),
			entity: e,
		})
		s.all = append(s.all, e)
	}

	return s
}

func (s *session) find(fingerprint string) *entityKey {
	for _, ek := range s.keys {
		if strings.EqualFold(ek.key.Fingerprint, fingerprint) {
			return ek
		}
	}
	return nil
}

// matchTerm reports whether a key matches a lookup term: a fingerprint or
// key ID suffix, or a user ID substring. Term matching is case-insensitive;
// the trust layer's identity policy does its own exact comparison on top.
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

// Lookup returns the single key matching term.
func (s *session) Lookup(term string) (*pgpengine.Key, error) {
	var found *pgpengine.Key
	for _, ek := range s.keys {
		if !matchTerm(ek.key, term) {
			continue
		}
		if found != nil {
			return nil, pgpengine.ErrAmbiguous
		}
		found = ek.key
	}
	if found == nil {
		return nil, pgpengine.ErrNotFound
	}
	return found, nil
}

// List returns keys matching the hint, all keys for an empty hint.
func (s *session) List(hint string) ([]*pgpengine.Key, error) {
	res := make([]*pgpengine.Key, 0, len(s.keys))
	for _, ek := range s.keys {
		if matchTerm(ek.key, hint) {
			res = append(res, ek.key)
		}
	}
	return res, nil
}

// Sign produces a detached armored signature with the key's secret material.
func (s *session) Sign(payload []byte, key *pgpengine.Key) (*pgpengine.SignResult, error) {
	ek := s.find(key.Fingerprint)
	if ek == nil || !ek.hasSecret || ek.entity.PrivateKey == nil {
		return nil, errors.Errorf("no secret key for %s", key.Fingerprint)
	}

	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, ek.entity, bytes.NewReader(payload), nil); err != nil {
		return nil, errors.WithStack(err)
	}

	// report the digest actually used, read back from the signature packet
	digest, _, err := signatureDigest(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &pgpengine.SignResult{
		Armored: buf.Bytes(),
		Digest:  digest,
	}, nil
}

// Verify checks a detached armored signature over payload.
func (s *session) Verify(payload, signature []byte) ([]pgpengine.SignatureInfo, error) {
	signer, err := openpgp.CheckArmoredDetachedSignature(s.all, bytes.NewReader(payload), bytes.NewReader(signature))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	_, ctime, _ := signatureDigest(signature)

	return []pgpengine.SignatureInfo{
		{
			KeyFingerprint: fmt.Sprintf("%X", signer.PrimaryKey.Fingerprint),
			Valid:          true,
			CreationTime:   ctime,
		},
	}, nil
}

// Encrypt encrypts payload to the recipients, armored.
func (s *session) Encrypt(payload []byte, recipients []*pgpengine.Key) ([]byte, error) {
	to := make([]*openpgp.Entity, 0, len(recipients))
	for _, r := range recipients {
		ek := s.find(r.Fingerprint)
		if ek == nil {
			return nil, errors.Errorf("recipient key not in ring: %s", r.Fingerprint)
		}
		to = append(to, ek.entity)
	}

	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, messageType, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	pt, err := openpgp.Encrypt(aw, to, nil, nil, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := pt.Write(payload); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := pt.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := aw.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}

// DecryptVerify decrypts ciphertext, armored or binary, and reports any
// signatures found inside.
func (s *session) DecryptVerify(ciphertext []byte) (*pgpengine.DecryptResult, error) {
	var r io.Reader = bytes.NewReader(ciphertext)
	if isArmored(ciphertext) {
		block, err := armor.Decode(r)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		r = block.Body
	}

	md, err := openpgp.ReadMessage(r, s.all, nil, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// integrity failures surface while reading the body
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	res := &pgpengine.DecryptResult{Plaintext: plaintext}
	if md.IsSigned {
		info := pgpengine.SignatureInfo{}
		if md.SignedBy != nil {
			info.KeyFingerprint = fmt.Sprintf("%X", md.SignedBy.PublicKey.Fingerprint)
		} else {
			info.KeyFingerprint = fmt.Sprintf("%016X", md.SignedByKeyId)
		}
		switch {
		case md.SignatureError != nil:
			info.Error = md.SignatureError.Error()
		case md.SignedBy == nil:
			info.Error = "signed by unknown key"
		default:
			info.Valid = true
		}
		if md.Signature != nil {
			info.CreationTime = md.Signature.CreationTime
		}
		res.Signatures = append(res.Signatures, info)
	}

	return res, nil
}

// Export returns the armored public part of the key.
func (s *session) Export(key *pgpengine.Key) ([]byte, error) {
	ek := s.find(key.Fingerprint)
	if ek == nil {
		return nil, errors.Errorf("key not in ring: %s", key.Fingerprint)
	}

	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := ek.entity.Serialize(aw); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := aw.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}

// Close releases the session.
func (s *session) Close() error {
	s.keys = nil
	s.all = nil
	return nil
}

// signatureDigest reads the digest algorithm and creation time from an
// armored signature.
func signatureDigest(sig []byte) (crypto.Hash, time.Time, error) {
	block, err := armor.Decode(bytes.NewReader(sig))
	if err != nil {
		return 0, time.Time{}, errors.WithStack(err)
	}
	pkt, err := packet.Read(block.Body)
	if err != nil {
		return 0, time.Time{}, errors.WithStack(err)
	}
	switch p := pkt.(type) {
	case *packet.Signature:
		return p.Hash, p.CreationTime, nil
	case *packet.SignatureV3:
		return p.Hash, p.CreationTime, nil
	}
	return 0, time.Time{}, errors.Errorf("unexpected packet in signature")
}
