package pgptrust

import (
	"context"
	"time"

	"github.com/tomjnixon/alot/dataprotection"
	"github.com/tomjnixon/alot/metricskey"
	"github.com/tomjnixon/alot/pgperr"
	"github.com/tomjnixon/alot/pgpengine"
)

// SignDetached produces a detached armored signature over payload with
// the given key, and the micalg name derived from the digest algorithm
// the engine actually used for that signature.
func (t *Trust) SignDetached(payload []byte, key *pgpengine.Key) (string, []byte, error) {
	defer metricskey.PerfTrustOperation.MeasureSince(time.Now(), t.engine.Name(), "sign")

	s, err := t.session()
	if err != nil {
		return "", nil, err
	}
	defer s.Close()

	res, err := s.Sign(payload, key)
	if err != nil {
		return "", nil, pgperr.Wrap(err, pgperr.EngineError, "detached signing failed with key %s", key.Fingerprint)
	}

	micalg, err := MicalgFromHash(res.Digest)
	if err != nil {
		return "", nil, err
	}
	return micalg, res.Armored, nil
}

// VerifyDetached checks a detached signature over payload. Verification
// is all-or-nothing per call: any mismatch, including whitespace or
// line-ending differences in the payload, yields BAD_SIGNATURE.
func (t *Trust) VerifyDetached(payload, signature []byte) ([]pgpengine.SignatureInfo, error) {
	defer metricskey.PerfTrustOperation.MeasureSince(time.Now(), t.engine.Name(), "verify")

	s, err := t.session()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	sigs, err := s.Verify(payload, signature)
	if err != nil {
		return nil, pgperr.Wrap(err, pgperr.BadSignature, "verification failed")
	}
	return sigs, nil
}

// Encrypt encrypts payload to the given keys, armored. Every key is
// validated with an encrypt requirement before the engine is called,
// in the given order, failing fast on the first unusable key.
func (t *Trust) Encrypt(payload []byte, keys []*pgpengine.Key) ([]byte, error) {
	defer metricskey.PerfTrustOperation.MeasureSince(time.Now(), t.engine.Name(), "encrypt")

	for _, key := range keys {
		if err := ValidateKey(key, Policy{RequireEncrypt: true}); err != nil {
			return nil, err
		}
	}

	s, err := t.session()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ciphertext, err := s.Encrypt(payload, keys)
	if err != nil {
		return nil, pgperr.Wrap(err, pgperr.EngineError, "encryption failed")
	}
	return ciphertext, nil
}

// DecryptVerify decrypts ciphertext and verifies any signatures found
// inside. An unsigned payload returns an empty signature list, which is
// not an error.
func (t *Trust) DecryptVerify(ciphertext []byte) ([]pgpengine.SignatureInfo, []byte, error) {
	defer metricskey.PerfTrustOperation.MeasureSince(time.Now(), t.engine.Name(), "decrypt")

	s, err := t.session()
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	res, err := s.DecryptVerify(ciphertext)
	if err != nil {
		return nil, nil, pgperr.Wrap(err, pgperr.DecryptionFailed, "decryption failed")
	}
	return res.Signatures, res.Plaintext, nil
}

// KeyBackup is the envelope sealed by a protected export.
type KeyBackup struct {
	Fingerprint string `json:"fingerprint"`
	Armored     string `json:"armored"`
}

// ExportKey resolves term and returns the armored public key. When a
// protector is given, a KeyBackup envelope is sealed with it instead and
// returned base64url encoded, for backups that should not sit on disk in
// the clear.
func (t *Trust) ExportKey(ctx context.Context, term string, protector dataprotection.Provider) ([]byte, error) {
	defer metricskey.PerfTrustOperation.MeasureSince(time.Now(), t.engine.Name(), "export")

	key, err := t.GetKey(term, Policy{}, false)
	if err != nil {
		return nil, err
	}

	s, err := t.session()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	armored, err := s.Export(key)
	if err != nil {
		return nil, pgperr.Wrap(err, pgperr.EngineError, "export failed for %s", key.Fingerprint)
	}

	if protector != nil {
		sealed, err := dataprotection.ProtectObject(ctx, protector, &KeyBackup{
			Fingerprint: key.Fingerprint,
			Armored:     string(armored),
		})
		if err != nil {
			return nil, pgperr.Wrap(err, pgperr.EngineError, "failed to protect exported key")
		}
		return []byte(sealed), nil
	}
	return armored, nil
}
