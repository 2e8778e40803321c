package openpgpengine

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

// readRing reads an openpgp.EntityList from the given ring file, which may
// be binary or armored. A missing file yields an empty list.
func readRing(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return openpgp.EntityList{}, nil
		}
		return nil, errors.WithStack(err)
	}
	return readRingData(data)
}

func readRingData(data []byte) (openpgp.EntityList, error) {
	if !isArmored(data) {
		el, err := openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return el, nil
	}

	keyring := make(openpgp.EntityList, 0)
	rest := data
	for len(rest) > 0 {
		block, err := armor.Decode(bytes.NewReader(rest))
		if err != nil {
			break
		}

		if block.Type == openpgp.PublicKeyType || block.Type == openpgp.PrivateKeyType {
			el, err := openpgp.ReadKeyRing(block.Body)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			keyring = append(keyring, el...)
		}

		// skip past the decoded block
		end := bytes.Index(rest, []byte("-----END"))
		if end < 0 {
			break
		}
		next := bytes.IndexByte(rest[end:], '\n')
		if next < 0 {
			break
		}
		rest = rest[end+next+1:]
	}

	return keyring, nil
}

func isArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("-----BEGIN"))
}

// unlockEntities decrypts encrypted secret keys and subkeys with the
// configured passphrase.
func unlockEntities(el openpgp.EntityList, passphrase []byte) error {
	for _, e := range el {
		if e.PrivateKey != nil && e.PrivateKey.Encrypted {
			if err := e.PrivateKey.Decrypt(passphrase); err != nil {
				return errors.WithMessagef(err, "failed to unlock key %X", e.PrimaryKey.Fingerprint)
			}
		}
		for _, sub := range e.Subkeys {
			if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
				if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
					return errors.WithMessagef(err, "failed to unlock subkey of %X", e.PrimaryKey.Fingerprint)
				}
			}
		}
	}
	return nil
}
