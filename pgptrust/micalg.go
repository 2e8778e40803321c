package pgptrust

import (
	"crypto"

	"github.com/tomjnixon/alot/pgperr"
)

// RFC 3156 micalg names for the digest algorithms OpenPGP engines use.
var micalgNames = map[crypto.Hash]string{
	crypto.MD5:       "md5",
	crypto.SHA1:      "sha1",
	crypto.RIPEMD160: "ripemd160",
	crypto.SHA224:    "sha224",
	crypto.SHA256:    "sha256",
	crypto.SHA384:    "sha384",
	crypto.SHA512:    "sha512",
}

// MicalgFromHash returns the micalg protocol name, "pgp-" followed by the
// lowercase digest name, for a digest algorithm reported by the engine.
// Fails with UNKNOWN_ALGORITHM for an unrecognized or zero hash.
func MicalgFromHash(h crypto.Hash) (string, error) {
	name, ok := micalgNames[h]
	if !ok {
		return "", pgperr.New(pgperr.UnknownAlgorithm, "unknown digest algorithm: %v", h)
	}
	return "pgp-" + name, nil
}
