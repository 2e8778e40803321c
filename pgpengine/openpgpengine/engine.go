// Package openpgpengine implements the engine adapter over file keyrings
// using golang.org/x/crypto/openpgp.
//
// The engine reads the public and secret rings fresh on every session, so
// key projections never go stale against the ring files. Sessions hold the
// parsed entities for the duration of one operation only.
package openpgpengine

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/tomjnixon/alot/pgpengine"
)

var logger = xlog.NewPackageLogger("github.com/tomjnixon/alot", "openpgpengine")

// EngineName specifies the engine name in the loader registry.
const EngineName = "openpgp"

// Default ring file names inside the keyring directory.
const (
	DefaultPublicRing = "pubring.gpg"
	DefaultSecretRing = "secring.gpg"
)

func init() {
	_ = pgpengine.Register(EngineName, LoadEngine)
}

// LoadEngine provides the loader for the openpgp engine.
func LoadEngine(cfg *pgpengine.Config) (pgpengine.Engine, error) {
	eng, err := Init(cfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return eng, nil
}

// Ensure compiles
var _ pgpengine.Engine = (*Engine)(nil)

// Engine is a file-keyring backed OpenPGP engine.
type Engine struct {
	cfg     *pgpengine.Config
	pubPath string
	secPath string
}

// Init configures a file-keyring based engine.
func Init(cfg *pgpengine.Config) (*Engine, error) {
	if cfg.KeyringDir == "" {
		return nil, errors.New("keyring directory is not specified")
	}

	pub := cfg.PublicRing
	if pub == "" {
		pub = DefaultPublicRing
	}
	sec := cfg.SecretRing
	if sec == "" {
		sec = DefaultSecretRing
	}

	return &Engine{
		cfg:     cfg,
		pubPath: filepath.Join(cfg.KeyringDir, pub),
		secPath: filepath.Join(cfg.KeyringDir, sec),
	}, nil
}

// Name returns the engine name
func (e *Engine) Name() string {
	return EngineName
}

// NewSession opens a session over freshly read ring files.
// A missing ring file is treated as an empty ring.
func (e *Engine) NewSession() (pgpengine.Session, error) {
	public, err := readRing(e.pubPath)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read public ring: %s", e.pubPath)
	}
	secret, err := readRing(e.secPath)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read secret ring: %s", e.secPath)
	}

	if e.cfg.Passphrase != "" {
		if err := unlockEntities(secret, []byte(e.cfg.Passphrase)); err != nil {
			return nil, err
		}
	}

	s := newSession(public, secret)
	logger.KV(xlog.TRACE, "public", len(public), "secret", len(secret))
	return s, nil
}
