package pgpengine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config holds engine configuration.
//
// The keyring storage location is the only external configuration this
// layer recognizes; agent lifecycle and passphrase prompting remain the
// engine's concern.
type Config struct {
	// Engine is the registered engine name, e.g. "openpgp".
	Engine string `json:"Engine" yaml:"engine"`

	// KeyringDir overrides the keyring storage location.
	KeyringDir string `json:"KeyringDir" yaml:"keyring_dir"`

	// PublicRing and SecretRing override the ring file names inside
	// KeyringDir. Defaults are pubring.gpg and secring.gpg.
	PublicRing string `json:"PublicRing" yaml:"public_ring"`
	SecretRing string `json:"SecretRing" yaml:"secret_ring"`

	// Passphrase unlocks encrypted secret keys.
	// If it's prefixed with `file:`, then it will be loaded from the file.
	Passphrase string `json:"Passphrase" yaml:"passphrase"`
}

// LoadConfig loads engine configuration from a JSON or YAML file.
func LoadConfig(filename string) (*Config, error) {
	cfr, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer cfr.Close()

	cfg := new(Config)
	if strings.HasSuffix(filename, ".json") {
		err = json.NewDecoder(cfr).Decode(cfg)
	} else {
		err = yaml.NewDecoder(cfr).Decode(cfg)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
	}

	pass := cfg.Passphrase
	if strings.HasPrefix(pass, "file:") {
		passfile := pass[5:]

		// try to resolve passphrase file
		cwd, _ := os.Getwd()
		folders := []string{
			"",
			cwd,
			filepath.Dir(filename),
		}

		for _, folder := range folders {
			if resolved, err := resolve(passfile, folder); err == nil {
				passfile = resolved
				break
			}
			logger.Warningf("reason=resolve, passfile=%q, basedir=%q", passfile, folder)
		}

		pb, err := os.ReadFile(passfile)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to load passphrase for configuration: %s", filename)
		}
		cfg.Passphrase = strings.TrimRight(string(pb), "\r\n")
	}

	return cfg, nil
}

// resolve returns absolute file name relative to baseDir,
// or an error when the file does not exist.
func resolve(file string, baseDir string) (resolved string, err error) {
	if file == "" {
		return file, nil
	}
	if filepath.IsAbs(file) {
		resolved = file
	} else if baseDir != "" {
		resolved = filepath.Join(baseDir, file)
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		return resolved, errors.WithMessagef(err, "not found: %v", resolved)
	}
	return resolved, nil
}
