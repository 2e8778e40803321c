package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/tomjnixon/alot/pgptrust"
)

// SignCmd creates a detached armored signature
type SignCmd struct {
	In  string `kong:"arg" required:"" help:"file to sign, or - for the input stream"`
	Key string `required:"" help:"signing key: fingerprint, key ID or user ID"`
	Out string `help:"write the signature to file (optional)"`
}

// SignResponse is the sign command output
type SignResponse struct {
	Micalg    string `json:"micalg"`
	Signature string `json:"signature"`
}

// Run the command
func (a *SignCmd) Run(ctx *Cli) error {
	payload, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}

	trust := ctx.Trust()
	key, err := trust.GetKey(a.Key, pgptrust.Policy{RequireSign: true}, false)
	if err != nil {
		return err
	}

	micalg, sig, err := trust.SignDetached(payload, key)
	if err != nil {
		return err
	}

	if a.Out != "" {
		if err := os.WriteFile(a.Out, sig, 0600); err != nil {
			return errors.WithStack(err)
		}
		logger.KV(xlog.INFO, "signed", a.In, "micalg", micalg, "out", a.Out)
		return nil
	}
	return ctx.WriteJSON(&SignResponse{
		Micalg:    micalg,
		Signature: string(sig),
	})
}

// VerifyCmd verifies a detached signature
type VerifyCmd struct {
	In  string `kong:"arg" required:"" help:"signed file, or - for the input stream"`
	Sig string `required:"" help:"armored signature file"`
}

// Run the command
func (a *VerifyCmd) Run(ctx *Cli) error {
	payload, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}
	sig, err := os.ReadFile(a.Sig)
	if err != nil {
		return errors.WithStack(err)
	}

	sigs, err := ctx.Trust().VerifyDetached(payload, sig)
	if err != nil {
		return err
	}
	return ctx.WriteJSON(sigs)
}

// EncryptCmd encrypts to recipients
type EncryptCmd struct {
	In      string   `kong:"arg" required:"" help:"file to encrypt, or - for the input stream"`
	To      []string `required:"" help:"recipient: fingerprint, key ID or email"`
	Trusted bool     `help:"require trusted identities for recipients"`
	Out     string   `help:"write the ciphertext to file (optional)"`
}

// Run the command
func (a *EncryptCmd) Run(ctx *Cli) error {
	payload, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}

	trust := ctx.Trust()
	keys, err := trust.ResolveRecipients(a.To, a.Trusted)
	if err != nil {
		return err
	}

	ciphertext, err := trust.Encrypt(payload, keys)
	if err != nil {
		return err
	}

	if a.Out != "" {
		if err := os.WriteFile(a.Out, ciphertext, 0600); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}
	_, err = ctx.Writer().Write(ciphertext)
	return err
}

// DecryptCmd decrypts and verifies
type DecryptCmd struct {
	In  string `kong:"arg" required:"" help:"file to decrypt, or - for the input stream"`
	Out string `help:"write the plaintext to file (optional)"`
}

// Run the command
func (a *DecryptCmd) Run(ctx *Cli) error {
	ciphertext, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}

	sigs, plaintext, err := ctx.Trust().DecryptVerify(ciphertext)
	if err != nil {
		return err
	}
	for _, sig := range sigs {
		logger.KV(xlog.INFO, "signer", sig.KeyFingerprint, "valid", sig.Valid, "error", sig.Error)
	}

	if a.Out != "" {
		if err := os.WriteFile(a.Out, plaintext, 0600); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}
	_, err = ctx.Writer().Write(plaintext)
	return err
}
