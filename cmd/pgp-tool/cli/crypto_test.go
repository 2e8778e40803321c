package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tomjnixon/alot/pgperr"
)

type cryptoSuite struct {
	testSuite
}

func TestCryptoSuite(t *testing.T) {
	suite.Run(t, new(cryptoSuite))
}

func (s *cryptoSuite) TestSignVerify() {
	dir := s.T().TempDir()
	in := filepath.Join(dir, "payload.txt")
	sig := filepath.Join(dir, "payload.sig")
	s.Require().NoError(os.WriteFile(in, []byte("payload to sign"), 0o600))

	sign := SignCmd{In: in, Key: "alice@example.com", Out: sig}
	s.Require().NoError(sign.Run(s.ctl))

	verify := VerifyCmd{In: in, Sig: sig}
	s.Require().NoError(verify.Run(s.ctl))
	s.HasText("AAAA1111AAAA1111AAAA1111AAAA1111AAAA1111")
}

func (s *cryptoSuite) TestSignToOutput() {
	s.ctl.WithReader(strings.NewReader("payload from stdin"))

	sign := SignCmd{In: "-", Key: "alice@example.com"}
	s.Require().NoError(sign.Run(s.ctl))
	s.HasText(`"micalg"`, "pgp-sha256", `"signature"`)
}

func (s *cryptoSuite) TestSignNoSecret() {
	s.ctl.WithReader(strings.NewReader("payload"))

	sign := SignCmd{In: "-", Key: "bob@example.com"}
	err := sign.Run(s.ctl)
	s.Require().Error(err)
	s.Equal(pgperr.KeyCannotSign, pgperr.CodeOf(err))
}

func (s *cryptoSuite) TestVerifyBadSignature() {
	dir := s.T().TempDir()
	in := filepath.Join(dir, "payload.txt")
	sig := filepath.Join(dir, "payload.sig")
	s.Require().NoError(os.WriteFile(in, []byte("payload"), 0o600))
	s.Require().NoError(os.WriteFile(sig, []byte("garbage"), 0o600))

	verify := VerifyCmd{In: in, Sig: sig}
	err := verify.Run(s.ctl)
	s.Require().Error(err)
	s.Equal(pgperr.BadSignature, pgperr.CodeOf(err))
}

func (s *cryptoSuite) TestEncryptDecrypt() {
	dir := s.T().TempDir()
	in := filepath.Join(dir, "plain.txt")
	ct := filepath.Join(dir, "out.pgp")
	s.Require().NoError(os.WriteFile(in, []byte("hello alice"), 0o600))

	encrypt := EncryptCmd{In: in, To: []string{"alice@example.com"}, Out: ct}
	s.Require().NoError(encrypt.Run(s.ctl))

	decrypt := DecryptCmd{In: ct}
	s.Require().NoError(decrypt.Run(s.ctl))
	s.HasText("hello alice")
}

func (s *cryptoSuite) TestEncryptRevokedRecipient() {
	s.ctl.WithReader(strings.NewReader("payload"))

	encrypt := EncryptCmd{In: "-", To: []string{"carol@example.com"}}
	err := encrypt.Run(s.ctl)
	s.Require().Error(err)
	s.Equal(pgperr.KeyRevoked, pgperr.CodeOf(err))
}

func (s *cryptoSuite) TestEncryptUnknownRecipient() {
	s.ctl.WithReader(strings.NewReader("payload"))

	encrypt := EncryptCmd{In: "-", To: []string{"nobody@example.com"}, Trusted: true}
	err := encrypt.Run(s.ctl)
	s.Require().Error(err)
	s.Equal(pgperr.KeyNotFound, pgperr.CodeOf(err))
}

func (s *cryptoSuite) TestDecryptGarbage() {
	s.ctl.WithReader(strings.NewReader("not a pgp message"))

	decrypt := DecryptCmd{In: "-"}
	err := decrypt.Run(s.ctl)
	s.Require().Error(err)
	s.Equal(pgperr.DecryptionFailed, pgperr.CodeOf(err))
}
