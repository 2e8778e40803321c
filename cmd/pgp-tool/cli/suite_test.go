package cli

import (
	"bytes"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/ctl"
	"github.com/stretchr/testify/suite"

	"github.com/tomjnixon/alot/pgpengine"
	"github.com/tomjnixon/alot/pgpengine/memengine"
	"github.com/tomjnixon/alot/pgptrust"
)

type testSuite struct {
	suite.Suite

	ctl *Cli
	// Out is the output buffer
	Out bytes.Buffer
}

func (s *testSuite) SetupTest() {
	s.Out.Reset()
	s.ctl = &Cli{}

	s.ctl.WithErrWriter(&s.Out).
		WithWriter(&s.Out).
		WithTrust(pgptrust.New(memengine.Init(testKeys()...)))

	parser, err := kong.New(s.ctl,
		kong.Name("pgp-tool"),
		kong.Description("CLI tool for the PGP trust layer"),
		kong.Writers(&s.Out, &s.Out),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{})
	if err != nil {
		s.FailNow("unexpected error constructing Kong: %+v", err)
	}

	_, err = parser.Parse([]string{"--cfg=mem"})
	if err != nil {
		s.FailNow("unexpected error parsing: %+v", err)
	}
}

func (s *testSuite) TearDownTest() {
}

func testKeys() []*pgpengine.Key {
	return []*pgpengine.Key{
		{
			Fingerprint: "AAAA1111AAAA1111AAAA1111AAAA1111AAAA1111",
			CanEncrypt:  true,
			CanSign:     true,
			HasSecret:   true,
			Identities: []pgpengine.Identity{
				{Name: "Alice", Email: "alice@example.com", Trust: pgpengine.TrustUltimate},
			},
		},
		{
			Fingerprint: "BBBB2222BBBB2222BBBB2222BBBB2222BBBB2222",
			CanEncrypt:  true,
			Identities: []pgpengine.Identity{
				{Name: "Bob", Email: "bob@example.com", Trust: pgpengine.TrustFull},
			},
		},
		{
			Fingerprint: "CCCC3333CCCC3333CCCC3333CCCC3333CCCC3333",
			CanEncrypt:  true,
			Revoked:     true,
			Identities: []pgpengine.Identity{
				{Name: "Carol", Email: "carol@example.com", Trust: pgpengine.TrustFull},
			},
		},
	}
}

// HasText is a helper method to assert that the out stream contains the supplied
// text somewhere
func (s *testSuite) HasText(texts ...string) {
	outStr := s.Out.String()
	for _, t := range texts {
		s.Contains(outStr, t)
	}
}

// HasNoText is a helper method to assert that the out stream does not contain
// the supplied text
func (s *testSuite) HasNoText(texts ...string) {
	outStr := s.Out.String()
	for _, t := range texts {
		s.NotContains(outStr, t)
	}
}
