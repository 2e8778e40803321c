package pgptrust

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/tomjnixon/alot/metricskey"
	"github.com/tomjnixon/alot/pgperr"
	"github.com/tomjnixon/alot/pgpengine"
)

var logger = xlog.NewPackageLogger("github.com/tomjnixon/alot", "pgptrust")

// Trust orchestrates crypto operations over an engine, enforcing key
// usability and identity trust policy. It holds no mutable state; every
// operation opens and discards its own engine session.
type Trust struct {
	engine pgpengine.Engine
}

// New returns a Trust over the given engine.
func New(engine pgpengine.Engine) *Trust {
	return &Trust{engine: engine}
}

// Engine returns the underlying engine.
func (t *Trust) Engine() pgpengine.Engine {
	return t.engine
}

func (t *Trust) session() (pgpengine.Session, error) {
	s, err := t.engine.NewSession()
	if err != nil {
		return nil, pgperr.Wrap(err, pgperr.EngineError, "failed to open engine session")
	}
	return s, nil
}

// GetKey resolves term to exactly one usable key under the policy.
//
// When the engine reports the term as ambiguous, the candidates are
// re-fetched via a hinted listing and filtered through ValidateKey and,
// if trustedOnly is set, IdentityTrusted with term as the email. Exactly
// one survivor wins; none maps to KEY_NOT_FOUND and several to
// AMBIGUOUS_NAME, never a silent guess.
//
// A trustedOnly failure on a direct match is reported as KEY_NOT_FOUND
// rather than a distinct code, so callers cannot distinguish an
// untrusted key from an absent one.
func (t *Trust) GetKey(term string, policy Policy, trustedOnly bool) (key *pgpengine.Key, err error) {
	defer func(started time.Time) {
		outcome := "found"
		if err != nil {
			outcome = strings.ToLower(string(pgperr.CodeOf(err)))
		}
		metricskey.PerfKeyResolution.MeasureSince(started, t.engine.Name(), outcome)
	}(time.Now())

	s, err := t.session()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	key, lerr := s.Lookup(term)
	switch {
	case lerr == nil:
	case errors.Is(lerr, pgpengine.ErrNotFound):
		return nil, pgperr.New(pgperr.KeyNotFound, "no key found for %q", term)
	case errors.Is(lerr, pgpengine.ErrAmbiguous):
		logger.KV(xlog.DEBUG, "reason", "ambiguous", "term", term)
		key, err = t.disambiguate(s, term, policy, trustedOnly)
		if err != nil {
			return nil, err
		}
		return key, nil
	default:
		return nil, pgperr.Wrap(lerr, pgperr.EngineError, "lookup failed for %q", term)
	}

	if err := ValidateKey(key, policy); err != nil {
		return nil, err
	}
	if trustedOnly && !IdentityTrusted(key, term) {
		return nil, pgperr.New(pgperr.KeyNotFound, "no trusted key found for %q", term)
	}
	return key, nil
}

// disambiguate retries an ambiguous lookup through a hinted listing.
// This is the single local-recovery path in the layer.
func (t *Trust) disambiguate(s pgpengine.Session, term string, policy Policy, trustedOnly bool) (*pgpengine.Key, error) {
	candidates, err := s.List(term)
	if err != nil {
		return nil, pgperr.Wrap(err, pgperr.EngineError, "listing failed for %q", term)
	}

	var match *pgpengine.Key
	for _, candidate := range candidates {
		if ValidateKey(candidate, policy) != nil {
			continue
		}
		if trustedOnly && !IdentityTrusted(candidate, term) {
			continue
		}
		if match != nil {
			return nil, pgperr.New(pgperr.AmbiguousName, "multiple usable keys match %q", term)
		}
		match = candidate
	}
	if match == nil {
		return nil, pgperr.New(pgperr.KeyNotFound, "no usable key matches %q", term)
	}
	return match, nil
}

// ResolveRecipients resolves each term to a usable encryption key,
// failing on the first term that does not resolve.
func (t *Trust) ResolveRecipients(terms []string, trustedOnly bool) ([]*pgpengine.Key, error) {
	keys := make([]*pgpengine.Key, 0, len(terms))
	for _, term := range terms {
		key, err := t.GetKey(term, Policy{RequireEncrypt: true}, trustedOnly)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ListKeys returns keys matching the hint, a fingerprint or user ID
// substring. The listing is the engine's; no local filtering is applied.
func (t *Trust) ListKeys(hint string) ([]*pgpengine.Key, error) {
	s, err := t.session()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	keys, err := s.List(hint)
	if err != nil {
		return nil, pgperr.Wrap(err, pgperr.EngineError, "listing failed for %q", hint)
	}
	return keys, nil
}
