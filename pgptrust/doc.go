// Package pgptrust enforces trust policy around calls to an external
// OpenPGP engine.
//
// This package supports:
//   - Key usability validation under a sign/encrypt policy
//   - Identity trust checks for email bindings
//   - Resolution of a search term to exactly one usable key
//   - Detached signing, verification, encryption and decrypt+verify
//     orchestration with a closed error taxonomy
//
// It implements no cryptographic primitives; engines behind the
// pgpengine adapter own key storage and the actual math. Every failure
// is reported as a pgperr coded error, so callers can match outcomes
// exhaustively.
//
// All operations are synchronous and may block on the engine, for
// example on passphrase entry. Each operation opens its own engine
// session; nothing is cached between calls.
package pgptrust
