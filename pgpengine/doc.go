// Package pgpengine provides a unified interface to external OpenPGP
// engines used by the trust layer.
//
// This package abstracts the engine call surface to support:
//   - File keyrings via the openpgpengine subpackage
//   - In-memory fixtures via the memengine subpackage
//   - Custom engines through the Engine and Session interfaces
//
// An engine owns key storage and the cryptographic primitives; this
// package only defines the data projections and the session contract.
// Sessions are created per operation and must not be shared between
// in-flight operations.
//
// Configuration is done through YAML or JSON files that specify the
// engine name and the keyring storage location.
package pgpengine
