// Package extension defines the contract between the plugfy host and the
// extensions it loads. An extension module exposes a discovery entry point
// that returns Registrations; each qualifying Registration builds an
// Extension from the shared Context, and the host dispatches one of the
// extension's ExecutionOptions to its Execute method.
package extension
