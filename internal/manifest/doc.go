// Package manifest handles parsing and validation of extension manifests.
// A manifest is an optional extension.yaml placed next to an extension's
// Compiled directory; it carries descriptive metadata shown by list and
// describe and is validated against an embedded JSON schema.
package manifest
