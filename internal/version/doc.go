// Package version parses the directory names under an extension's Compiled
// folder into comparable versions. A name is a version when every
// dot-separated segment is a non-negative integer; anything else is skipped
// by the resolver rather than reported.
package version
