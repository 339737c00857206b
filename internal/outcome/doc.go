// Package outcome classifies the ways a host run can fail. Every failure the
// host reports carries a Kind so the CLI can print a distinct message and
// exit with status 1.
package outcome
