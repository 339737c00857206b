// Package host runs the resolve, load and dispatch pipeline for one command
// invocation. It is the single place that knows the order of the steps; the
// CLI only parses flags and maps the returned error to an exit code.
package host
