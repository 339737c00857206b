// Package cli defines the Cobra command tree for the plugfy CLI. The root
// command runs an extension command; subcommands list, describe and
// configure installed extensions. Commands only parse flags and format
// output; the pipeline itself lives in internal/host.
package cli
