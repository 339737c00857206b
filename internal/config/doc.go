// Package config assembles host settings from layered sources: the user file
// at ~/.plugfy/config.yaml, appsettings.json and appsettings.{environment}.json
// in the working directory, environment variables, and explicit overrides
// from command-line flags, in increasing order of precedence. The merged
// settings are handed to every extension through its context.
package config
