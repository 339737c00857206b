// Package branding provides compile-time identity values for the CLI.
//
// The values come from the embedded branding.yaml so a fork can rename the
// binary, its home directory and its environment prefix without touching
// code.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	SettingsName  string `yaml:"settings_name"`
	ExtensionsDir string `yaml:"extensions_dir"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:       "plugfy",
			DisplayName:   "Plugfy",
			Description:   "Host that loads versioned extensions and runs their commands",
			HomeDir:       ".plugfy",
			EnvPrefix:     "PLUGFY",
			SettingsName:  "appsettings",
			ExtensionsDir: "extensions",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "plugfy").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".plugfy").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PLUGFY").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// SettingsName returns the base name of the working-directory settings
// files, e.g. "appsettings" for appsettings.json.
func SettingsName() string { load(); return defaults.SettingsName }

// ExtensionsDir returns the default extensions directory name under HomeDir.
func ExtensionsDir() string { load(); return defaults.ExtensionsDir }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("environment") → "PLUGFY_ENVIRONMENT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
