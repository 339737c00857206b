package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugfy/plugfy/internal/branding"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// DefaultEnvironment is used when PLUGFY_ENVIRONMENT is unset.
	DefaultEnvironment = "Production"
)

// Well-known keys.
const (
	KeyExtensionsPath = "extensionsPath"
)

// Dir returns the path to the config directory (~/.plugfy/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the user config file (~/.plugfy/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// DefaultExtensionsPath returns ~/.plugfy/extensions.
func DefaultExtensionsPath() string {
	return filepath.Join(Dir(), branding.ExtensionsDir())
}

// Options controls Load.
type Options struct {
	// ConfigFile replaces the user config file when set.
	ConfigFile string
	// WorkDir is searched for the appsettings files. Defaults to ".".
	WorkDir string
	// Environment selects appsettings.{Environment}.json. Defaults to
	// $PLUGFY_ENVIRONMENT, then DefaultEnvironment.
	Environment string
	// Overrides take precedence over every other source.
	Overrides map[string]any
}

// Config is the merged view of every settings source.
type Config struct {
	v           *viper.Viper
	userFile    string
	environment string
	files       []string
}

// Load reads every source and merges them. Missing files are skipped; a file
// that exists but cannot be parsed is an error.
func Load(opts Options) (*Config, error) {
	c := &Config{
		v:           viper.New(),
		userFile:    opts.ConfigFile,
		environment: opts.Environment,
	}
	if c.userFile == "" {
		c.userFile = FilePath()
	}
	if c.environment == "" {
		c.environment = os.Getenv(branding.EnvVar("environment"))
	}
	if c.environment == "" {
		c.environment = DefaultEnvironment
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	c.v.SetDefault(KeyExtensionsPath, DefaultExtensionsPath())

	if err := c.merge(c.userFile, fileType, opts.ConfigFile != ""); err != nil {
		return nil, err
	}
	base := branding.SettingsName()
	for _, name := range []string{base + ".json", base + "." + c.environment + ".json"} {
		if err := c.merge(filepath.Join(workDir, name), "json", false); err != nil {
			return nil, err
		}
	}

	c.v.SetEnvPrefix(branding.EnvPrefix())
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", ":", "_"))
	c.v.AutomaticEnv()
	// The bare ExtensionsPath variable is honoured for compatibility with
	// existing deployments.
	if err := c.v.BindEnv(KeyExtensionsPath,
		branding.EnvVar("extensions_path"), branding.EnvVar("extensionspath"), "ExtensionsPath"); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	for k, val := range opts.Overrides {
		if s, ok := val.(string); ok && s == "" {
			continue
		}
		c.v.Set(k, val)
	}

	return c, nil
}

// merge layers one file on top of what has been read so far. Missing files
// are ignored unless required.
func (c *Config) merge(path, typ string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	c.v.SetConfigFile(path)
	c.v.SetConfigType(typ)
	if err := c.v.MergeInConfig(); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	c.files = append(c.files, path)
	return nil
}

// ExtensionsPath returns the extensions root with a leading ~ expanded.
func (c *Config) ExtensionsPath() string {
	return expandHome(c.Get(KeyExtensionsPath))
}

// Environment returns the active environment name.
func (c *Config) Environment() string {
	return c.environment
}

// UserFile returns the user config file path, whether or not it exists.
func (c *Config) UserFile() string {
	return c.userFile
}

// Files lists the files that were merged, lowest precedence first.
func (c *Config) Files() []string {
	return append([]string(nil), c.files...)
}

// Get returns a config value by key. Returns empty string if not set.
func (c *Config) Get(key string) string {
	return cast.ToString(c.v.Get(key))
}

// IsSet reports whether key has a value from any source.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Settings returns every merged setting as a nested map with lowercased keys.
func (c *Config) Settings() map[string]any {
	all := c.v.AllSettings()
	all[strings.ToLower(KeyExtensionsPath)] = c.ExtensionsPath()
	return all
}

// Set writes a key-value pair to the user config file at path, creating the
// file and its directory when needed. Other sources are not consulted, so
// values from appsettings files or the environment are never copied into
// the user file.
func Set(path, key, value string) error {
	if path == "" {
		path = FilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(path), err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
