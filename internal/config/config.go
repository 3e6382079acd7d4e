// Package config resolves installer settings once at startup from defaults,
// an optional YAML file, MICROCLAW_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/microclaw/microclaw-install/internal/release"
)

const (
	// EnvPrefix prefixes every environment variable read by the installer.
	EnvPrefix = "MICROCLAW"

	// DefaultRepo is installed when no repository is configured.
	DefaultRepo = "microclaw/microclaw"

	// ConfigDirName and ConfigFileName locate the optional config file
	// under the user config directory.
	ConfigDirName  = "microclaw"
	ConfigFileName = "install.yaml"
)

// Keys understood by Load. Nested keys use "." and map to "_" in
// environment variable names (log.level -> MICROCLAW_LOG_LEVEL).
const (
	KeyRepo        = "repo"
	KeyInstallDir  = "install_dir"
	KeyRulesFile   = "rules_file"
	KeyGitHubToken = "github_token"
	KeyAPIURL      = "api_url"
	KeyRetries     = "retries"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
)

var knownKeys = map[string]bool{
	KeyRepo:        true,
	KeyInstallDir:  true,
	KeyRulesFile:   true,
	KeyGitHubToken: true,
	KeyAPIURL:      true,
	KeyRetries:     true,
	KeyTimeout:     true,
	KeyLogLevel:    true,
	KeyLogFormat:   true,
}

// Config holds all installer configuration
type Config struct {
	Repo        string        `mapstructure:"repo"`
	InstallDir  string        `mapstructure:"install_dir"`
	RulesFile   string        `mapstructure:"rules_file"`
	GitHubToken string        `mapstructure:"github_token"`
	APIURL      string        `mapstructure:"api_url"`
	Retries     int           `mapstructure:"retries"`
	Timeout     time.Duration `mapstructure:"timeout"` // per request; zero keeps built-in defaults
	Log         LogConfig     `mapstructure:"log"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit config file. It must exist when set.
	ConfigFile string
	// Flags are bound by key name; flag names use "-" where keys use "_"
	// or ".". Only flags the user changed override other sources.
	Flags *pflag.FlagSet
	// HomeDir overrides the user home directory used for defaults.
	HomeDir string
}

// ValidationError reports an unusable configuration value.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Message)
}

// DefaultInstallDir returns the per-user binary directory under home.
func DefaultInstallDir(home string) string {
	return filepath.Join(home, ".local", "bin")
}

// DefaultConfigFile returns the path of the optional config file, or "" when
// the user config directory is unknown.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName)
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	home := opts.HomeDir
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault(KeyRepo, DefaultRepo)
	v.SetDefault(KeyInstallDir, DefaultInstallDir(home))
	v.SetDefault(KeyRulesFile, "")
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyRetries, 0)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional GitHub variable works too.
	if err := v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.InstallDir = expandHome(cfg.InstallDir, home)
	cfg.RulesFile = expandHome(cfg.RulesFile, home)

	return &cfg, nil
}

func readConfigFile(v *viper.Viper, explicit string) error {
	path := explicit
	if path == "" {
		path = DefaultConfigFile()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// bindFlags binds every flag whose name matches a key once "-" is mapped
// to "_" and "log-" to "log.". The --rules flag sets rules_file.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := flagKey(f.Name)
		if !knownKeys[key] {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func flagKey(name string) string {
	if name == "rules" {
		return KeyRulesFile
	}
	if rest, ok := strings.CutPrefix(name, "log-"); ok {
		return "log." + strings.ReplaceAll(rest, "-", "_")
	}
	return strings.ReplaceAll(name, "-", "_")
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

// Validate checks that the configuration can drive an installation.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Repo) == "" {
		return &ValidationError{Key: KeyRepo, Message: "must not be empty"}
	}
	if _, _, err := release.SplitRepo(c.Repo); err != nil {
		return &ValidationError{Key: KeyRepo, Message: err.Error()}
	}
	if strings.TrimSpace(c.InstallDir) == "" {
		return &ValidationError{Key: KeyInstallDir, Message: "must not be empty"}
	}
	if c.Retries < 0 {
		return &ValidationError{Key: KeyRetries, Message: fmt.Sprintf("must not be negative (got %d)", c.Retries)}
	}
	if c.Timeout < 0 {
		return &ValidationError{Key: KeyTimeout, Message: fmt.Sprintf("must not be negative (got %s)", c.Timeout)}
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.GitHubToken != "" {
		c.GitHubToken = "REDACTED"
	}
	return c
}
