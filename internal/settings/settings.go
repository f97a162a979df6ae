// Package settings loads runtime settings from defaults, TOOLUPDATER_*
// environment variables and command-line flags, in increasing precedence.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TOOLUPDATER"

// Settings are the resolved runtime settings.
type Settings struct {
	Root        string `mapstructure:"root"`
	Catalog     string `mapstructure:"catalog"`
	Staging     string `mapstructure:"staging"`
	LogLevel    string `mapstructure:"log_level"`
	LogDir      string `mapstructure:"log_dir"`
	ReleaseAPI  string `mapstructure:"release_api"`
	UserAgent   string `mapstructure:"user_agent"`
	StrictHooks bool   `mapstructure:"strict_hooks"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		Catalog:    "tools.ini",
		Staging:    "updates",
		LogLevel:   "info",
		ReleaseAPI: "https://api.github.com",
		UserAgent:  "toolupdater/1.0",
	}
}

// flagKeys maps flag names onto setting keys.
var flagKeys = map[string]string{
	"root":         "root",
	"catalog":      "catalog",
	"staging":      "staging",
	"log-level":    "log_level",
	"log-dir":      "log_dir",
	"release-api":  "release_api",
	"user-agent":   "user_agent",
	"strict-hooks": "strict_hooks",
}

// Load resolves settings. Flags in flags that were set on the command line
// take precedence over the environment; missing flags are ignored.
func Load(flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("root", d.Root)
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("staging", d.Staging)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("release_api", d.ReleaseAPI)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("strict_hooks", d.StrictHooks)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks values that can be rejected before any work starts.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Catalog) == "" {
		return fmt.Errorf("catalog path is empty")
	}
	if strings.TrimSpace(s.Staging) == "" {
		return fmt.Errorf("staging directory is empty")
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (s Settings) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
