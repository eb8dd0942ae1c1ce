package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/navigation"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

const EnvPrefix = "LMS"

type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	AppOrigin    string        `mapstructure:"app_origin"`
	PublicRoutes []string      `mapstructure:"public_routes"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SessionDir   string        `mapstructure:"session_dir"`
	CookieName   string        `mapstructure:"cookie_name"`

	Log        LogConfig        `mapstructure:"log"`
	AuthServer AuthServerConfig `mapstructure:"auth_server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type AuthServerConfig struct {
	Addr          string   `mapstructure:"addr"`
	TokenURL      string   `mapstructure:"token_url"`
	ClientID      string   `mapstructure:"client_id"`
	ClientSecret  string   `mapstructure:"client_secret"`
	Scopes        []string `mapstructure:"scopes"`
	SessionSecret string   `mapstructure:"session_secret"`
	SecureCookies bool     `mapstructure:"secure_cookies"`
}

// flagKeys maps command line flags onto config keys. Flags win over env and the config file.
var flagKeys = map[string]string{
	"base-url":   "base_url",
	"app-origin": "app_origin",
	"timeout":    "timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
}

func defaults() map[string]any {
	return map[string]any{
		"base_url":      "http://localhost:8080",
		"app_origin":    "http://localhost:3000",
		"public_routes": navigation.DefaultPublicRoutes,
		"timeout":       time.Duration(0),
		"session_dir":   DefaultDir(),
		"cookie_name":   sessionstore.DefaultCookieName,

		"log.level":  "warn",
		"log.format": "text",
		"log.file":   "",

		"auth_server.addr":           "127.0.0.1:3000",
		"auth_server.token_url":      "",
		"auth_server.client_id":      "lms-cli",
		"auth_server.client_secret":  "",
		"auth_server.scopes":         []string{},
		"auth_server.session_secret": "",
		"auth_server.secure_cookies": false,
	}
}

// DefaultDir is ~/.config/lms, or a relative .lms when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lms"
	}
	return filepath.Join(home, ".config", "lms")
}

// Load reads the config file, LMS_* environment variables and any set flags, in increasing order
// of precedence. A missing default config file is not an error; a missing explicit one is.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	vip := viper.New()
	for key, value := range defaults() {
		vip.SetDefault(key, value)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, errors.Wrap(err, "unable to read config file")
		}
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("config")
		vip.AddConfigPath(DefaultDir())
	}
	vip.SetConfigType("yaml")

	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := vip.BindPFlag(key, f); err != nil {
					return Config{}, errors.Wrapf(err, "unable to bind flag %q", flag)
				}
			}
		}
	}

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "unable to read config file")
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "validation failed")
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("missing base_url")
	}

	if c.AppOrigin == "" {
		return errors.New("missing app_origin")
	}

	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}

	for _, route := range c.PublicRoutes {
		if !strings.HasPrefix(route, "/") {
			return errors.Errorf("public route %q must start with /", route)
		}
	}

	return nil
}
