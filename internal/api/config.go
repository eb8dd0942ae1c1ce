package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/navigation"
)

const (
	DefaultProxyPrefix = "/api/"
	DefaultTokenPath   = "/api/auth/token"
	DefaultRefreshPath = "/api/auth/refresh"
)

type Config struct {
	// BaseURL is the REST backend every non-proxy path is resolved against.
	BaseURL string
	// AppOrigin hosts the cookie-authenticated same-origin routes, including the token and refresh
	// endpoints.
	AppOrigin string

	ProxyPrefix  string
	TokenPath    string
	RefreshPath  string
	PublicRoutes []string

	Navigator    navigation.Navigator
	Logger       *slog.Logger
	RoundTripper http.RoundTripper
	CookieJar    http.CookieJar
	Timeout      time.Duration
	UserAgent    string
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("missing base URL")
	}

	if err := validateOrigin(c.BaseURL); err != nil {
		return errors.Wrapf(err, "invalid base URL %q", c.BaseURL)
	}

	if c.AppOrigin == "" {
		return errors.New("missing app origin")
	}

	if err := validateOrigin(c.AppOrigin); err != nil {
		return errors.Wrapf(err, "invalid app origin %q", c.AppOrigin)
	}

	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}

	return nil
}

func (c Config) withDefaults() Config {
	if c.ProxyPrefix == "" {
		c.ProxyPrefix = DefaultProxyPrefix
	}
	if c.TokenPath == "" {
		c.TokenPath = DefaultTokenPath
	}
	if c.RefreshPath == "" {
		c.RefreshPath = DefaultRefreshPath
	}
	if c.PublicRoutes == nil {
		c.PublicRoutes = navigation.DefaultPublicRoutes
	}
	if c.Navigator == nil {
		c.Navigator = navigation.Headless{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.RoundTripper == nil {
		c.RoundTripper = http.DefaultTransport
	}

	return c
}

func validateOrigin(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}

	if u.Host == "" {
		return errors.New("missing host")
	}

	return nil
}
