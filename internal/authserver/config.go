package authserver

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

const minSecretLength = 32

type Config struct {
	// TokenURL is the backend's OAuth2 token endpoint.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// SessionSecret seeds the cookie signing and encryption keys.
	SessionSecret []byte
	CookieName    string
	SecureCookies bool

	Logger *slog.Logger
	// HTTPClient is used for calls to the token endpoint.
	HTTPClient *http.Client
}

func (c Config) Validate() error {
	if c.TokenURL == "" {
		return errors.New("missing token URL")
	}

	if u, err := url.Parse(c.TokenURL); err != nil || u.Host == "" {
		return errors.Errorf("invalid token URL %q", c.TokenURL)
	}

	if c.ClientID == "" {
		return errors.New("missing client ID")
	}

	if len(c.SessionSecret) < minSecretLength {
		return errors.Errorf("session secret must be at least %d bytes", minSecretLength)
	}

	return nil
}

func (c Config) withDefaults() Config {
	if c.CookieName == "" {
		c.CookieName = sessionstore.DefaultCookieName
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
