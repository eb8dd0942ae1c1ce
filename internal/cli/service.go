package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/lms"
	"github.com/rwx-research/lms-cli/internal/navigation"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

const (
	signInPath  = "/api/auth/sign-in"
	signOutPath = "/api/auth/sign-out"
)

// Service holds the main business logic of the CLI.
type Service struct {
	Config
	lms lms.Service
	// seededSession is the session cookie the jar held when the service was created.
	seededSession string
}

func NewService(cfg Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return Service{}, errors.Wrap(err, "validation failed")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = sessionstore.DefaultCookieName
	}

	service := Service{Config: cfg, lms: lms.NewService(cfg.APIClient)}
	service.seededSession = service.sessionCookie()
	return service, nil
}

// PersistSession stores the session cookie when the app replaced it during this run, e.g. on a
// refresh. A session that went away is left for Logout to clear.
func (s Service) PersistSession() error {
	session := s.sessionCookie()
	if session == "" || session == s.seededSession {
		return nil
	}

	stored, err := s.SessionBackend.Get()
	if err == nil && stored == session {
		return nil
	}

	return errors.Wrap(s.SessionBackend.Set(session), "unable to store the session")
}

// Login signs in with email and password through the app and stores the session it hands out.
func (s Service) Login(ctx context.Context, cfg LoginConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	stop := s.spin("Signing in...")
	err := s.APIClient.Post(ctx, signInPath, map[string]string{"email": cfg.Email, "password": cfg.Password}, nil)
	stop()
	if err != nil {
		return errors.Wrap(err, "unable to sign in")
	}

	session := s.sessionCookie()
	if session == "" {
		return errors.New("The sign-in succeeded, but the app did not hand out a session. Please try again.")
	}

	if err := s.SessionBackend.Set(session); err != nil {
		return errors.Wrap(err, "unable to store the session")
	}

	s.APIClient.InvalidateToken()
	fmt.Fprintln(s.Stdout, "Signed in!")
	return nil
}

// LoginWithBrowser opens the sign-in page and asks for the session cookie the browser ended up with.
func (s Service) LoginWithBrowser(ctx context.Context, cfg LoginWithBrowserConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	signInURL := strings.TrimSuffix(s.AppOrigin, "/") + navigation.SignInPath

	// we print the URL in case opening the browser fails, so we ignore this error
	cfg.OpenURL(signInURL) //nolint:errcheck

	fmt.Fprintln(s.Stdout)
	fmt.Fprintln(s.Stdout, "Sign in with your browser. If it does not open automatically, you can visit this URL:")
	fmt.Fprintln(s.Stdout)
	fmt.Fprintf(s.Stdout, "\t%v\n", signInURL)
	fmt.Fprintln(s.Stdout)
	fmt.Fprintf(s.Stdout, "Once signed in, copy the value of the %q cookie and paste it below.\n", s.CookieName)
	fmt.Fprintln(s.Stdout)

	session, err := cfg.PromptSession()
	if err != nil {
		return err
	}

	session = strings.TrimSpace(session)
	if session == "" {
		return errors.New("No session was provided.")
	}

	if err := s.installSession(session); err != nil {
		return err
	}

	s.APIClient.InvalidateToken()
	if s.APIClient.AccessToken(ctx) == "" {
		return errors.New("The app did not accept this session. Make sure you copied the whole cookie value and try again.")
	}

	if err := s.SessionBackend.Set(session); err != nil {
		return errors.Wrap(err, "unable to store the session")
	}

	fmt.Fprintln(s.Stdout, "Signed in!")
	return nil
}

func (s Service) Logout(ctx context.Context) error {
	if err := s.APIClient.Post(ctx, signOutPath, nil, nil); err != nil {
		fmt.Fprintf(s.Stderr, "Unable to end the session with the app: %s\n", err)
	}

	s.APIClient.InvalidateToken()

	if err := s.SessionBackend.Clear(); err != nil {
		return errors.Wrap(err, "unable to remove the stored session")
	}

	fmt.Fprintln(s.Stdout, "Signed out.")
	return nil
}

type WhoamiResult struct {
	Subject   string     `json:"subject"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Whoami describes the current access token. The token is decoded, not verified; the backend is
// the one verifying it.
func (s Service) Whoami(ctx context.Context, cfg WhoamiConfig) error {
	token := s.APIClient.AccessToken(ctx)
	if token == "" {
		return errors.New("You are not signed in. Run `lms login` first.")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return errors.Wrap(err, "unable to decode the access token")
	}

	result := WhoamiResult{}
	result.Subject, _ = claims.GetSubject()
	result.Name, _ = claims["name"].(string)
	result.Email, _ = claims["email"].(string)
	result.Role, _ = claims["role"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt := exp.Time.UTC()
		result.ExpiresAt = &expiresAt
	}

	if ok, err := s.writeStructured(cfg.Output, result); ok {
		return err
	}

	fmt.Fprintf(s.Stdout, "Subject: %v\n", result.Subject)
	if result.Name != "" {
		fmt.Fprintf(s.Stdout, "Name: %v\n", result.Name)
	}
	if result.Email != "" {
		fmt.Fprintf(s.Stdout, "Email: %v\n", result.Email)
	}
	if result.Role != "" {
		fmt.Fprintf(s.Stdout, "Role: %v\n", result.Role)
	}
	if result.ExpiresAt != nil {
		fmt.Fprintf(s.Stdout, "Expires: %v\n", formatTime(result.ExpiresAt))
	}

	return nil
}

// Request sends a raw request through the authenticated client and prints the response body.
func (s Service) Request(ctx context.Context, cfg RequestConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	var payload any
	if cfg.Data != "" {
		if !json.Valid([]byte(cfg.Data)) {
			return errors.New("--data must be valid JSON")
		}
		payload = json.RawMessage(cfg.Data)
	}

	var out json.RawMessage
	stop := s.spin(fmt.Sprintf("%s %s", strings.ToUpper(cfg.Method), cfg.Path))
	err := s.APIClient.Do(ctx, strings.ToUpper(cfg.Method), cfg.Path, payload, &out, api.WithQuery(cfg.Query))
	stop()
	if err != nil {
		return err
	}

	if len(out) == 0 {
		return nil
	}

	if cfg.Output == OutputYAML {
		encoded, err := yaml.JSONToYAML(out)
		if err != nil {
			return errors.Wrap(err, "unable to YAML encode the response")
		}
		fmt.Fprint(s.Stdout, string(encoded))
		return nil
	}

	var indented strings.Builder
	encoder := json.NewEncoder(&indented)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return errors.Wrap(err, "unable to format the response")
	}
	fmt.Fprint(s.Stdout, indented.String())

	return nil
}

func (s Service) appOriginURL() (*url.URL, error) {
	origin, err := url.Parse(s.AppOrigin)
	return origin, errors.Wrapf(err, "invalid app origin %q", s.AppOrigin)
}

func (s Service) sessionCookie() string {
	origin, err := s.appOriginURL()
	if err != nil {
		return ""
	}

	for _, cookie := range s.Cookies.Cookies(origin) {
		if cookie.Name == s.CookieName {
			return cookie.Value
		}
	}

	return ""
}

func (s Service) installSession(session string) error {
	origin, err := s.appOriginURL()
	if err != nil {
		return err
	}

	s.Cookies.SetCookies(origin, []*http.Cookie{{
		Name:     s.CookieName,
		Value:    session,
		Path:     "/",
		HttpOnly: true,
		Secure:   origin.Scheme == "https",
	}})

	return nil
}
