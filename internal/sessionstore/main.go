package sessionstore

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/rwx-research/lms-cli/internal/errors"
)

// DefaultCookieName is the cookie the app uses for its session.
const DefaultCookieName = "lms_session"

// Get prefers a session supplied on the command line or through the environment over the stored
// one.
func Get(backend Backend, provided string) (string, error) {
	if provided != "" {
		return provided, nil
	}

	return backend.Get()
}

// CookieJar returns a jar holding the session cookie for appOrigin, so every request to the app's
// same-origin routes carries it. An empty session yields an empty jar.
func CookieJar(appOrigin, cookieName, session string) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cookie jar")
	}

	if session == "" {
		return jar, nil
	}

	origin, err := url.Parse(appOrigin)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid app origin %q", appOrigin)
	}

	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	jar.SetCookies(origin, []*http.Cookie{{
		Name:     cookieName,
		Value:    session,
		Path:     "/",
		HttpOnly: true,
		Secure:   origin.Scheme == "https",
	}})

	return jar, nil
}
