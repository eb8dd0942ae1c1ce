package navigation

import (
	"strings"
	"sync"

	"github.com/skratchdot/open-golang/open"

	"github.com/rwx-research/lms-cli/internal/errors"
)

const SignInPath = "/sign-in"

// DefaultPublicRoutes are pages reachable without authentication. A failed refresh on one of these
// neither redirects nor logs.
var DefaultPublicRoutes = []string{"/sign-in", "/sign-up", "/", "/code-sandbox"}

// Navigator abstracts the browser so the client can be exercised without one.
type Navigator interface {
	// CurrentPath is the path of the page the user is on.
	CurrentPath() string
	// InBrowser reports whether there is a browser to redirect at all.
	InBrowser() bool
	RedirectToSignIn() error
}

// IsPublic reports whether path is one of routes. Matching is exact, ignoring a trailing slash.
func IsPublic(path string, routes []string) bool {
	path = normalize(path)
	for _, route := range routes {
		if normalize(route) == path {
			return true
		}
	}

	return false
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return path
}

// Headless is used when there is no browser context, e.g. scripted CLI usage.
type Headless struct {
	Path string
}

func (h Headless) CurrentPath() string {
	return h.Path
}

func (h Headless) InBrowser() bool {
	return false
}

func (h Headless) RedirectToSignIn() error {
	return nil
}

// Browser redirects by opening the sign-in page of the app in the user's browser. It is safe for
// concurrent use; the page is opened at most once until the path changes again.
type Browser struct {
	AppOrigin string
	Open      func(url string) error

	mu   sync.Mutex
	path string
}

func NewBrowser(appOrigin, currentPath string) *Browser {
	return &Browser{
		AppOrigin: appOrigin,
		Open:      open.Run,
		path:      currentPath,
	}
}

func (b *Browser) CurrentPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *Browser) InBrowser() bool {
	return true
}

func (b *Browser) RedirectToSignIn() error {
	if b.AppOrigin == "" {
		return errors.New("missing app origin")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.path == SignInPath {
		return nil
	}

	url := strings.TrimSuffix(b.AppOrigin, "/") + SignInPath
	if err := b.Open(url); err != nil {
		return errors.Wrapf(err, "unable to open %q", url)
	}

	b.path = SignInPath
	return nil
}
