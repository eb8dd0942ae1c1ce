package mocks

import "sync"

type Navigator struct {
	Path          string
	Browser       bool
	MockRedirect  func() error
	redirectCount int
	mu            sync.Mutex
}

func (n *Navigator) CurrentPath() string {
	return n.Path
}

func (n *Navigator) InBrowser() bool {
	return n.Browser
}

func (n *Navigator) RedirectToSignIn() error {
	n.mu.Lock()
	n.redirectCount++
	n.mu.Unlock()

	if n.MockRedirect != nil {
		return n.MockRedirect()
	}

	return nil
}

func (n *Navigator) Redirects() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.redirectCount
}
