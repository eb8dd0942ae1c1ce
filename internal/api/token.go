package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

const (
	tokenFlight   = "token"
	refreshFlight = "refresh"
)

// AccessToken returns the cached bearer token, fetching it from the app's token endpoint when none
// is cached. Concurrent callers share one fetch. Failures are not errors: they yield "" and the
// request goes out unauthenticated.
func (c *Client) AccessToken(ctx context.Context) string {
	if token := c.cachedToken(); token != "" {
		return token
	}

	// The shared fetch must not die with whichever caller happened to start it.
	ctx = context.WithoutCancel(ctx)

	v, _, _ := c.flights.Do(tokenFlight, func() (any, error) {
		if token := c.cachedToken(); token != "" {
			return token, nil
		}

		return c.fetchToken(ctx), nil
	})

	return v.(string)
}

// InvalidateToken drops the cached token so the next request fetches a new one.
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Refresh asks the app to refresh the session. Concurrent callers share one refresh. On success the
// token cache is cleared and warmed again.
func (c *Client) Refresh(ctx context.Context) bool {
	ctx = context.WithoutCancel(ctx)

	v, _, _ := c.flights.Do(refreshFlight, func() (any, error) {
		return c.refresh(ctx), nil
	})

	return v.(bool)
}

func (c *Client) cachedToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

func (c *Client) fetchToken(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.appOrigin+c.cfg.TokenPath, nil)
	if err != nil {
		c.logger.Debug("unable to build token request", slog.String("error", err.Error()))
		return ""
	}
	req.Header.Set("Accept", jsonContentType)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("unable to fetch access token", slog.String("error", err.Error()))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("token endpoint rejected the request", slog.Int("status", resp.StatusCode))
		return ""
	}

	body := struct {
		AccessToken string `json:"access_token"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Debug("unable to parse token response", slog.String("error", err.Error()))
		return ""
	}

	c.mu.Lock()
	c.token = body.AccessToken
	c.mu.Unlock()

	return body.AccessToken
}

func (c *Client) refresh(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.appOrigin+c.cfg.RefreshPath, nil)
	if err != nil {
		c.logger.Debug("unable to build refresh request", slog.String("error", err.Error()))
		return false
	}
	req.Header.Set("Accept", jsonContentType)
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("unable to refresh session", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Debug("refresh endpoint rejected the request", slog.Int("status", resp.StatusCode))
		return false
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Debug("unable to parse refresh response", slog.String("error", err.Error()))
		return false
	}

	c.InvalidateToken()
	c.AccessToken(ctx)

	return true
}
