package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rwx-research/lms-cli/cmd/lms/config"
	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/navigation"
	"github.com/rwx-research/lms-cli/internal/versions"
)

// Client is an API client for the LMS backend. It attaches bearer tokens obtained from the app's
// token endpoint and recovers from an expired token by refreshing once and retrying.
//
// A Client is safe for concurrent use and should be shared by everything talking to one backend.
type Client struct {
	cfg       Config
	baseURL   string
	appOrigin string
	http      *http.Client
	logger    *slog.Logger

	mu      sync.RWMutex
	token   string
	flights singleflight.Group
}

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	options     requestOptions
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	cfg = cfg.withDefaults()

	jar := cfg.CookieJar
	if jar == nil {
		var err error
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create cookie jar")
		}
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("lms-cli/%s", config.Version)
	}

	return &Client{
		cfg:       cfg,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		appOrigin: strings.TrimSuffix(cfg.AppOrigin, "/"),
		http: &http.Client{
			Transport: versions.NewRoundTripper(cfg.RoundTripper),
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
		logger: cfg.Logger,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, payload, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, payload, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, payload, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, payload, out, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, payload, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, payload, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do sends a request and decodes a successful JSON response into out. A nil out discards the body.
func (c *Client) Do(ctx context.Context, method, path string, payload, out any, opts ...RequestOption) error {
	body, contentType, err := encodePayload(payload)
	if err != nil {
		return err
	}

	return c.do(ctx, &request{
		method:      method,
		path:        path,
		body:        body,
		contentType: contentType,
		options:     newRequestOptions(opts),
	}, out, false)
}

func (c *Client) do(ctx context.Context, r *request, out any, isRetry bool) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !c.isProxyRoute(r.path) && !isRetry {
		_, _ = io.Copy(io.Discard, resp.Body)

		if c.Refresh(ctx) {
			c.InvalidateToken()
			c.AccessToken(ctx)
			return c.do(ctx, r, out, true)
		}

		c.InvalidateToken()
		c.endSession(r)
		return errors.WithStack(errors.ErrSessionExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := extractHTTPError(resp)
		c.logFailure("API request failed", r, slog.Int("status", resp.StatusCode), slog.String("error", httpErr.Message))
		return httpErr
	}

	return decodeResponse(resp.Body, out)
}

func (c *Client) newRequest(ctx context.Context, r *request) (*http.Request, error) {
	target, err := c.resolve(r.path, r.options.query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create new HTTP request")
	}

	req.Header.Set("Accept", jsonContentType)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	for key, values := range r.options.header {
		req.Header[key] = values
	}

	if !c.isProxyRoute(r.path) && req.Header.Get("Authorization") == "" {
		if token := c.AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		}
	}

	return req, nil
}

// resolve sends proxy routes to the app origin untouched and prefixes everything else with the
// backend base URL.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	var raw string
	if c.isProxyRoute(path) {
		raw = c.appOrigin + path
	} else {
		raw = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid request path %q", path)
	}

	if len(query) > 0 {
		merged := u.Query()
		for key, values := range query {
			for _, v := range values {
				merged.Add(key, v)
			}
		}
		u.RawQuery = merged.Encode()
	}

	return u.String(), nil
}

func (c *Client) isProxyRoute(path string) bool {
	return strings.HasPrefix(path, c.cfg.ProxyPrefix)
}

// endSession runs after an unrecoverable 401. Public pages are left alone and nothing is logged for
// them.
func (c *Client) endSession(r *request) {
	currentPath := c.cfg.Navigator.CurrentPath()
	if navigation.IsPublic(currentPath, c.cfg.PublicRoutes) {
		return
	}

	c.logger.Warn("session expired", slog.String("method", r.method), slog.String("path", r.path), slog.String("page", currentPath))

	if !c.cfg.Navigator.InBrowser() {
		return
	}

	if err := c.cfg.Navigator.RedirectToSignIn(); err != nil {
		c.logger.Error("unable to redirect to sign-in", slog.String("error", err.Error()))
	}
}

func (c *Client) logFailure(msg string, r *request, attrs ...any) {
	if navigation.IsPublic(c.cfg.Navigator.CurrentPath(), c.cfg.PublicRoutes) {
		return
	}

	attrs = append([]any{slog.String("method", r.method), slog.String("path", r.path)}, attrs...)
	c.logger.Error(msg, attrs...)
}

func decodeResponse(reader io.Reader, out any) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrap(err, "unable to read API response")
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "unable to parse API response")
	}

	return nil
}

// extractHTTPError is a small helper for turning an error response into an HTTPError, preferring
// the message the backend sent.
func extractHTTPError(resp *http.Response) *errors.HTTPError {
	errorStruct := struct {
		Message string          `json:"message"`
		Error   any             `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}{}

	httpErr := errors.NewHTTPError(resp.StatusCode, resp.Status, "")

	if err := json.NewDecoder(resp.Body).Decode(&errorStruct); err != nil {
		return httpErr
	}

	if errorStruct.Message != "" {
		httpErr.Message = errorStruct.Message
	} else if msg, ok := errorStruct.Error.(string); ok && msg != "" {
		httpErr.Message = msg
	}

	if len(errorStruct.Errors) > 0 {
		details := map[string]any{}
		if err := json.Unmarshal(errorStruct.Errors, &details); err == nil {
			httpErr.Details = details
		}
	}

	return httpErr
}
