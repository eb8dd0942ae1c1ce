package api_test

import (
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/mocks"
	"github.com/rwx-research/lms-cli/internal/navigation"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

const (
	backendHost = "backend.example.com"
	appHost     = "app.example.com"
)

var _ = Describe("API Client", func() {
	var (
		rt        *mocks.RoundTripper
		navigator *mocks.Navigator
		jar       http.CookieJar
	)

	newClient := func() *api.Client {
		c, err := api.NewClient(api.Config{
			BaseURL:      "https://" + backendHost + "/v1/",
			AppOrigin:    "https://" + appHost,
			Navigator:    navigator,
			RoundTripper: rt,
			CookieJar:    jar,
			Logger:       slog.New(slog.NewTextHandler(GinkgoWriter, nil)),
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		rt = new(mocks.RoundTripper)
		navigator = &mocks.Navigator{Path: "/courses", Browser: true}
		jar = nil
	})

	Describe("NewClient", func() {
		It("requires a base URL and an app origin", func() {
			_, err := api.NewClient(api.Config{AppOrigin: "https://" + appHost})
			Expect(err).To(MatchError(ContainSubstring("missing base URL")))

			_, err = api.NewClient(api.Config{BaseURL: "https://" + backendHost})
			Expect(err).To(MatchError(ContainSubstring("missing app origin")))

			_, err = api.NewClient(api.Config{BaseURL: "ftp://" + backendHost, AppOrigin: "https://" + appHost})
			Expect(err).To(MatchError(ContainSubstring("scheme must be http or https")))
		})
	})

	Describe("AccessToken", func() {
		It("coalesces concurrent fetches into one request", func() {
			release := make(chan struct{})
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				Expect(req.URL.Path).To(Equal("/api/auth/token"))
				<-release
				return mocks.JSONResponse(200, `{"access_token":"tok-1"}`, nil), nil
			}
			c := newClient()

			const callers = 10
			results := make([]string, callers)
			var wg sync.WaitGroup
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					results[i] = c.AccessToken(ctx)
				}(i)
			}

			time.Sleep(100 * time.Millisecond)
			close(release)
			wg.Wait()

			Expect(rt.CountPath("/api/auth/token")).To(Equal(1))
			for _, result := range results {
				Expect(result).To(Equal("tok-1"))
			}
		})

		It("shares a failed fetch as no token with every caller and caches nothing", func() {
			release := make(chan struct{})
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				<-release
				return mocks.JSONResponse(500, `{"message":"boom"}`, nil), nil
			}
			c := newClient()

			const callers = 5
			results := make([]string, callers)
			var wg sync.WaitGroup
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					results[i] = c.AccessToken(ctx)
				}(i)
			}

			time.Sleep(100 * time.Millisecond)
			close(release)
			wg.Wait()

			Expect(rt.CountPath("/api/auth/token")).To(Equal(1))
			Expect(results).To(HaveEach(""))

			Expect(c.AccessToken(ctx)).To(Equal(""))
			Expect(rt.CountPath("/api/auth/token")).To(Equal(2))
		})

		It("treats network errors and unparseable bodies as no token", func() {
			calls := 0
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("connection refused")
				}
				return mocks.JSONResponse(200, `not json`, nil), nil
			}
			c := newClient()

			Expect(c.AccessToken(ctx)).To(Equal(""))
			Expect(c.AccessToken(ctx)).To(Equal(""))
			Expect(calls).To(Equal(2))
		})

		It("serves a cached token without touching the network until invalidated", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				return mocks.JSONResponse(200, `{"access_token":"cached"}`, nil), nil
			}
			c := newClient()

			Expect(c.AccessToken(ctx)).To(Equal("cached"))
			Expect(c.AccessToken(ctx)).To(Equal("cached"))
			Expect(c.AccessToken(ctx)).To(Equal("cached"))
			Expect(rt.CountPath("/api/auth/token")).To(Equal(1))

			c.InvalidateToken()
			Expect(c.AccessToken(ctx)).To(Equal("cached"))
			Expect(rt.CountPath("/api/auth/token")).To(Equal(2))
		})

		It("sends the session cookie to the token endpoint", func() {
			var err error
			jar, err = sessionstore.CookieJar("https://"+appHost, "", "session-123")
			Expect(err).NotTo(HaveOccurred())

			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				cookie, err := req.Cookie(sessionstore.DefaultCookieName)
				Expect(err).NotTo(HaveOccurred())
				Expect(cookie.Value).To(Equal("session-123"))
				return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
			}

			Expect(newClient().AccessToken(ctx)).To(Equal("tok"))
		})
	})

	Describe("request construction", func() {
		It("prefixes the base URL, attaches the bearer token and returns the parsed body", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Host + req.URL.Path {
				case appHost + "/api/auth/token":
					return mocks.JSONResponse(200, `{"access_token":"valid"}`, nil), nil
				case backendHost + "/v1/course/modules/abc/assignments":
					Expect(req.URL.Query().Get("limit")).To(Equal("5"))
					Expect(req.Header.Get("Authorization")).To(Equal("Bearer valid"))
					return mocks.JSONResponse(200, `{"data":[{"id":"a1","title":"Essay"}],"message":"ok"}`, nil), nil
				}
				Fail("unexpected request to " + req.URL.String())
				return nil, nil
			}
			c := newClient()
			Expect(c.AccessToken(ctx)).To(Equal("valid"))

			var out map[string]any
			err := c.Get(ctx, "/course/modules/abc/assignments?limit=5", &out)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(map[string]any{
				"data":    []any{map[string]any{"id": "a1", "title": "Essay"}},
				"message": "ok",
			}))
			Expect(rt.CountPath("/api/auth/refresh")).To(Equal(0))
			Expect(rt.CountPath("/api/auth/token")).To(Equal(1))
		})

		It("merges query options into the path", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}
				Expect(req.URL.Query()).To(Equal(url.Values{"limit": {"5"}, "page": {"2"}}))
				return mocks.JSONResponse(200, `{}`, nil), nil
			}

			err := newClient().Get(ctx, "/course?limit=5", nil, api.WithQuery(url.Values{"page": {"2"}}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("sends proxy routes to the app origin without a bearer token", func() {
			var err error
			jar, err = sessionstore.CookieJar("https://"+appHost, "", "session-123")
			Expect(err).NotTo(HaveOccurred())

			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				Expect(req.URL.String()).To(Equal("https://" + appHost + "/api/certificates/preview"))
				Expect(req.Header.Get("Authorization")).To(BeEmpty())
				_, err := req.Cookie(sessionstore.DefaultCookieName)
				Expect(err).NotTo(HaveOccurred())
				return mocks.JSONResponse(200, `{"ok":true}`, nil), nil
			}

			var out struct{ OK bool }
			Expect(newClient().Get(ctx, "/api/certificates/preview", &out)).To(Succeed())
			Expect(out.OK).To(BeTrue())
			Expect(rt.CountPath("/api/auth/token")).To(Equal(0))
		})

		It("sends the request unauthenticated when no token can be fetched", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(401, ``, nil), nil
				}
				Expect(req.Header.Get("Authorization")).To(BeEmpty())
				return mocks.JSONResponse(200, `{}`, nil), nil
			}

			Expect(newClient().Get(ctx, "/public/catalog", nil)).To(Succeed())
		})

		It("encodes payloads as JSON", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}
				Expect(req.Method).To(Equal(http.MethodPatch))
				Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))
				body, _ := io.ReadAll(req.Body)
				Expect(string(body)).To(MatchJSON(`{"title":"Intro"}`))
				return mocks.JSONResponse(200, `{"id":"c1"}`, nil), nil
			}

			var out struct{ ID string }
			Expect(newClient().Patch(ctx, "/course/c1", map[string]string{"title": "Intro"}, &out)).To(Succeed())
			Expect(out.ID).To(Equal("c1"))
		})

		It("keeps a caller supplied Content-Type", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}
				Expect(req.Header.Get("Content-Type")).To(Equal("application/merge-patch+json"))
				return mocks.JSONResponse(204, ``, nil), nil
			}

			err := newClient().Put(ctx, "/course/c1", map[string]string{"title": "Intro"}, nil,
				api.WithHeader("Content-Type", "application/merge-patch+json"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("passes form data through without a JSON content type", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}

				mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
				Expect(err).NotTo(HaveOccurred())
				Expect(mediaType).To(Equal("multipart/form-data"))
				Expect(params["boundary"]).NotTo(BeEmpty())

				reader := multipart.NewReader(req.Body, params["boundary"])
				form, err := reader.ReadForm(1 << 20)
				Expect(err).NotTo(HaveOccurred())
				Expect(form.Value["title"]).To(Equal([]string{"Essay"}))
				Expect(form.File["file"]).To(HaveLen(1))
				Expect(form.File["file"][0].Filename).To(Equal("essay.txt"))

				fd, err := form.File["file"][0].Open()
				Expect(err).NotTo(HaveOccurred())
				contents, _ := io.ReadAll(fd)
				Expect(string(contents)).To(Equal("my essay"))

				return mocks.JSONResponse(201, `{"id":"s1"}`, nil), nil
			}

			form := api.NewFormData().
				Set("title", "Essay").
				Attach("file", "essay.txt", strings.NewReader("my essay"))

			Expect(newClient().Post(ctx, "/course/assignments/a1/submissions", form, nil)).To(Succeed())
		})

		It("sends raw bodies unmodified and without a content type", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}
				Expect(req.Header.Get("Content-Type")).To(BeEmpty())
				body, _ := io.ReadAll(req.Body)
				Expect(body).To(Equal([]byte("raw bytes")))
				return mocks.JSONResponse(200, ``, nil), nil
			}

			Expect(newClient().Post(ctx, "/uploads", []byte("raw bytes"), nil)).To(Succeed())
		})
	})

	Describe("error responses", func() {
		BeforeEach(func() {
			navigator.Path = "/courses/c1"
		})

		It("uses the message from the error body", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}
				return mocks.JSONResponse(422, `{"code":422,"status":"error","message":"title is required","errors":{"title":"required"}}`, nil), nil
			}

			err := newClient().Post(ctx, "/course", map[string]string{}, nil)
			Expect(err).To(MatchError("title is required"))

			var httpErr *errors.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(422))
			Expect(httpErr.Details).To(Equal(map[string]any{"title": "required"}))
		})

		It("falls back to the status line when the body is unparseable", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/token" {
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				}
				return mocks.JSONResponse(404, `<html>not found</html>`, nil), nil
			}

			err := newClient().Get(ctx, "/course/missing", nil)
			Expect(err).To(MatchError("HTTP 404: Not Found"))
			Expect(errors.Is(err, errors.ErrNotFound)).To(BeTrue())
		})

		It("does not refresh on a 401 from a proxy route", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				return mocks.JSONResponse(401, `{"error":"no session"}`, nil), nil
			}

			err := newClient().Get(ctx, "/api/grades/export", nil)
			Expect(err).To(MatchError("no session"))
			Expect(rt.CountPath("/api/auth/refresh")).To(Equal(0))
			Expect(navigator.Redirects()).To(Equal(0))
		})
	})

	Describe("401 recovery", func() {
		It("refreshes, re-fetches the token and retries once", func() {
			var refreshed atomic.Bool
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					if refreshed.Load() {
						return mocks.JSONResponse(200, `{"access_token":"fresh"}`, nil), nil
					}
					return mocks.JSONResponse(200, `{"access_token":"stale"}`, nil), nil
				case "/api/auth/refresh":
					Expect(req.Method).To(Equal(http.MethodPost))
					refreshed.Store(true)
					return mocks.JSONResponse(200, `{}`, nil), nil
				case "/v1/course/x":
					if req.Header.Get("Authorization") == "Bearer fresh" {
						return mocks.JSONResponse(200, `{"data":[]}`, nil), nil
					}
					return mocks.JSONResponse(401, ``, nil), nil
				}
				Fail("unexpected request to " + req.URL.String())
				return nil, nil
			}

			var out map[string]any
			err := newClient().Get(ctx, "/course/x", &out)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(map[string]any{"data": []any{}}))

			Expect(rt.CountPath("/v1/course/x")).To(Equal(2))
			Expect(rt.CountPath("/api/auth/refresh")).To(Equal(1))
			Expect(navigator.Redirects()).To(Equal(0))
		})

		It("does not retry more than once", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				case "/api/auth/refresh":
					return mocks.JSONResponse(200, `{}`, nil), nil
				}
				return mocks.JSONResponse(401, ``, nil), nil
			}

			err := newClient().Get(ctx, "/course/x", nil)
			Expect(err).To(HaveOccurred())

			var httpErr *errors.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(401))
			Expect(err).To(MatchError("HTTP 401: Unauthorized"))

			Expect(rt.CountPath("/v1/course/x")).To(Equal(2))
			Expect(rt.CountPath("/api/auth/refresh")).To(Equal(1))
		})

		It("resends the same body on retry", func() {
			var bodies []string
			var refreshed atomic.Bool
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				case "/api/auth/refresh":
					refreshed.Store(true)
					return mocks.JSONResponse(200, `{}`, nil), nil
				}
				body, _ := io.ReadAll(req.Body)
				bodies = append(bodies, string(body))
				if refreshed.Load() {
					return mocks.JSONResponse(201, `{}`, nil), nil
				}
				return mocks.JSONResponse(401, ``, nil), nil
			}

			Expect(newClient().Post(ctx, "/course", map[string]string{"title": "Intro"}, nil)).To(Succeed())
			Expect(bodies).To(HaveLen(2))
			Expect(bodies[0]).To(Equal(bodies[1]))
			Expect(bodies[0]).To(MatchJSON(`{"title":"Intro"}`))
		})

		It("ends the session and redirects when the refresh fails", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				case "/api/auth/refresh":
					return mocks.JSONResponse(401, `{"message":"refresh token expired"}`, nil), nil
				}
				return mocks.JSONResponse(401, ``, nil), nil
			}
			c := newClient()

			err := c.Get(ctx, "/course/x", nil)
			Expect(err).To(MatchError("Session expired. Please login again."))
			Expect(err).To(MatchError(errors.ErrSessionExpired))
			Expect(navigator.Redirects()).To(Equal(1))
			Expect(rt.CountPath("/v1/course/x")).To(Equal(1))

			tokenFetches := rt.CountPath("/api/auth/token")
			c.AccessToken(ctx)
			Expect(rt.CountPath("/api/auth/token")).To(Equal(tokenFetches + 1))
		})

		It("treats a refresh network error as a failed refresh", func() {
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				case "/api/auth/refresh":
					return nil, errors.New("connection reset")
				}
				return mocks.JSONResponse(401, ``, nil), nil
			}

			err := newClient().Get(ctx, "/course/x", nil)
			Expect(err).To(MatchError(errors.ErrSessionExpired))
		})

		It("does not redirect from a public route but still fails", func() {
			navigator.Path = "/sign-in"
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/api/auth/refresh" {
					return mocks.JSONResponse(401, ``, nil), nil
				}
				return mocks.JSONResponse(401, ``, nil), nil
			}

			err := newClient().Get(ctx, "/course/x", nil)
			Expect(err).To(MatchError(errors.ErrSessionExpired))
			Expect(navigator.Redirects()).To(Equal(0))
		})

		It("does not redirect without a browser", func() {
			navigator.Browser = false
			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				return mocks.JSONResponse(401, ``, nil), nil
			}

			err := newClient().Get(ctx, "/course/x", nil)
			Expect(err).To(MatchError(errors.ErrSessionExpired))
			Expect(navigator.Redirects()).To(Equal(0))
		})

		It("coalesces the refreshes of concurrent requests", func() {
			const requests = 8

			var (
				refreshed  atomic.Bool
				mu         sync.Mutex
				staleCount int
				allStale   = make(chan struct{})
			)

			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					if refreshed.Load() {
						return mocks.JSONResponse(200, `{"access_token":"fresh"}`, nil), nil
					}
					return mocks.JSONResponse(200, `{"access_token":"stale"}`, nil), nil
				case "/api/auth/refresh":
					time.Sleep(100 * time.Millisecond)
					refreshed.Store(true)
					return mocks.JSONResponse(200, `{}`, nil), nil
				}

				if req.Header.Get("Authorization") == "Bearer fresh" {
					return mocks.JSONResponse(200, `{"data":[]}`, nil), nil
				}

				// Hold every stale request until all of them have arrived so the 401s land together.
				mu.Lock()
				staleCount++
				if staleCount == requests {
					close(allStale)
				}
				mu.Unlock()
				<-allStale

				return mocks.JSONResponse(401, ``, nil), nil
			}
			c := newClient()

			errs := make([]error, requests)
			var wg sync.WaitGroup
			for i := 0; i < requests; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					errs[i] = c.Get(ctx, "/course/x", nil)
				}(i)
			}
			wg.Wait()

			for _, err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(rt.CountPath("/api/auth/refresh")).To(Equal(1))
			Expect(rt.CountPath("/v1/course/x")).To(Equal(2 * requests))
		})

		It("opens the sign-in page once when concurrent requests lose the session", func() {
			const requests = 8

			rt.MockRoundTrip = func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/auth/token":
					return mocks.JSONResponse(200, `{"access_token":"tok"}`, nil), nil
				case "/api/auth/refresh":
					time.Sleep(50 * time.Millisecond)
					return mocks.JSONResponse(401, ``, nil), nil
				}
				return mocks.JSONResponse(401, ``, nil), nil
			}

			var opens atomic.Int32
			browser := navigation.NewBrowser("https://"+appHost, "/courses/c1")
			browser.Open = func(string) error {
				opens.Add(1)
				return nil
			}

			c, err := api.NewClient(api.Config{
				BaseURL:      "https://" + backendHost + "/v1/",
				AppOrigin:    "https://" + appHost,
				Navigator:    browser,
				RoundTripper: rt,
				Logger:       slog.New(slog.NewTextHandler(GinkgoWriter, nil)),
			})
			Expect(err).NotTo(HaveOccurred())

			errs := make([]error, requests)
			var wg sync.WaitGroup
			for i := 0; i < requests; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					errs[i] = c.Get(ctx, "/course/x", nil)
				}(i)
			}
			wg.Wait()

			for _, err := range errs {
				Expect(err).To(MatchError(errors.ErrSessionExpired))
			}
			Expect(opens.Load()).To(Equal(int32(1)))
			Expect(browser.CurrentPath()).To(Equal("/sign-in"))
		})
	})
})
