package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/errors"
)

// API routes every verb through MockDo.
type API struct {
	MockDo          func(method, path string, payload any) (string, error)
	MockAccessToken func() string

	mu          sync.Mutex
	invalidated int
}

func (a *API) Do(_ context.Context, method, path string, payload, out any, _ ...api.RequestOption) error {
	if a.MockDo == nil {
		return errors.New("MockDo was not configured")
	}

	body, err := a.MockDo(method, path, payload)
	if err != nil {
		return err
	}

	if out == nil || body == "" {
		return nil
	}

	return json.Unmarshal([]byte(body), out)
}

func (a *API) Get(ctx context.Context, path string, out any, opts ...api.RequestOption) error {
	return a.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (a *API) Post(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error {
	return a.Do(ctx, http.MethodPost, path, payload, out, opts...)
}

func (a *API) Put(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error {
	return a.Do(ctx, http.MethodPut, path, payload, out, opts...)
}

func (a *API) Patch(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error {
	return a.Do(ctx, http.MethodPatch, path, payload, out, opts...)
}

func (a *API) Delete(ctx context.Context, path string, out any, opts ...api.RequestOption) error {
	return a.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

func (a *API) AccessToken(_ context.Context) string {
	if a.MockAccessToken != nil {
		return a.MockAccessToken()
	}

	return ""
}

func (a *API) InvalidateToken() {
	a.mu.Lock()
	a.invalidated++
	a.mu.Unlock()
}

func (a *API) Invalidations() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.invalidated
}
