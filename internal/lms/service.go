package lms

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/errors"
)

// API is the subset of *api.Client the services need.
type API interface {
	Get(ctx context.Context, path string, out any, opts ...api.RequestOption) error
	Post(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error
	Put(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error
	Patch(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...api.RequestOption) error
}

// Service wraps the LMS backend's course endpoints.
type Service struct {
	api API
}

func NewService(client API) Service {
	return Service{api: client}
}

// Envelope is the body every backend endpoint responds with.
type Envelope[T any] struct {
	Code    int            `json:"code"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    T              `json:"data"`
	Errors  map[string]any `json:"errors,omitempty"`
}

type ListParams struct {
	Limit  int
	Page   int
	Search string
}

func (p ListParams) query() url.Values {
	values := url.Values{}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	return values
}

func get[T any](ctx context.Context, client API, path string, opts ...api.RequestOption) (T, error) {
	var envelope Envelope[T]
	err := client.Get(ctx, path, &envelope, opts...)
	return envelope.Data, err
}

func send[T any](ctx context.Context, client API, method, path string, payload any) (T, error) {
	var envelope Envelope[T]
	var err error

	switch method {
	case http.MethodPost:
		err = client.Post(ctx, path, payload, &envelope)
	case http.MethodPut:
		err = client.Put(ctx, path, payload, &envelope)
	case http.MethodPatch:
		err = client.Patch(ctx, path, payload, &envelope)
	case http.MethodDelete:
		err = client.Delete(ctx, path, &envelope)
	default:
		err = errors.Errorf("unsupported method %q", method)
	}

	return envelope.Data, err
}

// pathFor joins path segments, escaping every ID.
func pathFor(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	return "/" + strings.Join(escaped, "/")
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Errorf("missing %s ID", kind)
	}
	return nil
}

func withQuery(params ListParams) api.RequestOption {
	return api.WithQuery(params.query())
}
