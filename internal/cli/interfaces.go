package cli

import (
	"context"

	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/fs"
)

type APIClient interface {
	Do(ctx context.Context, method, path string, payload, out any, opts ...api.RequestOption) error
	Get(ctx context.Context, path string, out any, opts ...api.RequestOption) error
	Post(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error
	Put(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error
	Patch(ctx context.Context, path string, payload, out any, opts ...api.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...api.RequestOption) error

	AccessToken(ctx context.Context) string
	InvalidateToken()
}

type FileSystem interface {
	Open(name string) (fs.File, error)
}
