// Package asset fetches controller models and imports them into scene nodes.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("asset: not found")

// Source opens model files by slash-separated path relative to its base.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSource picks an HTTP source for http(s) bases and an OS filesystem source otherwise.
func NewSource(base string) Source {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return &HTTPSource{Base: base}
	}
	return &FSSource{Fs: afero.NewBasePathFs(afero.NewOsFs(), base)}
}

// FSSource reads models from an afero filesystem.
type FSSource struct {
	Fs afero.Fs
}

func (s *FSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.Fs.Open(path.Clean("/" + name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return f, nil
}

// HTTPSource fetches models relative to a base URL.
type HTTPSource struct {
	Base   string
	Client *http.Client
}

func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	url := strings.TrimSuffix(s.Base, "/") + "/" + strings.TrimPrefix(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("asset: GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}
