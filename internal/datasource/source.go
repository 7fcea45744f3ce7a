// Package datasource opens the historical match and delivery tables from
// local files or remote http(s) locations.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Source opens a table by location
type Source interface {
	// Open returns a reader over the raw table; the caller closes it
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Name returns the name of the source
	Name() string
}

// FileSource reads tables from the local filesystem
type FileSource struct{}

// Name returns "file"
func (FileSource) Name() string { return "file" }

// Open opens the file at location; a file:// prefix is accepted
func (s FileSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	location = strings.TrimPrefix(location, "file://")
	f, err := os.Open(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, fmt.Sprintf("file not found: %s", location), ErrNotFound)
		}
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, fmt.Sprintf("failed to open %s", location), err)
	}
	return f, nil
}

// HTTPSource downloads tables over http(s)
type HTTPSource struct {
	httpClient *RateLimitedHTTPClient
	logger     *logrus.Logger
}

// NewHTTPSource creates an HTTP table source
func NewHTTPSource(httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *HTTPSource {
	return &HTTPSource{httpClient: httpClient, logger: logger}
}

// Name returns "http"
func (s *HTTPSource) Name() string { return "http" }

// Open downloads the table at location
func (s *HTTPSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	resp, err := s.httpClient.Get(ctx, location)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to download table", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, NewSourceError(s.Name(), ErrCodeNotFound, fmt.Sprintf("table not found: %s", location), ErrNotFound)
	default:
		resp.Body.Close()
		return nil, NewSourceError(s.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"location":       location,
			"content_length": resp.ContentLength,
		}).Debug("Downloading table")
	}
	return resp.Body, nil
}
