package datasource

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Factory picks the Source for a table location
type Factory struct {
	logger *logrus.Logger
	cfg    HTTPClientConfig

	once       sync.Once
	httpSource *HTTPSource
}

// NewFactory creates a new data source factory
func NewFactory(cfg HTTPClientConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		cfg:    cfg,
	}
}

// SourceFor returns a FileSource for plain paths and file:// URLs and a
// shared HTTPSource for http(s) URLs.
func (f *Factory) SourceFor(location string) (Source, error) {
	if location == "" {
		return nil, NewSourceError("factory", ErrCodeUnsupported, "empty table location", nil)
	}

	if !strings.Contains(location, "://") {
		return FileSource{}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, NewSourceError("factory", ErrCodeUnsupported, fmt.Sprintf("invalid location: %s", location), err)
	}

	switch u.Scheme {
	case "file":
		return FileSource{}, nil
	case "http", "https":
		f.once.Do(func() {
			f.httpSource = NewHTTPSource(NewRateLimitedHTTPClient(f.cfg, f.logger), f.logger)
		})
		return f.httpSource, nil
	default:
		return nil, NewSourceError("factory", ErrCodeUnsupported, fmt.Sprintf("unsupported scheme: %s", u.Scheme), nil)
	}
}

// Close releases the HTTP client if one was created
func (f *Factory) Close() error {
	if f.httpSource != nil {
		return f.httpSource.httpClient.Close()
	}
	return nil
}
