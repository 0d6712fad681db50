package catalog

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher retrieves the raw catalog text from the remote source.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// TokenSource supplies the current API token. Empty means the request goes
// out without an Authorization header.
type TokenSource func() string

// HTTPFetcher fetches the catalog from a fixed, versioned URL over HTTP GET.
type HTTPFetcher struct {
	url        string
	token      TokenSource
	httpClient *http.Client
	logger     *logrus.Entry
}

func NewHTTPFetcher(url string, token TokenSource, timeout time.Duration, logger *logrus.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.WithField("component", "catalog-fetcher"),
	}
}

// Fetch performs the authorized GET. A transport error or non-200 response is
// a FetchError: the caller treats it as fatal for the operation in flight.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", &FetchError{Message: err.Error()}
	}

	if token := f.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.WithError(err).Error("Catalog request failed")
		return "", &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.WithField("status", resp.StatusCode).Error("Catalog request returned non-200")
		return "", &FetchError{Status: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Message: err.Error()}
	}

	f.logger.WithField("bytes", len(body)).Debug("Catalog fetched")
	return string(body), nil
}
