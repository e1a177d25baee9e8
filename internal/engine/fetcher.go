package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-rangepicker/internal/config"
)

// CatalogFetcher retrieves a remote iCalendar feed of predefined ranges.
type CatalogFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements CatalogFetcher over net/http.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with the default client timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// FetchError reports a feed server that answered, but not with a calendar.
// Status is the HTTP status code of that answer.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Err, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Unauthorized reports whether the server rejected the feed credentials.
func (e *FetchError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Fetch downloads the feed at targetURL. Only http and https are accepted and
// the body is capped at config.MaxHTTPResponseSize. Answers that are not 200
// or that carry a non-calendar media type (an HTML login page, say) come back
// as a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings may carry tokens; keep them out of the logs.
	safeURL := u.Scheme + "://" + u.Host + u.Path
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestCreate, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchBadStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, &FetchError{
			URL:    safeURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %s", config.ErrBadStatus, resp.Status),
		}
	}

	if mediaType, ok := feedMediaType(resp.Header.Get(config.HeaderContentType)); !ok {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchNotICal, slog.String(config.LogKeyMediaType, mediaType))
		return nil, &FetchError{
			URL:    safeURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %s", config.ErrNotCalendar, mediaType),
		}
	}

	log.Info(config.MsgFetchDownload, slog.Int64(config.LogKeyLength, resp.ContentLength))

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser caps reads while still closing the underlying body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// feedMediaType accepts the media types calendar servers actually use for
// .ics files. A missing header is accepted and left to the decoder.
func feedMediaType(header string) (string, bool) {
	if header == "" {
		return "", true
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return header, false
	}
	switch mediaType {
	case config.MediaTypeCalendar, config.MediaTypePlain, config.MediaTypeOctetStream:
		return mediaType, true
	}
	return mediaType, false
}

// IsUnauthorized reports whether err comes from a feed that refused the credentials.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Unauthorized()
}
