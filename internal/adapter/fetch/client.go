package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/vizdata-etl-service/internal/observability"
	"github.com/minio/minio-go/v7"
)

// ErrS3NotConfigured is returned for s3:// URIs when no object store client was provided.
var ErrS3NotConfigured = errors.New("s3 source not configured")

// maxErrorBody bounds how much of a failed HTTP response ends up in the error.
const maxErrorBody = 512

// Client opens input sources by URI. Supported forms are bare paths and
// file:// URIs, http:// and https:// URLs, and s3://bucket/key objects.
type Client struct {
	httpClient *http.Client
	s3         *minio.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a source client. s3 may be nil when no s3:// sources are used.
func NewClient(timeout time.Duration, s3 *minio.Client, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		s3:      s3,
		metrics: metrics,
		logger:  logger,
	}
}

// Open returns a reader over the source content. The caller closes it.
func (c *Client) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse source uri %q: %w", uri, err)
	}

	start := time.Now()
	var (
		rc     io.ReadCloser
		scheme string
	)
	switch u.Scheme {
	case "", "file":
		scheme = "file"
		path := uri
		if u.Scheme == "file" {
			path = u.Path
		}
		rc, err = os.Open(path)
		if err != nil {
			err = fmt.Errorf("open file source: %w", err)
		}
	case "http", "https":
		scheme = "http"
		rc, err = c.openHTTP(ctx, uri)
	case "s3":
		scheme = "s3"
		rc, err = c.openS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
	c.metrics.SourceFetch.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("source opened", "uri", redact(u), "scheme", scheme)
	return rc, nil
}

func (c *Client) openHTTP(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http source request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("http source error: status %d: %s", resp.StatusCode, body)
	}
	return resp.Body, nil
}

func (c *Client) openS3(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if c.s3 == nil {
		return nil, ErrS3NotConfigured
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 source needs s3://bucket/key, got bucket %q key %q", bucket, key)
	}

	obj, err := c.s3.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s/%s: %w", bucket, key, err)
	}
	// GetObject is lazy; Stat surfaces a missing object now rather than on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat s3 object %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

// redact drops credentials and query strings from a URI before logging.
func redact(u *url.URL) string {
	clean := *u
	clean.User = nil
	clean.RawQuery = ""
	return clean.String()
}
