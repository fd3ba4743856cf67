package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/vizdata-etl-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvBody = "id,name\n1,soup\n"

func testClient() *Client {
	return NewClient(5*time.Second, nil, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestClient_Open_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvBody), 0o600))

	c := testClient()

	t.Run("bare path", func(t *testing.T) {
		rc, err := c.Open(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, csvBody, readAll(t, rc))
	})

	t.Run("file uri", func(t *testing.T) {
		rc, err := c.Open(context.Background(), "file://"+path)
		require.NoError(t, err)
		assert.Equal(t, csvBody, readAll(t, rc))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := c.Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestClient_Open_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipes.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = io.WriteString(w, csvBody)
		default:
			http.Error(w, "no such dataset", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := testClient()

	t.Run("success", func(t *testing.T) {
		rc, err := c.Open(context.Background(), srv.URL+"/recipes.csv")
		require.NoError(t, err)
		assert.Equal(t, csvBody, readAll(t, rc))
	})

	t.Run("non-200", func(t *testing.T) {
		_, err := c.Open(context.Background(), srv.URL+"/missing.csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
		assert.Contains(t, err.Error(), "no such dataset")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Open(ctx, srv.URL+"/recipes.csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_Open_S3NotConfigured(t *testing.T) {
	_, err := testClient().Open(context.Background(), "s3://viz/recipes.csv")
	assert.ErrorIs(t, err, ErrS3NotConfigured)
}

func TestClient_Open_UnsupportedScheme(t *testing.T) {
	_, err := testClient().Open(context.Background(), "ftp://example.com/recipes.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ftp"`)
}

func TestNewS3Client(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		client, err := NewS3Client(S3Config{Endpoint: "localhost:9000", AccessKey: "minio", SecretKey: "minio123"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := NewS3Client(S3Config{AccessKey: "a", SecretKey: "b"})
		assert.ErrorContains(t, err, "endpoint")
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewS3Client(S3Config{Endpoint: "localhost:9000", AccessKey: "a"})
		assert.ErrorContains(t, err, "access key")
	})
}

func TestClient_Open_S3BadURI(t *testing.T) {
	s3, err := NewS3Client(S3Config{Endpoint: "localhost:9000", AccessKey: "minio", SecretKey: "minio123", UseSSL: false})
	require.NoError(t, err)
	c := NewClient(time.Second, s3, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = c.Open(context.Background(), "s3://bucket-only")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://bucket/key")
}
