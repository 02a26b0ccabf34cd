package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dirsync/core/models"
	"dirsync/core/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{
		URL:     url,
		ApiKey:  "secret",
		Timeout: 5 * time.Second,
		Retry:   retry.Policy{Attempts: 3, Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 1},
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{URL: "ftp://example.com"}, nil)
	assert.Error(t, err)
}

func TestGetDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dir", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get(APIKeyHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"Dir":{"Name":"data","Count":1,"Children":[{"Name":"sub","Count":2}]}}`)
	}))
	defer srv.Close()

	dir, err := newTestClient(t, srv.URL).GetDir(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data", dir.Name)
	assert.Equal(t, uint32(1), dir.FileCount)
	require.Len(t, dir.Children, 1)
	assert.Equal(t, uint32(2), dir.Children[0].FileCount)
}

func TestListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list", r.URL.Path)
		assert.Equal(t, "docs/", r.URL.Query().Get("prefix"))
		assert.Equal(t, "true", r.URL.Query().Get("update"))
		_, _ = io.WriteString(w, `{"Files":[
			{"Path":"docs/a.txt","Size":3,"Time":100,"Delete":false},
			{"Path":"docs/gone.txt","Size":0,"Time":0,"Delete":true}]}`)
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).ListFiles(context.Background(), "docs/", true)
	require.NoError(t, err)
	assert.Equal(t, []models.FileRecord{
		{Path: "docs/a.txt", Size: 3, ModifiedAt: 100},
		{Path: "docs/gone.txt", Deleted: true},
	}, records)
}

func TestListFilesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"Files":[]}`)
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).ListFiles(context.Background(), "", false)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListFilesErrors(t *testing.T) {
	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).ListFiles(context.Background(), "", false)
		assert.ErrorIs(t, err, ErrTransport)
		assert.NotErrorIs(t, err, ErrParse)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"Files":[`)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).ListFiles(context.Background(), "", false)
		assert.ErrorIs(t, err, ErrParse)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newTestClient(t, url).ListFiles(context.Background(), "", false)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestFetch(t *testing.T) {
	content := "hello, world"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/docs/a b.txt":
			http.ServeContent(w, r, "a b.txt", time.Unix(0, 0), strings.NewReader(content))
		case "/files/short.txt":
			w.Header().Set("Content-Length", "100")
			_, _ = io.WriteString(w, "only a few bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	t.Run("Complete", func(t *testing.T) {
		var last [2]int64
		tr, err := c.Fetch(context.Background(), "docs/a b.txt", 0, WithProgress(func(cur, total int64) {
			last = [2]int64{cur, total}
		}))
		require.NoError(t, err)
		defer tr.Close()
		assert.Equal(t, StateStreaming, tr.State())

		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
		assert.Equal(t, StateComplete, tr.State())
		assert.Equal(t, [2]int64{12, 12}, last)

		cur, total := tr.Progress()
		assert.Equal(t, int64(12), cur)
		assert.Equal(t, int64(12), total)
	})

	t.Run("Range", func(t *testing.T) {
		tr, err := c.Fetch(context.Background(), "docs/a b.txt", 7)
		require.NoError(t, err)
		defer tr.Close()

		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		assert.Equal(t, "world", string(data))
		assert.Equal(t, int64(7), tr.Offset())
		cur, total := tr.Progress()
		assert.Equal(t, int64(12), cur)
		assert.Equal(t, int64(12), total)
	})

	t.Run("NotFound", func(t *testing.T) {
		tr, err := c.Fetch(context.Background(), "missing.txt", 0)
		assert.ErrorIs(t, err, ErrTransport)
		assert.Nil(t, tr)
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		tr, err := c.Fetch(context.Background(), "short.txt", 0)
		require.NoError(t, err)
		defer tr.Close()

		_, err = io.ReadAll(tr)
		assert.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, StateFailed, tr.State())
		assert.Error(t, tr.Err())
	})

	t.Run("ClosedEarly", func(t *testing.T) {
		tr, err := c.Fetch(context.Background(), "docs/a b.txt", 0)
		require.NoError(t, err)
		require.NoError(t, tr.Close())
		assert.Equal(t, StateFailed, tr.State())

		_, err = tr.Read(make([]byte, 4))
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestTransferStateString(t *testing.T) {
	assert.Equal(t, "requesting", StateRequesting.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "complete", StateComplete.String())
	assert.Equal(t, "failed", StateFailed.String())
}
