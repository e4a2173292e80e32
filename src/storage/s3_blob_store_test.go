package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mood-diary/src/domain"
	"mood-diary/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeS3 パススタイルのS3互換サーバー
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	fail     bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	fail := f.fail
	f.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFakeS3(t *testing.T) (*fakeS3, *storage.S3Config) {
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, &storage.S3Config{
		Endpoint:        server.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Region:          "us-east-1",
		Bucket:          "photos",
		UseSSL:          false,
	}
}

func TestS3BlobStore(t *testing.T) {
	ctx := context.Background()

	t.Run("アップロードと削除", func(t *testing.T) {
		fake, cfg := newFakeS3(t)
		store, err := storage.NewS3BlobStore(cfg, newTestLogger())
		require.NoError(t, err)

		ref, err := store.Store(ctx, &domain.PhotoUpload{
			Filename:    "cat.jpg",
			ContentType: "image/jpeg",
			Body:        strings.NewReader("jpeg-bytes"),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "photos/"))
		assert.True(t, strings.HasSuffix(ref, ".jpg"))

		put := fake.last()
		assert.Equal(t, http.MethodPut, put.Method)
		assert.Equal(t, "/photos/"+ref, put.Path)
		assert.Equal(t, "jpeg-bytes", put.Body)

		require.NoError(t, store.Delete(ctx, ref))
		del := fake.last()
		assert.Equal(t, http.MethodDelete, del.Method)
		assert.Equal(t, "/photos/"+ref, del.Path)
	})

	t.Run("サーバーエラー", func(t *testing.T) {
		fake, cfg := newFakeS3(t)
		fake.fail = true
		store, err := storage.NewS3BlobStore(cfg, newTestLogger())
		require.NoError(t, err)

		_, err = store.Store(ctx, &domain.PhotoUpload{Filename: "a.png", Body: strings.NewReader("x")})
		assert.Error(t, err)
		assert.Error(t, store.Delete(ctx, "photos/2024/03/a.png"))
	})

	t.Run("URL", func(t *testing.T) {
		_, cfg := newFakeS3(t)
		store, err := storage.NewS3BlobStore(cfg, newTestLogger())
		require.NoError(t, err)
		signed := store.URL("photos/2024/03/a.png")
		assert.Contains(t, signed, "/photos/photos/2024/03/a.png")
		assert.Contains(t, signed, "X-Amz-Signature=")

		cfg.PublicURL = "https://cdn.example.com/"
		public, err := storage.NewS3BlobStore(cfg, newTestLogger())
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/photos/2024/03/a.png", public.URL("photos/2024/03/a.png"))
		assert.Equal(t, "", public.URL(""))
	})
}

func TestLogArchiver(t *testing.T) {
	ctx := context.Background()
	fake, cfg := newFakeS3(t)
	archiver, err := storage.NewLogArchiver(cfg, "logs-bucket", newTestLogger())
	require.NoError(t, err)

	dir := t.TempDir()
	old := filepath.Join(dir, "app-2024-01-01.log")
	current := filepath.Join(dir, "app-2024-03-05.log")
	fresh := filepath.Join(dir, "app-2024-03-04.log")
	for _, p := range []string{old, current, fresh} {
		require.NoError(t, os.WriteFile(p, []byte(`{"msg":"x"}`+"\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(current, past, past))

	n, err := archiver.ArchiveOld(ctx, dir, 24*time.Hour, current)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "/logs-bucket/logs/app-2024-01-01.log", fake.last().Path)
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, current)
	assert.FileExists(t, fresh)

	_, err = archiver.ArchiveOld(ctx, filepath.Join(dir, "missing"), time.Hour, "")
	assert.Error(t, err)
}
