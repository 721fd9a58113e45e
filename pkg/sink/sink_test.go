package sink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"threadscraper/pkg/config"
	"threadscraper/pkg/fetch"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/logger"
)

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		name string
		hint Hint
		want string
	}{
		{"url extension", Hint{URL: "https://cdn.example.com/a/b.png?x=1", ContentType: "image/jpeg"}, ".png"},
		{"five chars with dot", Hint{URL: "https://cdn.example.com/a.jpeg"}, ".jpeg"},
		{"too long for an extension", Hint{URL: "https://cdn.example.com/a.123456", ContentType: "image/webp"}, ".webp"},
		{"content type with params", Hint{URL: "https://cdn.example.com/img", ContentType: "image/png; charset=binary"}, ".png"},
		{"unknown content type", Hint{URL: "https://cdn.example.com/img", ContentType: "application/x-nope"}, ".jpg"},
		{"nothing to go on", Hint{URL: "https://cdn.example.com/img"}, ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtensionFor(tt.hint); got != tt.want {
				t.Errorf("ExtensionFor(%+v) = %q, want %q", tt.hint, got, tt.want)
			}
		})
	}
}

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "threads_saved_images")
	l, err := NewLocal(dir)
	require.NoError(t, err)

	data := []byte("\x89PNG\r\n\x1a\nrest")
	asset, err := l.Store(context.Background(), data, Hint{URL: "https://cdn.example.com/photo"}, "20240101_000000_0_0")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(asset.StoredLocation))
	assert.Equal(t, "20240101_000000_0_0.jpg", filepath.Base(asset.StoredLocation))
	assert.Equal(t, ".jpg", asset.Extension)
	assert.Equal(t, "image/png", asset.ContentType, "sniffed when no header was sent")

	got, err := os.ReadFile(asset.StoredLocation)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

type fakeUploader struct {
	mu   sync.Mutex
	ids  []string
	tags [][]string
	fail bool
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, publicID string, tags []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	f.ids = append(f.ids, publicID)
	f.tags = append(f.tags, tags)
	return "https://res.cloudinary.com/demo/image/upload/" + publicID + ".jpg", nil
}

func TestRemoteStore(t *testing.T) {
	up := &fakeUploader{}
	r := NewRemote(up, []string{"threads", "saved"})

	asset, err := r.Store(context.Background(), []byte("x"), Hint{URL: "https://cdn.example.com/a.webp", ContentType: "image/webp"}, "20240101_120000_3_1")
	require.NoError(t, err)

	require.Len(t, up.ids, 1)
	assert.True(t, strings.HasPrefix(up.ids[0], "20240101_120000_3_1_"))
	assert.Len(t, strings.TrimPrefix(up.ids[0], "20240101_120000_3_1_"), 32)
	assert.Equal(t, []string{"threads", "saved"}, up.tags[0])
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/"+up.ids[0]+".jpg", asset.StoredLocation)
	assert.Empty(t, asset.Extension, "extension and content type are local-only")
	assert.Empty(t, asset.ContentType)
	assert.Equal(t, "cloudinary", r.Name())
}

func TestRemoteStoreFailure(t *testing.T) {
	r := NewRemote(&fakeUploader{fail: true}, nil)
	_, err := r.Store(context.Background(), []byte("x"), Hint{}, "p")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewCloudinaryUploaderRequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryUploader(config.CloudinaryConfig{CloudName: "demo"})
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/missing"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg:" + r.URL.Path))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestPipeline(t *testing.T, s Sink, log logger.Logger) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig().Download
	cfg.RequestsPerMinute = 60000
	p := NewPipeline(fetch.NewClient(cfg, log), s, log)
	p.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600)) }
	return p
}

func TestPipelineStorePost(t *testing.T) {
	server := imageServer(t)
	dir := t.TempDir()
	local, err := NewLocal(dir)
	require.NoError(t, err)
	tl := logger.NewTestLogger()

	p := newTestPipeline(t, local, tl)
	res := p.StorePost(context.Background(), 4, []string{
		server.URL + "/a.png",
		"data:image/png;base64,AAAA",
		server.URL + "/missing.jpg",
		server.URL + "/b",
	}, nil)

	require.Len(t, res.Assets, 2)
	assert.Equal(t, 1, res.Failed)
	// prefix is UTC time, post index, then the url's position in the list
	assert.Equal(t, "20240506_060809_4_0.png", filepath.Base(res.Assets[0].StoredLocation))
	assert.Equal(t, "20240506_060809_4_3.jpg", filepath.Base(res.Assets[1].StoredLocation))
	assert.Equal(t, server.URL+"/b", res.Assets[1].OriginalURL)

	warns := tl.GetMessagesByLevel("WARN")
	require.NotEmpty(t, warns)
	assert.Equal(t, "Failed to store image, skipping", warns[len(warns)-1].Message)
}

func TestPipelineSecondaryPass(t *testing.T) {
	server := imageServer(t)
	up := &fakeUploader{}
	p := newTestPipeline(t, NewRemote(up, nil), logger.NewNopLogger())

	res := p.StorePost(context.Background(), 0,
		[]string{server.URL + "/missing-1", "blob:https://x/1"},
		[]string{"", server.URL + "/raw.jpg"},
	)

	require.Len(t, res.Assets, 1)
	assert.Equal(t, server.URL+"/raw.jpg", res.Assets[0].OriginalURL)
	assert.True(t, strings.HasPrefix(up.ids[0], "20240506_060809_0_1_"))
}

func TestPipelineSkipsSecondaryPassWhenSomethingStored(t *testing.T) {
	server := imageServer(t)
	up := &fakeUploader{}
	p := newTestPipeline(t, NewRemote(up, nil), logger.NewNopLogger())

	res := p.StorePost(context.Background(), 0, []string{server.URL + "/a.jpg"}, []string{server.URL + "/raw.jpg"})
	assert.Len(t, res.Assets, 1)
	assert.Len(t, up.ids, 1)
}

func TestPipelineStoreFailureIsPerAsset(t *testing.T) {
	server := imageServer(t)
	p := newTestPipeline(t, NewRemote(&fakeUploader{fail: true}, nil), logger.NewNopLogger())

	res := p.StorePost(context.Background(), 1, []string{server.URL + "/a.jpg", server.URL + "/b.jpg"}, nil)
	assert.Empty(t, res.Assets)
	assert.Equal(t, 2, res.Failed)
}

func TestFromConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "imgs")
	s, err := FromConfig(config.StorageConfig{Mode: config.StorageLocal, Local: config.LocalConfig{OutputDir: dir}})
	require.NoError(t, err)
	assert.Equal(t, "local", s.Name())
	_, err = os.Stat(dir)
	assert.NoError(t, err, "directory is created up front")

	s, err = FromConfig(config.StorageConfig{Mode: config.StorageRemote, Cloudinary: config.CloudinaryConfig{
		CloudName: "demo", APIKey: "key", APISecret: "secret",
	}})
	require.NoError(t, err)
	assert.Equal(t, "cloudinary", s.Name())

	_, err = FromConfig(config.StorageConfig{Mode: config.StorageRemote})
	assert.True(t, apperrors.IsFatal(err), "missing credentials")

	_, err = FromConfig(config.StorageConfig{Mode: "ftp"})
	assert.True(t, apperrors.IsFatal(err))
}
