package imagecache

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedagg/internal/httpfetch"
	"feedagg/internal/objectstore"
	"feedagg/internal/thumbnail"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleJPEGBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func buildWorkerBinary(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available to build thumbnailworker for imagecache test")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	moduleRoot := filepath.Join(wd, "..", "..")

	binPath := filepath.Join(t.TempDir(), "thumbnailworker")
	cmd := exec.Command("go", "build", "-o", binPath, "feedagg/cmd/thumbnailworker")
	cmd.Dir = moduleRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Skipf("could not build thumbnailworker: %v: %s", err, out)
	}
	return binPath
}

func TestFilenameFor_IsStableAndContentAddressed(t *testing.T) {
	a := FilenameFor("https://example.test/a.jpg")
	b := FilenameFor("https://example.test/a.jpg")
	c := FilenameFor("https://example.test/b.jpg")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^[0-9a-f]{64}\.jpg$`, a)
}

func TestCacheImage_LocalHit(t *testing.T) {
	dir := t.TempDir()
	store, err := objectstore.New("", "", "", false, "pub", "priv", true)
	require.NoError(t, err)

	c, err := New(dir, httpfetch.New(2*time.Second, 1000, 10), thumbnail.NewSandbox("unused"), store, discardLogger())
	require.NoError(t, err)

	cacheFn := FilenameFor("https://example.test/a.jpg")
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFn+".pad"), []byte("cached"), 0o644))

	got := c.CacheImage(context.Background(), "https://example.test/a.jpg")
	assert.Equal(t, cacheFn, got)
}

func TestCacheImage_FetchFailureReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := objectstore.New("", "", "", false, "pub", "priv", true)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(dir, httpfetch.New(2*time.Second, 1000, 10), thumbnail.NewSandbox("unused"), store, discardLogger())
	require.NoError(t, err)

	got := c.CacheImage(context.Background(), srv.URL+"/missing.jpg")
	assert.Empty(t, got)
}

func TestCacheImage_FullPipelineGeneratesAndUploads(t *testing.T) {
	bin := buildWorkerBinary(t)

	dir := t.TempDir()
	store, err := objectstore.New("", "", "", false, "pub", "priv", true)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(sampleJPEGBytes(t))
	}))
	defer srv.Close()

	c, err := New(dir, httpfetch.New(5*time.Second, 1000, 10), thumbnail.NewSandbox(bin), store, discardLogger())
	require.NoError(t, err)

	got := c.CacheImage(context.Background(), srv.URL+"/a.jpg")
	assert.NotEmpty(t, got)

	_, statErr := os.Stat(filepath.Join(dir, got+".pad"))
	assert.NoError(t, statErr)
}
