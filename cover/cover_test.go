package cover_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tunedl/cache"
	"github.com/xeptore/tunedl/cover"
	"github.com/xeptore/tunedl/unit"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255}) //nolint:gosec
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil))

	return buf.Bytes()
}

func newFetcher(t *testing.T, srv *httptest.Server, maxDim int) *cover.Fetcher {
	t.Helper()

	covers := cache.NewKeyed[[]byte](10)
	t.Cleanup(covers.Stop)

	return cover.NewFetcher(srv.Client(), covers, cover.Options{
		Timeout:        time.Second,
		MaxBytes:       unit.Mebibyte,
		MaxDimension:   maxDim,
		Retries:        2,
		InitialBackoff: time.Millisecond,
	})
}

func TestFetcherConvertsAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	body := encodePNG(t, 32, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	f := newFetcher(t, srv, 0)

	b, err := f.Get(t.Context(), zerolog.Nop(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.True(t, mimetype.Detect(b).Is("image/jpeg"))

	again, err := f.Get(t.Context(), zerolog.Nop(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.Equal(t, b, again)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	body := encodeJPEG(t, 8, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	b, err := newFetcher(t, srv, 0).Get(t.Context(), zerolog.Nop(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, b, "jpeg within bounds is kept byte for byte")
	assert.EqualValues(t, 3, hits.Load())
}

func TestFetcherDoesNotRetryNotFound(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newFetcher(t, srv, 0).Get(t.Context(), zerolog.Nop(), srv.URL)
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetcherRejectsNonImages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	t.Cleanup(srv.Close)

	_, err := newFetcher(t, srv, 0).Get(t.Context(), zerolog.Nop(), srv.URL)
	require.ErrorIs(t, err, cover.ErrUnsupportedImage)
}

func TestToJPEGDownscales(t *testing.T) {
	t.Parallel()

	out, err := cover.ToJPEG(encodePNG(t, 200, 100), 50)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)

	tall, err := cover.ToJPEG(encodeJPEG(t, 40, 120), 60)
	require.NoError(t, err)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(tall))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
}
