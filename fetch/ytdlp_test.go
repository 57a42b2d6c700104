package fetch_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tunedl/cache"
	"github.com/xeptore/tunedl/fetch"
	"github.com/xeptore/tunedl/fs"
	"github.com/xeptore/tunedl/media"
	"github.com/xeptore/tunedl/ratelimit"
)

func TestPromoteMovesProducedFile(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "Song.mpa")
	part := fs.PartPath(dest, "run")
	require.NoError(t, os.WriteFile(part+".mp3", []byte("audio"), 0o600))

	require.NoError(t, fetch.Promote(part, "mp3", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
	assert.NoFileExists(t, part+".mp3")
}

func TestPromoteReportsMissingFormat(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "Song.flac")
	part := fs.PartPath(dest, "run")
	require.NoError(t, os.WriteFile(part+".webm", []byte("audio"), 0o600))

	err := fetch.Promote(part, "flac", dest)
	require.ErrorIs(t, err, fetch.ErrUnsupportedFormat)
	assert.NoFileExists(t, dest)
}

func TestPromoteOverwritesExistingDestination(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "Song.mp3")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o600))
	part := fs.PartPath(dest, "run")
	require.NoError(t, os.WriteFile(part+".mp3", []byte("new"), 0o600))

	require.NoError(t, fetch.Promote(part, "mp3", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

// fakeYTDLP writes an executable standing in for yt-dlp. It creates the requested output with an
// mp3 extension and then runs the given shell tail.
func fakeYTDLP(t *testing.T, tail string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}

	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o|--output) out="$2"; shift ;;
    --output=*) out="${1#--output=}" ;;
  esac
  shift
done
if [ -n "$out" ]; then
  file=$(printf '%s' "$out" | sed 's/%(ext)s$/mp3/')
  printf audio > "$file"
fi
` + tail + "\n"

	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700)) //nolint:gosec

	return path
}

func newYTDLP(executable string, fetchTimeout time.Duration) *fetch.YTDLP {
	return fetch.NewYTDLP(
		fetch.Options{Executable: executable, FetchTimeout: fetchTimeout}, //nolint:exhaustruct
		ratelimit.NewLimiter(0, 1),
		cache.NewKeyed[string](10),
	)
}

func TestFetchConcurrentSameDestination(t *testing.T) {
	t.Parallel()

	y := newYTDLP(fakeYTDLP(t, "exec sleep 0.6"), 0)
	dest := filepath.Join(t.TempDir(), "Intro.mp3")
	candidate := fetch.Candidate{URL: "https://www.youtube.com/watch?v=abc"} //nolint:exhaustruct

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Go(func() {
		errs[0] = y.Fetch(t.Context(), candidate, media.CodecMP3, media.BitrateBest, dest)
	})
	time.Sleep(200 * time.Millisecond)
	wg.Go(func() {
		errs[1] = y.Fetch(t.Context(), candidate, media.CodecMP3, media.BitrateBest, dest)
	})
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetchOwnTimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	y := newYTDLP(fakeYTDLP(t, "exec sleep 5"), 100*time.Millisecond)
	dest := filepath.Join(t.TempDir(), "Intro.mp3")

	err := y.Fetch(t.Context(), fetch.Candidate{URL: "https://example.com/a"}, media.CodecMP3, media.BitrateBest, dest) //nolint:exhaustruct
	require.ErrorIs(t, err, fetch.ErrNetwork)
	require.NotErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, dest)
}

func TestFetchParentCancellation(t *testing.T) {
	t.Parallel()

	y := newYTDLP(fakeYTDLP(t, "exec sleep 5"), time.Minute)
	dest := filepath.Join(t.TempDir(), "Intro.mp3")

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	err := y.Fetch(ctx, fetch.Candidate{URL: "https://example.com/a"}, media.CodecMP3, media.BitrateBest, dest) //nolint:exhaustruct
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, fetch.ErrNetwork)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
