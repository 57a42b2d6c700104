package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"golang.org/x/time/rate"

	"github.com/xeptore/tunedl/cache"
	"github.com/xeptore/tunedl/fs"
	"github.com/xeptore/tunedl/media"
)

type Options struct {
	Executable    string
	SearchTimeout time.Duration
	FetchTimeout  time.Duration
}

// YTDLP searches and downloads audio with the yt-dlp executable.
type YTDLP struct {
	opts       Options
	limiter    *rate.Limiter
	candidates *cache.Keyed[string]
}

func NewYTDLP(opts Options, limiter *rate.Limiter, candidates *cache.Keyed[string]) *YTDLP {
	return &YTDLP{
		opts:       opts,
		limiter:    limiter,
		candidates: candidates,
	}
}

func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New().NoWarnings().NoProgress()
	if y.opts.Executable != "" {
		cmd = cmd.SetExecutable(y.opts.Executable)
	}

	return cmd
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}

func (y *YTDLP) Search(ctx context.Context, query string) (Candidate, error) {
	url, err := y.candidates.Fetch(query, cache.DefaultCandidateTTL, func() (string, error) {
		c, err := y.search(ctx, query)
		if nil != err {
			return "", err
		}

		return c.URL, nil
	})
	if nil != err {
		return Candidate{}, fmt.Errorf("failed to search %q: %w", query, err)
	}

	return Candidate{URL: url}, nil //nolint:exhaustruct
}

func (y *YTDLP) search(ctx context.Context, query string) (Candidate, error) {
	if err := y.limiter.Wait(ctx); nil != err {
		return Candidate{}, fmt.Errorf("failed to wait for search rate limiter: %w", err)
	}

	runCtx, cancel := withTimeout(ctx, y.opts.SearchTimeout)
	defer cancel()

	res, err := y.command().
		FlatPlaylist().
		DumpSingleJSON().
		Run(runCtx, "ytsearch1:"+query)
	if nil != err {
		return Candidate{}, runErr(ctx, runCtx, err)
	}

	return ParseSearchOutput([]byte(res.Stdout))
}

// Fetch downloads c as extracted audio. The file appears at dest only once complete, partial output is removed.
func (y *YTDLP) Fetch(
	ctx context.Context,
	c Candidate,
	codec media.Codec,
	bitrate media.Bitrate,
	dest string,
) (err error) {
	runCtx, cancel := withTimeout(ctx, y.opts.FetchTimeout)
	defer cancel()

	part := fs.PartPath(dest, uuid.NewString())
	defer func() {
		if cleanupErr := fs.RemovePart(part); nil != cleanupErr {
			err = errors.Join(err, cleanupErr)
		}
	}()

	_, err = y.command().
		ExtractAudio().
		AudioFormat(codec.FetchFormat()).
		AudioQuality(bitrate.Quality()).
		NoPlaylist().
		ForceOverwrites().
		Output(part + ".%(ext)s").
		Run(runCtx, c.URL)
	if nil != err {
		return runErr(ctx, runCtx, err)
	}

	return Promote(part, codec.FetchFormat(), dest)
}

// runErr returns the run's own cancellation as is. A call that only exceeded its own timeout is a
// network failure.
func runErr(parent, runCtx context.Context, err error) error {
	if parentErr := parent.Err(); nil != parentErr {
		return parentErr
	}

	if timeoutErr := runCtx.Err(); nil != timeoutErr {
		return fmt.Errorf("%w: timed out: %v", ErrNetwork, timeoutErr)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// Promote moves the finished output of a download started under part into dest.
func Promote(part, format, dest string) error {
	produced := part + "." + format
	if _, err := os.Stat(produced); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			others, _ := filepath.Glob(part + ".*")
			return fmt.Errorf("%w: expected %s, got [%s]", ErrUnsupportedFormat, format, strings.Join(others, ", "))
		}

		return fmt.Errorf("failed to stat downloaded file: %v", err)
	}

	if err := os.Rename(produced, dest); nil != err {
		return fmt.Errorf("failed to move downloaded file into place: %v", err)
	}

	return nil
}

// Install downloads a yt-dlp build into the user cache directory when none is available.
func Install(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if nil != err {
		return "", fmt.Errorf("failed to install yt-dlp: %v", err)
	}

	return resolved.Executable, nil
}
