package cover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/cache"
	"github.com/xeptore/tunedl/httputil"
)

type Options struct {
	Timeout        time.Duration
	MaxBytes       int64
	MaxDimension   int
	Retries        uint64
	InitialBackoff time.Duration
}

// Fetcher downloads cover images and normalizes them to JPEG. Results are cached by URL.
type Fetcher struct {
	client *http.Client
	covers *cache.Keyed[[]byte]
	opts   Options
}

func NewFetcher(client *http.Client, covers *cache.Keyed[[]byte], opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	if opts.InitialBackoff == 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}

	return &Fetcher{
		client: client,
		covers: covers,
		opts:   opts,
	}
}

func (f *Fetcher) Get(ctx context.Context, logger zerolog.Logger, url string) ([]byte, error) {
	b, err := f.covers.Fetch(
		url,
		cache.DefaultCoverTTL,
		func() ([]byte, error) { return f.download(ctx, logger, url) },
	)
	if nil != err {
		return nil, fmt.Errorf("failed to get cover: %w", err)
	}

	return b, nil
}

func (f *Fetcher) download(ctx context.Context, logger zerolog.Logger, url string) ([]byte, error) {
	logger = logger.With().Str("cover_url", url).Logger()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(f.opts.InitialBackoff),
				backoff.WithMaxElapsedTime(0),
			),
			f.opts.Retries,
		),
		ctx,
	)

	raw, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) { return f.downloadOnce(ctx, logger, url) },
		policy,
		func(err error, wait time.Duration) {
			logger.Warn().Err(err).Dur("wait", wait).Msg("Retrying cover download")
		},
	)
	if nil != err {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}

	out, err := ToJPEG(raw, f.opts.MaxDimension)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to normalize cover image")
		return nil, fmt.Errorf("failed to normalize cover image: %w", err)
	}

	return out, nil
}

func (f *Fetcher) downloadOnce(ctx context.Context, logger zerolog.Logger, url string) (b []byte, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if nil != err {
		return nil, backoff.Permanent(fmt.Errorf("failed to create get cover request: %v", err))
	}
	req.Header.Add("Accept", "image/*")

	resp, err := f.client.Do(req)
	if nil != err {
		if nil != ctx.Err() {
			return nil, backoff.Permanent(ctx.Err())
		}

		logger.Debug().Err(err).Msg("Failed to send get cover request")

		return nil, fmt.Errorf("failed to send get cover request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close get cover response body: %v", closeErr))
		}
	}()

	if err := httputil.CheckStatus(resp); nil != err {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.Retryable() {
			return nil, err
		}

		return nil, backoff.Permanent(err)
	}

	b, err = httputil.ReadResponseBody(resp, f.opts.MaxBytes)
	if nil != err {
		if errors.Is(err, httputil.ErrTooLarge) || errors.Is(err, httputil.ErrEmptyBody) {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	return b, nil
}
