package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/xeptore/tunedl/config"
	"github.com/xeptore/tunedl/iterutil"
	"github.com/xeptore/tunedl/media"
)

// NewSpotifyClient authenticates with the client credentials flow. Tokens are refreshed transparently
// by the returned client, nothing else ever sees the secret.
func NewSpotifyClient(ctx context.Context, conf config.Spotify, opts ...spotify.ClientOption) (*spotify.Client, error) {
	if !conf.HasCredentials() {
		return nil, fmt.Errorf("%w: make sure SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET environment variables are set", ErrUnauthorized)
	}

	cc := &clientcredentials.Config{ //nolint:exhaustruct
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	httpClient := cc.Client(ctx)
	httpClient.Timeout = conf.Timeout.Duration

	return spotify.New(httpClient, opts...), nil
}

type Spotify struct {
	client     *spotify.Client
	market     string
	maxRetries uint64
	retryBase  time.Duration
}

func NewSpotify(client *spotify.Client, market string, maxRetries uint64) *Spotify {
	return &Spotify{
		client:     client,
		market:     market,
		maxRetries: maxRetries,
		retryBase:  1 * time.Second,
	}
}

func (s *Spotify) Lookup(ctx context.Context, logger zerolog.Logger, link media.Link) (*media.Collection, error) {
	logger = logger.With().Str("link", link.String()).Logger()

	var out *media.Collection
	err := retry.Do(
		ctx,
		retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(s.retryBase)),
		func(ctx context.Context) error {
			c, err := s.lookup(ctx, link)
			if nil != err {
				if errors.Is(err, ErrRateLimited) || errors.Is(err, context.DeadlineExceeded) {
					logger.Warn().Err(err).Msg("Retrying catalog lookup")
					return retry.RetryableError(err)
				}

				return err
			}

			out = c

			return nil
		},
	)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to look up link")
		return nil, fmt.Errorf("failed to look up %s: %w", link, err)
	}

	logger.Debug().Dict("collection", out.ToDict()).Msg("Link resolved")

	return out, nil
}

func (s *Spotify) options() []spotify.RequestOption {
	if s.market == "" {
		return nil
	}

	return []spotify.RequestOption{spotify.Market(s.market)}
}

func (s *Spotify) lookup(ctx context.Context, link media.Link) (*media.Collection, error) {
	switch link.Kind {
	case media.LinkKindTrack:
		return s.track(ctx, link.ID)
	case media.LinkKindAlbum:
		return s.album(ctx, link.ID)
	case media.LinkKindPlaylist:
		return s.playlist(ctx, link.ID)
	default:
		return nil, fmt.Errorf("%w: unsupported link kind %s", media.ErrInvalidConfig, link.Kind)
	}
}

func (s *Spotify) track(ctx context.Context, id string) (*media.Collection, error) {
	t, err := s.client.GetTrack(ctx, spotify.ID(id), s.options()...)
	if nil != err {
		return nil, fmt.Errorf("failed to get track: %w", classify(err))
	}

	track := trackFromFull(t)

	return media.NewCollection(media.LinkKindTrack, id, track.Title, []media.Track{track}, []string{track.ArtURL}), nil
}

func (s *Spotify) album(ctx context.Context, id string) (*media.Collection, error) {
	a, err := s.client.GetAlbum(ctx, spotify.ID(id), s.options()...)
	if nil != err {
		return nil, fmt.Errorf("failed to get album: %w", classify(err))
	}

	var (
		page   = &a.Tracks
		tracks = make([]media.Track, 0, int(page.Total))
	)
	for {
		tracks = append(tracks, iterutil.Map(page.Tracks, func(_ int, t spotify.SimpleTrack) media.Track {
			return trackFromSimple(t, a.SimpleAlbum)
		})...)

		if err := s.client.NextPage(ctx, page); nil != err {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}

			return nil, fmt.Errorf("failed to get album tracks page: %w", classify(err))
		}
	}

	return media.NewCollection(media.LinkKindAlbum, id, a.Name, tracks, imageURLs(a.Images)), nil
}

func (s *Spotify) playlist(ctx context.Context, id string) (*media.Collection, error) {
	p, err := s.client.GetPlaylist(ctx, spotify.ID(id), s.options()...)
	if nil != err {
		return nil, fmt.Errorf("failed to get playlist: %w", classify(err))
	}

	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(id), s.options()...)
	if nil != err {
		return nil, fmt.Errorf("failed to get playlist items: %w", classify(err))
	}

	tracks := make([]media.Track, 0, int(page.Total))
	for {
		for _, item := range page.Items {
			if nil == item.Track.Track {
				continue
			}
			tracks = append(tracks, trackFromFull(item.Track.Track))
		}

		if err := s.client.NextPage(ctx, page); nil != err {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}

			return nil, fmt.Errorf("failed to get playlist items page: %w", classify(err))
		}
	}

	return media.NewCollection(media.LinkKindPlaylist, id, p.Name, tracks, imageURLs(p.Images)), nil
}

func trackFromFull(t *spotify.FullTrack) media.Track {
	return trackFromSimple(t.SimpleTrack, t.Album)
}

func trackFromSimple(t spotify.SimpleTrack, album spotify.SimpleAlbum) media.Track {
	return media.Track{
		Title:       t.Name,
		Artists:     lo.Map(t.Artists, func(a spotify.SimpleArtist, _ int) string { return a.Name }),
		Album:       album.Name,
		DiscNumber:  int(t.DiscNumber),
		TrackNumber: uint(max(int(t.TrackNumber), 1)), //nolint:gosec
		ArtURL:      lo.FirstOrEmpty(imageURLs(album.Images)),
	}
}

// imageURLs orders images from the largest to the smallest.
func imageURLs(images []spotify.Image) []string {
	area := func(img spotify.Image) int { return int(img.Width) * int(img.Height) }

	sorted := slices.Clone(images)
	slices.SortStableFunc(sorted, func(a, b spotify.Image) int { return area(b) - area(a) })

	return lo.Compact(lo.Map(sorted, func(img spotify.Image, _ int) string { return img.URL }))
}

func classify(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound, http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
	}

	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, tokenErr)
	}

	return err
}
