package download

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/fetch"
	"github.com/xeptore/tunedl/fs"
	"github.com/xeptore/tunedl/media"
	"github.com/xeptore/tunedl/tag"
)

type Fetcher interface {
	Search(ctx context.Context, query string) (fetch.Candidate, error)
	Fetch(ctx context.Context, c fetch.Candidate, codec media.Codec, bitrate media.Bitrate, dest string) error
}

type Tagger interface {
	Write(ctx context.Context, logger zerolog.Logger, path string, fields tag.Fields, artPath string) error
}

type Verifier interface {
	Verify(ctx context.Context, path string) (*tag.Summary, error)
}

// track takes one track from Pending to a terminal outcome. It never panics on expected failures
// and never affects other tracks.
func (o *Orchestrator) track(
	ctx context.Context,
	logger zerolog.Logger,
	cfg media.DownloadConfig,
	dir fs.Dir,
	collectionArtURL string,
	t media.Track,
) TrackReport {
	report := TrackReport{Track: t} //nolint:exhaustruct

	if err := ctx.Err(); nil != err {
		report.Outcome = FetchFailed{Err: err, Canceled: true}
		return report
	}

	if _, err := dir.Resolve(); nil != err {
		logger.Error().Err(err).Msg("Failed to resolve output directory")
		report.Outcome = FetchFailed{Err: fmt.Errorf("%w: %v", ErrNoParentDir, err), Canceled: false}
		return report
	}

	if err := dir.Ensure(); nil != err {
		logger.Error().Err(err).Msg("Failed to create output directory")
		report.Outcome = FetchFailed{Err: fmt.Errorf("%w: %v", ErrNoParentDir, err), Canceled: false}
		return report
	}

	file := dir.Track(t.Title, cfg.Codec.Ext())
	logger = logger.With().Str("path", file.Path).Logger()

	logger.Debug().Str("state", StateFetching.String()).Msg("Fetching track")
	if err := o.fetchTrack(ctx, logger, cfg, file, t); nil != err {
		logger.Error().Err(err).Msg("Failed to fetch track")
		report.Outcome = FetchFailed{Err: err, Canceled: nil != ctx.Err()}
		return report
	}
	logger.Debug().Str("state", StateFetched.String()).Msg("Track fetched")

	artPath, err := o.art(ctx, logger, dir, t, collectionArtURL)
	if nil != err {
		if artPath == "" {
			logger.Warn().Err(err).Msg("Continuing without cover art")
		} else {
			logger.Warn().Err(err).Str("art_path", artPath).Msg("Continuing with existing cover art")
		}
		report.ArtErr = err
	}

	logger.Debug().Str("state", StateTagging.String()).Msg("Tagging track")
	if err := o.tagger.Write(ctx, logger, file.Path, tag.FieldsFromTrack(t), artPath); nil != err {
		logger.Error().Err(err).Msg("Failed to tag track")
		report.Outcome = TagFailed{Path: file.Path, Err: err}
		return report
	}

	tagged := Tagged{Path: file.Path} //nolint:exhaustruct
	summary, err := o.verifier.Verify(ctx, file.Path)
	if nil != err {
		logger.Warn().Err(err).Msg("Tagged file failed verification")
		tagged.Anomaly = err
	} else {
		tagged.Summary = summary
	}
	report.Outcome = tagged

	logger.Info().Str("state", StateTagged.String()).Msg("Track done")

	return report
}

func (o *Orchestrator) fetchTrack(
	ctx context.Context,
	logger zerolog.Logger,
	cfg media.DownloadConfig,
	file fs.TrackFile,
	t media.Track,
) error {
	existed, err := file.Exists()
	if nil != err {
		return fmt.Errorf("failed to check if track file exists: %v", err)
	}
	if existed {
		logger.Warn().Msg("Track file already exists, overwriting")
	}

	candidate, err := o.fetcher.Search(ctx, t.SearchQuery())
	if nil != err {
		return fmt.Errorf("failed to search track: %w", err)
	}

	if err := o.fetcher.Fetch(ctx, candidate, cfg.Codec, cfg.Bitrate, file.Path); nil != err {
		// A file that was not there before the fetch is a leftover of this failed attempt.
		if !existed {
			if rmErr := file.Remove(); nil != rmErr {
				logger.Warn().Err(rmErr).Msg("Failed to remove leftover track file")
			}
		}
		return fmt.Errorf("failed to download track: %w", err)
	}

	return nil
}
