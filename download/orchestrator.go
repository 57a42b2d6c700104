package download

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/tunedl/fs"
	"github.com/xeptore/tunedl/iterutil"
	"github.com/xeptore/tunedl/mathutil"
	"github.com/xeptore/tunedl/media"
	"github.com/xeptore/tunedl/ratelimit"
	"github.com/xeptore/tunedl/result"
)

const DefaultPoolSize = 4

type Options struct {
	// PoolSize caps the number of chunks processed at the same time.
	PoolSize    int
	TrackJitter bool
}

type Orchestrator struct {
	fetcher  Fetcher
	tagger   Tagger
	verifier Verifier
	covers   CoverSource
	opts     Options
}

func NewOrchestrator(fetcher Fetcher, tagger Tagger, verifier Verifier, covers CoverSource, opts Options) *Orchestrator {
	if opts.PoolSize < 1 {
		opts.PoolSize = DefaultPoolSize
	}

	return &Orchestrator{
		fetcher:  fetcher,
		tagger:   tagger,
		verifier: verifier,
		covers:   covers,
		opts:     opts,
	}
}

// Run downloads, decorates and tags every track of collection. Only an invalid collection is
// reported as an error, individual track failures end up in the returned summary.
func (o *Orchestrator) Run(
	ctx context.Context,
	logger zerolog.Logger,
	collection *media.Collection,
	cfg media.DownloadConfig,
) (*Summary, error) {
	if nil == collection || len(collection.Tracks) == 0 {
		return nil, ErrEmptyCollection
	}

	if err := collection.Validate(); nil != err {
		return nil, fmt.Errorf("invalid collection: %w", err)
	}

	base := cfg.Dir()
	if collection.HasDir() {
		base = base.Join(collection.Name)
	}

	var (
		chunks   = Plan(collection.Tracks, cfg.Parallelism)
		reports  = mathutil.MakeShape[media.Track, TrackReport](chunks)
		statuses = make([]result.Of[int], len(chunks))
		summary  = &Summary{ //nolint:exhaustruct
			Chunks: iterutil.Map(chunks, func(_ int, c []media.Track) int { return len(c) }),
		}
	)

	logger = logger.With().Str("collection_id", collection.ID).Str("base_dir", base.Path()).Logger()
	logger.Info().Ints("chunks", summary.Chunks).Int("pool_size", o.opts.PoolSize).Msg("Starting collection download")

	summary.CoverErr = o.collectionCover(ctx, logger, base, collection)

	var wg errgroup.Group
	wg.SetLimit(o.opts.PoolSize)
	for i, chunk := range chunks {
		chunkLogger := logger.With().Int("chunk_index", i).Logger()
		row := reports[i]

		wg.Go(func() error {
			statuses[i] = o.chunk(ctx, chunkLogger, cfg, base, collection.ArtURL(), chunk, row)
			return nil
		})
	}
	_ = wg.Wait()

	for i, status := range statuses {
		if err := status.Err(); nil != err {
			logger.Error().Err(err).Int("chunk_index", i).Msg("Chunk aborted")
			continue
		}
		logger.Debug().Int("chunk_index", i).Int("tracks", *status.Unwrap()).Msg("Chunk finished")
	}

	index := 0
	for i, row := range reports {
		for j, r := range row {
			if nil == r.Outcome {
				r.Track = chunks[i][j]
				r.Outcome = FetchFailed{Err: chunkErr(statuses[i]), Canceled: nil != ctx.Err()}
			}
			r.Index = index
			r.Chunk = i
			summary.add(r)
			index++
		}
	}

	logger.Info().Dict("summary", summary.ToDict()).Msg("Collection download finished")

	return summary, nil
}

func chunkErr(status result.Of[int]) error {
	if err := status.Err(); nil != err {
		return err
	}

	return ErrChunkAborted
}

// chunk processes the tracks of one chunk strictly in order, recording each outcome into row.
func (o *Orchestrator) chunk(
	ctx context.Context,
	logger zerolog.Logger,
	cfg media.DownloadConfig,
	dir fs.Dir,
	collectionArtURL string,
	tracks []media.Track,
	row []TrackReport,
) (res result.Of[int]) {
	defer func() {
		if r := recover(); nil != r {
			logger.Error().Any("panic", r).Bytes("stack", debug.Stack()).Msg("Chunk worker panicked")
			res = result.Err[int](fmt.Errorf("%w: %v", ErrChunkAborted, r))
		}
	}()

	for j, t := range tracks {
		if j > 0 && o.opts.TrackJitter {
			if err := ratelimit.Sleep(ctx, ratelimit.TrackJitter()); nil != err {
				logger.Debug().Err(err).Msg("Track jitter interrupted")
			}
		}

		trackLogger := logger.With().Int("track_index", j).Str("title", t.Title).Logger()
		row[j] = o.track(ctx, trackLogger, cfg, dir, collectionArtURL, t)
	}

	done := len(tracks)

	return result.Ok(&done)
}

// collectionCover stores the album or playlist cover once, before any track starts.
func (o *Orchestrator) collectionCover(
	ctx context.Context,
	logger zerolog.Logger,
	base fs.Dir,
	collection *media.Collection,
) error {
	url := collection.ArtURL()
	if !collection.HasDir() || url == "" {
		return nil
	}

	cover := base.Cover(collection.Name)
	if err := saveCover(ctx, logger, o.covers, base, cover, url); nil != err {
		logger.Warn().Err(err).Msg("Failed to save collection cover")
		return err
	}

	return nil
}
