package download

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/xeptore/tunedl/fs"
	"github.com/xeptore/tunedl/media"
)

type CoverSource interface {
	Get(ctx context.Context, logger zerolog.Logger, url string) ([]byte, error)
}

// art stores the track's cover next to its audio file and returns the cover path. An empty path
// without error means the track has no art at all. When the cover cannot be refreshed but an
// earlier one is still on disk, its path is returned along with the error.
func (o *Orchestrator) art(
	ctx context.Context,
	logger zerolog.Logger,
	dir fs.Dir,
	t media.Track,
	collectionArtURL string,
) (string, error) {
	url := lo.CoalesceOrEmpty(t.ArtURL, collectionArtURL)
	if url == "" {
		return "", nil
	}

	cover := dir.Cover(t.Title)
	if err := saveCover(ctx, logger, o.covers, dir, cover, url); nil != err {
		if exists, existsErr := cover.Exists(); nil != existsErr {
			logger.Debug().Err(existsErr).Msg("Failed to check for existing cover")
		} else if exists {
			return cover.Path, err
		}
		return "", err
	}

	return cover.Path, nil
}

func saveCover(
	ctx context.Context,
	logger zerolog.Logger,
	covers CoverSource,
	dir fs.Dir,
	cover fs.Cover,
	url string,
) error {
	if err := dir.Ensure(); nil != err {
		return fmt.Errorf("%w: %v", ErrArt, err)
	}

	b, err := covers.Get(ctx, logger, url)
	if nil != err {
		return fmt.Errorf("%w: %v", ErrArt, err)
	}

	if err := cover.Write(b); nil != err {
		return fmt.Errorf("%w: %v", ErrArt, err)
	}

	return nil
}
