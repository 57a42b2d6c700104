package download

import (
	"errors"
	"fmt"

	"github.com/xeptore/tunedl/media"
)

var (
	ErrEmptyCollection = fmt.Errorf("%w: collection has no tracks", media.ErrInvalidConfig)
	ErrNoParentDir     = errors.New("output directory cannot be resolved")
	ErrArt             = errors.New("cover art unavailable")
	ErrChunkAborted    = errors.New("chunk worker aborted")
)
