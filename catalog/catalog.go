package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/media"
)

var (
	ErrNotFound     = errors.New("entity not found in catalog")
	ErrUnauthorized = errors.New("catalog rejected credentials")
	ErrRateLimited  = errors.New("catalog rate limit exceeded")
)

// Service resolves a link into a fully populated collection. Single tracks come back as a
// collection of one.
type Service interface {
	Lookup(ctx context.Context, logger zerolog.Logger, link media.Link) (*media.Collection, error)
}
